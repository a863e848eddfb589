package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempizhere/shortyclient/internal/fakeapi"
	"go.uber.org/zap"
)

// setupTestServer поднимает тестовый бэкенд с одним пользователем
func setupTestServer(t *testing.T) (*fakeapi.Server, *Client, string) {
	t.Helper()
	backend := fakeapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	u, err := backend.AddUser("Ann", "ann@example.com", "secret")
	require.NoError(t, err)
	return backend, NewClient(srv.URL+"/", nil, 5*time.Second, zap.NewNop()), u.ID
}

func TestClient_Login(t *testing.T) {
	_, client, _ := setupTestServer(t)

	token, err := client.Login(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = client.Login(context.Background(), "ann@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Equal(t, "login", statusErr.Op)
}

func TestClient_Login_EmptyToken(t *testing.T) {
	backend, client, _ := setupTestServer(t)
	backend.Intercept(fakeapi.RouteLogin, func(w http.ResponseWriter, r *http.Request) bool {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":""}`))
		return true
	})

	_, err := client.Login(context.Background(), "ann@example.com", "secret")
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestClient_Register(t *testing.T) {
	backend, client, _ := setupTestServer(t)

	user, err := client.Register(context.Background(), "Bob", "bob@example.com", "pass")
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.NotEmpty(t, user.ID)

	// Дубликат отклоняется со статусом 409
	_, err = client.Register(context.Background(), "Bob", "bob@example.com", "pass")
	assert.Error(t, err)

	backend.Intercept(fakeapi.RouteRegister, func(w http.ResponseWriter, r *http.Request) bool {
		_, _ = w.Write([]byte(`{"success":false,"message":"closed"}`))
		return true
	})
	_, err = client.Register(context.Background(), "Cid", "cid@example.com", "pass")
	require.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Contains(t, err.Error(), "closed")
}

func TestClient_URLs(t *testing.T) {
	backend, client, userID := setupTestServer(t)
	token, err := backend.IssueToken(userID)
	require.NoError(t, err)
	ctx := context.Background()

	urls, err := client.AllURLs(ctx, token)
	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)

	created, err := client.CreateShortURL(ctx, token, "https://example.com/a?b=c&d=e")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a?b=c&d=e", created.OriginalURL)

	urls, err = client.AllURLs(ctx, token)
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Equal(t, created.ShortCode, urls[0].ShortCode)

	_, err = client.AllURLs(ctx, "bad-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_NullBody(t *testing.T) {
	backend, client, _ := setupTestServer(t)
	backend.Intercept(fakeapi.RouteAllURLs, func(w http.ResponseWriter, r *http.Request) bool {
		_, _ = w.Write([]byte(`null`))
		return true
	})
	backend.Intercept(fakeapi.RouteAnalytics, func(w http.ResponseWriter, r *http.Request) bool {
		_, _ = w.Write([]byte(`null`))
		return true
	})

	urls, err := client.AllURLs(context.Background(), "t")
	require.NoError(t, err)
	assert.NotNil(t, urls)

	records, err := client.Analytics(context.Background(), "t", "abc")
	require.NoError(t, err)
	assert.NotNil(t, records)
}

func TestClient_MalformedResponse(t *testing.T) {
	backend, client, _ := setupTestServer(t)
	backend.Intercept(fakeapi.RouteAllURLs, func(w http.ResponseWriter, r *http.Request) bool {
		_, _ = w.Write([]byte(`{"not":"a list"`))
		return true
	})

	_, err := client.AllURLs(context.Background(), "t")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_StatusErrorTruncatesBody(t *testing.T) {
	backend, client, _ := setupTestServer(t)
	backend.Intercept(fakeapi.RouteAllURLs, func(w http.ResponseWriter, r *http.Request) bool {
		http.Error(w, strings.Repeat("x", 1000), http.StatusInternalServerError)
		return true
	})

	_, err := client.AllURLs(context.Background(), "t")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Len(t, statusErr.Body, 200)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_StatusErrorKeepsRunesWhole(t *testing.T) {
	backend, client, _ := setupTestServer(t)
	backend.Intercept(fakeapi.RouteAllURLs, func(w http.ResponseWriter, r *http.Request) bool {
		// 1 байт + двухбайтовые символы: граница 200 байт попадает внутрь символа
		http.Error(w, "x"+strings.Repeat("я", 500), http.StatusBadGateway)
		return true
	})

	_, err := client.AllURLs(context.Background(), "t")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, utf8.ValidString(statusErr.Body))
	assert.Len(t, statusErr.Body, 199)
}

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		n        int
		expected string
	}{
		{"Short", "abc", 5, "abc"},
		{"ASCII", "abcdef", 3, "abc"},
		{"Cut inside rune", "aяb", 2, "a"},
		{"On rune boundary", "aяb", 3, "aя"},
		{"Zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateBody(tt.in, tt.n))
		})
	}
}

func TestClient_Analytics(t *testing.T) {
	backend, client, userID := setupTestServer(t)
	token, err := backend.IssueToken(userID)
	require.NoError(t, err)
	link := backend.AddURL(userID, "https://example.com")

	for i := 0; i < 3; i++ {
		redirect, err := client.LookupRedirect(context.Background(), token, link.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, redirect.StatusCode)
	}

	records, err := client.Analytics(context.Background(), token, link.ShortCode)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestClient_LookupRedirect(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		location     string
		wantLocation string
	}{
		{"Found with location", http.StatusFound, "https://example.com", "https://example.com"},
		{"Moved permanently", http.StatusMovedPermanently, "https://example.org/x", "https://example.org/x"},
		{"Redirect without location", http.StatusFound, "", ""},
		{"Not found", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/url/abc", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				if tt.location != "" {
					w.Header().Set("Location", tt.location)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, nil, time.Second, zap.NewNop())
			redirect, err := client.LookupRedirect(context.Background(), "tok", "abc")
			require.NoError(t, err)
			assert.Equal(t, tt.status, redirect.StatusCode)
			assert.Equal(t, tt.wantLocation, redirect.Location)
		})
	}
}

func TestClient_ShareURL(t *testing.T) {
	client := NewClient("https://sho.rt/", nil, time.Second, zap.NewNop())
	assert.Equal(t, "https://sho.rt", client.BaseURL())
	assert.Equal(t, "https://sho.rt/api/url/abc", client.ShareURL("abc"))
	assert.Equal(t, "https://sho.rt/api/url/a%2Fb", client.ShareURL("a/b"))
}

func TestClient_ContextCanceled(t *testing.T) {
	_, client, _ := setupTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Login(ctx, "ann@example.com", "secret")
	assert.ErrorIs(t, err, context.Canceled)
}
