package api_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	"github.com/tempizhere/shortyclient/internal/api"
	"github.com/tempizhere/shortyclient/internal/fakeapi"
	"go.uber.org/zap"
)

// ExampleClient демонстрирует вход и создание короткой ссылки
func ExampleClient() {
	backend := fakeapi.New()
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	_, _ = backend.AddUser("Ann", "ann@example.com", "secret")

	client := api.NewClient(srv.URL, nil, 5*time.Second, zap.NewNop())
	ctx := context.Background()

	token, err := client.Login(ctx, "ann@example.com", "secret")
	if err != nil {
		fmt.Printf("Ошибка входа: %v\n", err)
		return
	}

	created, err := client.CreateShortURL(ctx, token, "https://example.com")
	if err != nil {
		fmt.Printf("Ошибка создания: %v\n", err)
		return
	}

	urls, _ := client.AllURLs(ctx, token)
	fmt.Printf("Оригинальный URL: %s\n", created.OriginalURL)
	fmt.Printf("Ссылок: %d\n", len(urls))

	// Output:
	// Оригинальный URL: https://example.com
	// Ссылок: 1
}
