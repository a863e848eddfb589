package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	// Создаём SQL mock
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := NewPostgresStore(db, zap.NewNop())
	var _ Store = (*PostgresStore)(nil)

	tests := []struct {
		name  string
		setup func()
		run   func(t *testing.T)
	}{
		{
			name: "Get found",
			setup: func() {
				mock.ExpectQuery("SELECT value FROM client_storage WHERE key = \\$1").
					WithArgs("token").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc"))
			},
			run: func(t *testing.T) {
				value, exists, err := s.Get(ctx, "token")
				assert.NoError(t, err)
				assert.True(t, exists)
				assert.Equal(t, "abc", value)
			},
		},
		{
			name: "Get not found",
			setup: func() {
				mock.ExpectQuery("SELECT value FROM client_storage WHERE key = \\$1").
					WithArgs("token").
					WillReturnRows(sqlmock.NewRows([]string{"value"}))
			},
			run: func(t *testing.T) {
				value, exists, err := s.Get(ctx, "token")
				assert.NoError(t, err)
				assert.False(t, exists)
				assert.Equal(t, "", value)
			},
		},
		{
			name: "Get error",
			setup: func() {
				mock.ExpectQuery("SELECT value FROM client_storage WHERE key = \\$1").
					WithArgs("token").
					WillReturnError(errors.New("db error"))
			},
			run: func(t *testing.T) {
				_, exists, err := s.Get(ctx, "token")
				assert.EqualError(t, err, "db error")
				assert.False(t, exists)
			},
		},
		{
			name: "Set upsert",
			setup: func() {
				mock.ExpectExec("INSERT INTO client_storage \\(key, value\\) VALUES \\(\\$1, \\$2\\) ON CONFLICT \\(key\\) DO UPDATE").
					WithArgs("token", "abc").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run: func(t *testing.T) {
				assert.NoError(t, s.Set(ctx, "token", "abc"))
			},
		},
		{
			name: "Set error",
			setup: func() {
				mock.ExpectExec("INSERT INTO client_storage").
					WithArgs("token", "abc").
					WillReturnError(errors.New("db error"))
			},
			run: func(t *testing.T) {
				assert.EqualError(t, s.Set(ctx, "token", "abc"), "db error")
			},
		},
		{
			name: "Delete several keys",
			setup: func() {
				mock.ExpectExec("DELETE FROM client_storage WHERE key IN \\(\\$1, \\$2, \\$3\\)").
					WithArgs("token", "userId", "user").
					WillReturnResult(sqlmock.NewResult(0, 3))
			},
			run: func(t *testing.T) {
				assert.NoError(t, s.Delete(ctx, "token", "userId", "user"))
			},
		},
		{
			name:  "Delete nothing",
			setup: func() {},
			run: func(t *testing.T) {
				assert.NoError(t, s.Delete(ctx))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			tt.run(t)

			// Проверяем, что все ожидаемые вызовы мока выполнены
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
