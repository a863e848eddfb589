package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/tempizhere/shortyclient/internal/fakeapi"
	"go.uber.org/zap"
)

// demoServer запускает встроенный бэкенд для режима --demo
type demoServer struct {
	srv *http.Server
	ln  net.Listener
}

// startDemo запускает бэкенд на свободном порту loopback-интерфейса
func startDemo(logger *zap.Logger) (*demoServer, error) {
	backend := fakeapi.New()
	if _, err := backend.SeedDemo(); err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Demo backend stopped", zap.Error(err))
		}
	}()
	return &demoServer{srv: srv, ln: ln}, nil
}

// URL возвращает базовый адрес бэкенда
func (d *demoServer) URL() string {
	return "http://" + d.ln.Addr().String()
}

// Close останавливает бэкенд, дожидаясь завершения запросов
func (d *demoServer) Close(ctx context.Context) error {
	return d.srv.Shutdown(ctx)
}
