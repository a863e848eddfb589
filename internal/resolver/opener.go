package resolver

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// PrintOpener печатает адрес назначения
type PrintOpener struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrintOpener создаёт Opener, пишущий адрес в w
func NewPrintOpener(w io.Writer) *PrintOpener {
	return &PrintOpener{w: w}
}

func (o *PrintOpener) Open(_ context.Context, destination string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := fmt.Fprintln(o.w, destination)
	return err
}

// BrowserOpener запускает системный браузер; при ошибке печатает адрес через fallback.
// Процесс запуска не привязан к контексту операции и завершается сам.
type BrowserOpener struct {
	fallback *PrintOpener
	logger   *zap.Logger
	command  func(destination string) *exec.Cmd
}

// NewBrowserOpener создаёт Opener для текущей ОС
func NewBrowserOpener(w io.Writer, logger *zap.Logger) *BrowserOpener {
	return &BrowserOpener{
		fallback: NewPrintOpener(w),
		logger:   logger,
		command:  browserCommand,
	}
}

func (o *BrowserOpener) Open(ctx context.Context, destination string) error {
	if !isWebURL(destination) {
		o.logger.Info("Refusing to launch browser for non-web destination", zap.String("destination", destination))
		return o.fallback.Open(ctx, destination)
	}

	cmd := o.command(destination)
	if err := cmd.Start(); err != nil {
		o.logger.Info("Failed to launch browser", zap.Error(err))
		return o.fallback.Open(ctx, destination)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			o.logger.Debug("Browser launcher exited with error", zap.Error(err))
		}
	}()
	return nil
}

// isWebURL разрешает запуск только для абсолютных http и https адресов
func isWebURL(destination string) bool {
	u, err := url.Parse(destination)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func browserCommand(destination string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", destination)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", destination)
	default:
		return exec.Command("xdg-open", destination)
	}
}
