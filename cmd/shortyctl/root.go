package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tempizhere/shortyclient/internal/app"
	"github.com/tempizhere/shortyclient/internal/config"
	"github.com/tempizhere/shortyclient/internal/fakeapi"
	"github.com/tempizhere/shortyclient/internal/log"
	"github.com/tempizhere/shortyclient/internal/notify"
	"github.com/tempizhere/shortyclient/internal/resolver"
	"github.com/tempizhere/shortyclient/internal/storage"
	"go.uber.org/zap"
)

// cli хранит состояние одного запуска команды
type cli struct {
	cfg    *config.Config
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	logger *zap.Logger
	demo   *demoServer
	app    *app.App
}

// run разбирает аргументы, выполняет команду и освобождает ресурсы
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	c := &cli{
		cfg:    config.NewConfig(),
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		logger: zap.NewNop(),
	}
	defer c.teardown()

	root := c.newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shortyctl",
		Short:         "Client for the URL shortening service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}
	c.cfg.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		c.newLoginCmd(),
		c.newRegisterCmd(),
		c.newLogoutCmd(),
		c.newListCmd(),
		c.newCreateCmd(),
		c.newCheckCmd(),
		c.newAnalyticsCmd(),
		c.newCopyCmd(),
		c.newQRCmd(),
		c.newShellCmd(),
	)
	return root
}

// setup загружает конфигурацию, открывает хранилище и восстанавливает сессию
func (c *cli) setup(ctx context.Context) error {
	if err := c.cfg.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.logger = log.NewLogger(c.cfg.LogLevel)

	if c.cfg.Demo {
		demo, err := startDemo(c.logger)
		if err != nil {
			return fmt.Errorf("start demo backend: %w", err)
		}
		c.demo = demo
		c.cfg.APIURL = demo.URL()
		c.cfg.StoragePath = ""
		c.cfg.RedisAddr = ""
		c.cfg.DatabaseDSN = ""
		fmt.Fprintf(c.errOut, "demo backend at %s, login with %s / %s\n", demo.URL(), fakeapi.DemoEmail, fakeapi.DemoPassword)
	}

	store, err := storage.Open(ctx, c.cfg, c.logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	var opener resolver.Opener = resolver.NewPrintOpener(c.out)
	if c.cfg.OpenBrowser {
		opener = resolver.NewBrowserOpener(c.out, c.logger)
	}

	c.app = app.New(c.cfg, c.logger, store, notify.NewWriterNotifier(c.errOut), opener)
	return c.app.Boot(ctx)
}

func (c *cli) teardown() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			c.logger.Warn("Failed to close storage", zap.Error(err))
		}
	}
	if c.demo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.demo.Close(ctx); err != nil {
			c.logger.Warn("Failed to stop demo backend", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}

// requireLinks проверяет, что пользователь вошёл
func (c *cli) requireLinks() error {
	if c.app.Screen() != app.ScreenLinks {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in, run `shortyctl login` first")

// prompt запрашивает значение, если оно не передано флагом
func (c *cli) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(c.errOut, "%s: ", label)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
