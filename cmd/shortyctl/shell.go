package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tempizhere/shortyclient/internal/analytics"
	"go.uber.org/zap"
)

const shellHelp = `Commands:
  login <email> <password>          log in
  register <name> <email> <password> create an account
  logout                            log out
  list                              show your links
  refresh                           reload links from the server
  create <url>                      shorten a URL
  check <code>                      show where a code redirects
  open <code>                       show analytics for a code
  back                              return to the link list
  copy <code>                       print the public short link
  help                              show this help
  exit                              quit`

var errExit = errors.New("exit")

func (c *cli) newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session that keeps the client state between commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runShell(cmd.Context())
		},
	}
}

// runShell читает команды построчно до exit или конца ввода.
// Ошибки команд печатаются и не прерывают работу.
func (c *cli) runShell(ctx context.Context) error {
	for {
		fmt.Fprint(c.out, c.shellPrompt())
		line, err := c.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		fields := strings.Fields(line)
		if len(fields) > 0 {
			switch cmdErr := c.shellExec(ctx, fields[0], fields[1:]); {
			case errors.Is(cmdErr, errExit):
				return nil
			case cmdErr != nil:
				c.logger.Debug("Shell command failed", zap.String("command", fields[0]), zap.Error(cmdErr))
				fmt.Fprintf(c.errOut, "%s: %v\n", fields[0], cmdErr)
			}
		}
		if eof {
			fmt.Fprintln(c.out)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *cli) shellPrompt() string {
	v := c.app.View()
	if v.Mode == analytics.AnalyticsView {
		return fmt.Sprintf("shorty[analytics %s]> ", v.Code)
	}
	return fmt.Sprintf("shorty[%s]> ", c.app.Screen())
}

func (c *cli) shellExec(ctx context.Context, name string, args []string) error {
	want := func(n int, usage string) error {
		if len(args) != n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}

	switch name {
	case "help", "?":
		fmt.Fprintln(c.out, shellHelp)
	case "exit", "quit":
		return errExit
	case "login":
		if err := want(2, "login <email> <password>"); err != nil {
			return err
		}
		if err := c.app.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Logged in, %d links\n", len(c.app.URLs()))
	case "register":
		if err := want(3, "register <name> <email> <password>"); err != nil {
			return err
		}
		user, err := c.app.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Registered %s, now log in\n", user.Email)
	case "logout":
		if err := c.app.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Logged out")
	case "list", "ls":
		if err := c.requireLinks(); err != nil {
			return err
		}
		return c.printLinks(c.app.URLs())
	case "refresh":
		if err := c.requireLinks(); err != nil {
			return err
		}
		if err := c.app.Refresh(ctx); err != nil {
			return err
		}
		return c.printLinks(c.app.URLs())
	case "create":
		if err := want(1, "create <url>"); err != nil {
			return err
		}
		created, err := c.app.Create(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, c.app.ShareURL(created.ShortCode))
	case "check":
		if err := want(1, "check <code>"); err != nil {
			return err
		}
		_, err := c.app.Check(ctx, args[0])
		return err
	case "open":
		if err := want(1, "open <code>"); err != nil {
			return err
		}
		if err := c.app.OpenAnalytics(ctx, args[0]); err != nil {
			return err
		}
		return c.printAnalytics(c.app.View(), c.app.Summary())
	case "back":
		c.app.Back()
	case "copy":
		if err := want(1, "copy <code>"); err != nil {
			return err
		}
		fmt.Fprintln(c.out, c.app.ShareURL(args[0]))
	default:
		return errors.New("unknown command, type help")
	}
	return nil
}
