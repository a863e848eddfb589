package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"github.com/tempizhere/shortyclient/internal/analytics"
	"github.com/tempizhere/shortyclient/internal/models"
)

func (c *cli) newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = c.prompt("Email", email); err != nil {
				return err
			}
			if password, err = c.prompt("Password", password); err != nil {
				return err
			}
			if err := c.app.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Logged in, %d links\n", len(c.app.URLs()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func (c *cli) newRegisterCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if name, err = c.prompt("Name", name); err != nil {
				return err
			}
			if email, err = c.prompt("Email", email); err != nil {
				return err
			}
			if password, err = c.prompt("Password", password); err != nil {
				return err
			}
			user, err := c.app.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Registered %s <%s>, now run `shortyctl login`\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your short links with click counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireLinks(); err != nil {
				return err
			}
			return c.printLinks(c.app.URLs())
		},
	}
}

func (c *cli) newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <url>",
		Short: "Shorten a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := c.app.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, c.app.ShareURL(created.ShortCode))
			return nil
		},
	}
}

func (c *cli) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <code>",
		Short: "Show where a short code redirects, without following it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.Check(cmd.Context(), args[0])
			return err
		},
	}
}

func (c *cli) newAnalyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics <code>",
		Short: "Show clicks for a short code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.OpenAnalytics(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.printAnalytics(c.app.View(), c.app.Summary())
		},
	}
}

func (c *cli) newCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <code>",
		Short: "Print the public short link for a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Fprintln(c.out, c.app.ShareURL(args[0]))
			return nil
		},
	}
}

func (c *cli) newQRCmd() *cobra.Command {
	var pngPath string
	var size int
	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Render the public short link as a QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			link := c.app.ShareURL(args[0])
			if pngPath != "" {
				if err := qrcode.WriteFile(link, qrcode.Medium, size, pngPath); err != nil {
					return fmt.Errorf("write qr code: %w", err)
				}
				fmt.Fprintf(c.out, "QR code for %s saved to %s\n", link, pngPath)
				return nil
			}
			qr, err := qrcode.New(link, qrcode.Medium)
			if err != nil {
				return fmt.Errorf("encode qr code: %w", err)
			}
			fmt.Fprint(c.out, qr.ToString(false))
			fmt.Fprintln(c.out, link)
			return nil
		},
	}
	cmd.Flags().StringVar(&pngPath, "png", "", "write a PNG image instead of printing to the terminal")
	cmd.Flags().IntVar(&size, "size", 256, "PNG size in pixels")
	return cmd
}

// printLinks печатает ссылки таблицей
func (c *cli) printLinks(links []models.ShortURL) error {
	if len(links) == 0 {
		fmt.Fprintln(c.out, "No links yet")
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tCLICKS\tCREATED\tSHORT\tORIGINAL")
	for _, u := range links {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", u.ShortCode, u.ClickCount, u.CreatedAt.Format("2006-01-02"), c.app.ShareURL(u.ShortCode), u.OriginalURL)
	}
	return w.Flush()
}

// printAnalytics печатает переходы и итоги
func (c *cli) printAnalytics(v analytics.View, s analytics.Summary) error {
	fmt.Fprintf(c.out, "Analytics for %s: %d clicks\n", v.Code, s.Total)
	if s.Total == 0 {
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLICKED\tIP\tCOUNTRY\tDEVICE\tBROWSER")
	for _, r := range v.Records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ClickedAt.Format("2006-01-02 15:04:05"), r.IP, r.Country, r.Device, r.Browser)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printCounts(c.out, "Countries", s.ByCountry)
	printCounts(c.out, "Devices", s.ByDevice)
	printCounts(c.out, "Browsers", s.ByBrowser)
	return nil
}

func printCounts(out io.Writer, title string, counts []analytics.Count) {
	fmt.Fprintf(out, "%s:", title)
	for _, c := range counts {
		fmt.Fprintf(out, " %s=%d", c.Value, c.Count)
	}
	fmt.Fprintln(out)
}
