package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"tailor_shop/internal/config"
	"tailor_shop/internal/logger"
	"tailor_shop/pkg/client"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var apiURL string

func sessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".tailorshop", "session.json")
}

func newClient() *client.Client {
	cfg := config.Load()
	url := apiURL
	if url == "" {
		url = cfg.APIURL
	}
	return client.New(url,
		client.WithSessionStore(client.NewFileStore(sessionPath())),
		client.WithLogger(logger.NewWithWriter(cfg.AppEnv, os.Stderr)),
	)
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in to a running server and remember the session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		username := ""
		if len(args) == 1 {
			username = args[0]
		} else {
			username = prompt(cmd.OutOrStdout(), in, "Username: ")
		}
		password := readPassword(cmd.InOrStdin(), cmd.OutOrStdout(), in)

		c := newClient()
		user, err := c.Auth.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		name := username
		if user != nil && user.Name != "" {
			name = user.Name
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		newClient().Auth.Logout()
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the shop overview: revenue, open jobs per stage and recent bills",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		ov, err := c.Dashboard.Overview(cmd.Context())
		if errors.Is(err, client.ErrLoginRequired) || errors.Is(err, client.ErrSessionExpired) {
			return fmt.Errorf("%w: run \"tailorshop login\" first", err)
		}
		if err != nil {
			return err
		}
		if c.Offline() {
			fmt.Fprintln(cmd.ErrOrStderr(), "server unreachable, showing offline data")
		}
		printOverview(cmd.OutOrStdout(), ov)
		return nil
	},
}

func printOverview(w io.Writer, ov *client.Overview) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Customers\t%d\n", ov.Stats.TotalCustomers)
	fmt.Fprintf(tw, "Bills\t%d (today %d)\n", len(ov.Bills), ov.Stats.TodayBills)
	fmt.Fprintf(tw, "Revenue\tRs %.2f\n", ov.Revenue)
	fmt.Fprintf(tw, "Advance\tRs %.2f\n", ov.Advance)
	fmt.Fprintf(tw, "Outstanding\tRs %.2f\n", ov.Outstanding)
	fmt.Fprintf(tw, "Active jobs\t%d\n", ov.ActiveJobs)
	fmt.Fprintf(tw, "  cutting\t%d\n", ov.StageCounts.Cutting)
	fmt.Fprintf(tw, "  stitching\t%d\n", ov.StageCounts.Stitching)
	fmt.Fprintf(tw, "  finishing\t%d\n", ov.StageCounts.Finishing)
	fmt.Fprintf(tw, "  packaging\t%d\n", ov.StageCounts.Packaging)
	if len(ov.RecentBills) > 0 {
		fmt.Fprintln(tw, "\nRecent bills")
		for _, b := range ov.RecentBills {
			fmt.Fprintf(tw, "  #%s\t%s\tRs %.2f\t%s\n", b.BillNoStr, b.CustomerName, b.Total, b.Status)
		}
	}
	_ = tw.Flush()
}

func prompt(w io.Writer, r *bufio.Reader, label string) string {
	fmt.Fprint(w, label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// readPassword reads without echo when stdin is a terminal and falls back
// to a plain line read for pipes.
func readPassword(stdin io.Reader, w io.Writer, in *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err == nil {
			return string(b)
		}
	}
	return prompt(w, in, "Password: ")
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, logoutCmd, dashboardCmd} {
		c.Flags().StringVar(&apiURL, "api", "", "API base URL (defaults to API_URL)")
		rootCmd.AddCommand(c)
	}
}
