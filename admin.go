// admin.go - login, logout, the admin console and visit statistics
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zachkp/folio/internal/api"
	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/console"
	"github.com/Zachkp/folio/internal/dashboard"
	"github.com/Zachkp/folio/internal/session"
	"github.com/Zachkp/folio/internal/visits"
)

var (
	loginPassword string
	visitsRecent  int
	visitsJSON    bool
	visitsPrune   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify the admin password and store it for later commands",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored admin password",
	RunE:  runLogout,
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Open the admin dashboard console",
	RunE:  runAdmin,
}

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Show privacy-conscious visitor statistics",
	RunE:  runVisits,
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Admin password (read from stdin when empty)")
	visitsCmd.Flags().IntVar(&visitsRecent, "recent", 10, "Number of recent visits to list")
	visitsCmd.Flags().BoolVar(&visitsJSON, "json", false, "Print statistics as JSON")
	visitsCmd.Flags().BoolVar(&visitsPrune, "prune", false, "Delete visits older than the retention period first")

	rootCmd.AddCommand(loginCmd, logoutCmd, adminCmd, visitsCmd)
}

func openSession(cfg config.Config) *session.Session {
	switch cfg.Session.Store {
	case "file":
		return session.New(&session.FileStore{Path: cfg.Session.File})
	case "memory":
		return session.New(&session.MemoryStore{})
	}
	return session.New(session.NewKeyringStore())
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	password := loginPassword
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		password, err = readPassword(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	sess := openSession(cfg)
	if err := sess.Login(cmd.Context(), client, password); err != nil {
		if errors.Is(err, api.ErrInvalidPassword) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Invalid password")
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
	return nil
}

// readPassword reads one line from in without echo when in is the terminal,
// and as plain text when it is piped.
func readPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := openSession(cfg).Clear(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runAdmin(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	c := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), dashboard.Config{
		Experience: client,
		Projects:   client,
		Session:    openSession(cfg),
	})
	return c.Run(cmd.Context())
}

func runVisits(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := visits.Open(cfg.Visits.DBPath, cfg.Visits.Salt)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if visitsPrune && cfg.Visits.RetentionDays > 0 {
		n, err := store.Prune(ctx, time.Duration(cfg.Visits.RetentionDays)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d visits.\n", n)
	}

	stats, err := store.Stats(ctx, visitsRecent)
	if err != nil {
		return fmt.Errorf("failed to load statistics: %w", err)
	}

	out := cmd.OutOrStdout()
	if visitsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(out, "Total visits:   %d\n", stats.Total)
	fmt.Fprintf(out, "Unique visitors: %d\n", stats.Unique)
	fmt.Fprintf(out, "Today:          %d\n", stats.Today)
	fmt.Fprintf(out, "Last 7 days:    %d\n", stats.ThisWeek)
	if len(stats.TopPaths) > 0 {
		fmt.Fprintln(out, "\nTop paths:")
		for _, p := range stats.TopPaths {
			fmt.Fprintf(out, "  %6d  %s\n", p.Count, p.Path)
		}
	}
	if len(stats.Recent) > 0 {
		fmt.Fprintln(out, "\nRecent:")
		for _, v := range stats.Recent {
			fmt.Fprintf(out, "  %s  %s  %s\n", v.Timestamp.Format(time.DateTime), v.HashedIP, v.Path)
		}
	}
	return nil
}
