package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/client"
	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/logging"
)

const defaultAPIURL = "http://localhost:8080"

type cli struct {
	apiURL      string
	sessionPath string
	verbose     bool

	logger *zap.Logger
	app    *client.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:               "bookctl",
		Short:             "Book facility time slots from the command line",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	apiDefault := os.Getenv("BOOKCTL_API")
	if apiDefault == "" {
		apiDefault = defaultAPIURL
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api", apiDefault, "API base URL (env BOOKCTL_API)")
	root.PersistentFlags().StringVar(&c.sessionPath, "session", "", "session file (default <user config dir>/residentbook/session.json)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log requests and state changes")

	root.AddCommand(
		c.signupCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.servicesCmd(),
		c.slotsCmd(),
		c.bookCmd(),
		c.bookingsCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	logger, err := logging.New(false, level)
	if err != nil {
		return err
	}
	c.logger = logger

	if c.sessionPath == "" {
		if c.sessionPath, err = client.DefaultSessionPath(); err != nil {
			return err
		}
	}

	store := client.NewStore(client.State{})
	store.Subscribe(func(s client.State) {
		c.logger.Debug("State changed",
			zap.Bool("loading", s.Loading),
			zap.Bool("loggedIn", s.LoggedIn()),
			zap.Int("services", len(s.Services)),
			zap.Int("slots", len(s.Slots)),
			zap.Int("bookings", len(s.Bookings)),
			zap.Error(s.Err))
	})

	c.app = client.NewApp(client.New(c.apiURL, nil), store, client.NewSessionStore(c.sessionPath), logger)
	if c.app.Restore() {
		c.logger.Debug("Session restored", zap.String("path", c.sessionPath))
	}
	return nil
}

func (c *cli) state() client.State { return c.app.Store().State() }

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// addViewFlags binds the list search, sort and paging flags to view.
func addViewFlags(cmd *cobra.Command, view *listview.View) {
	cmd.Flags().StringVar(&view.Search, "search", "", "case-insensitive search term")
	cmd.Flags().StringVar(&view.Sort, "sort", "", "sort column")
	cmd.Flags().StringVar((*string)(&view.Order), "order", "", "sort order: asc or desc")
	cmd.Flags().IntVar(&view.Page, "page", 1, "page number")
}

func pageFooter(w io.Writer, page, totalPages, total int) {
	if totalPages == 0 {
		totalPages = 1
	}
	fmt.Fprintf(w, "page %d of %d, %d total\n", page, totalPages, total)
}

var errAborted = errors.New("aborted")

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}
