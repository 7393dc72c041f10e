package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"taskmind-backend/internal/log"
	"taskmind-backend/internal/models"
	"taskmind-backend/internal/syncer"
)

var (
	serverURL  string
	mirrorPath string
)

var rootCmd = &cobra.Command{
	Use:   "client",
	Short: "Offline-first task list that syncs with the API server",
}

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("TASKMIND_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:5000"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "API base URL")
	rootCmd.PersistentFlags().StringVar(&mirrorPath, "mirror", "", "local mirror file (default $HOME/.taskmind/"+syncer.StorageKey+".json)")

	addCmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task locally and push it when the server is reachable",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAdd,
	}
	addCmd.Flags().StringP("description", "d", "", "task description")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the local task list, refreshed from the server when online",
		RunE:  runList,
	}
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Push unsynced local tasks",
		RunE:  runSync,
	}
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the server and sync whenever it comes back online",
		RunE:  runWatch,
	}
	watchCmd.Flags().Duration("interval", 5*time.Second, "health poll interval")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every local task",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newController()
			if err != nil {
				return err
			}
			if _, err := c.Load(cmd.Context(), false); err != nil {
				return err
			}
			if err := c.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Local tasks cleared.")
			return nil
		},
	}
	remoteCmd := &cobra.Command{
		Use:   "remote",
		Short: "List tasks stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := syncer.NewHTTPRemote(serverURL, 0)
			list, err := remote.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			return printTasks(os.Stdout, list)
		},
	}

	rootCmd.AddCommand(addCmd, listCmd, syncCmd, watchCmd, clearCmd, remoteCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newController() (*syncer.Controller, *syncer.HTTPRemote, error) {
	path := mirrorPath
	if path == "" {
		var err error
		if path, err = syncer.DefaultMirrorPath(); err != nil {
			return nil, nil, err
		}
	}
	remote := syncer.NewHTTPRemote(serverURL, 0)
	return syncer.NewController(syncer.NewFileMirror(path), remote, log.GetLogger()), remote, nil
}

func isOnline(ctx context.Context, remote syncer.Remote) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return remote.Ping(ctx) == nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	c, remote, err := newController()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if _, err := c.Load(ctx, false); err != nil {
		return err
	}

	desc, err := cmd.Flags().GetString("description")
	if err != nil {
		return err
	}
	e, err := c.Add(ctx, strings.Join(args, " "), &desc)
	if err != nil {
		return err
	}
	fmt.Printf("Added %q locally (%s)\n", e.Title, e.ClientID)

	rep, swept, err := c.SetOnline(ctx, isOnline(ctx, remote))
	if err != nil {
		return err
	}
	if !swept {
		fmt.Println("Server offline, task will sync later.")
		return nil
	}
	fmt.Printf("Synced: %d created, %d already on server, %d failed\n", rep.Created, rep.Existing, rep.Failed)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	c, remote, err := newController()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	online := isOnline(ctx, remote)
	if _, err := c.Load(ctx, online); err != nil {
		return err
	}
	if online {
		if err := c.Refresh(ctx); err != nil {
			log.GetLogger().Warnf("refresh: %v", err)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tCATEGORY\tSYNCED")
	for _, e := range c.Entries() {
		id := "-"
		if e.ID != nil {
			id = fmt.Sprint(*e.ID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n", id, e.Title, e.Priority, e.Status, e.Category, e.Synced)
	}
	return w.Flush()
}

func runSync(cmd *cobra.Command, args []string) error {
	c, remote, err := newController()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if !isOnline(ctx, remote) {
		return syncer.ErrOffline
	}
	rep, err := c.Load(ctx, true)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d tasks: %d created, %d already on server, %d failed\n",
		rep.Attempted, rep.Created, rep.Existing, rep.Failed)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return err
	}
	c, remote, err := newController()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := c.Load(ctx, false); err != nil {
		return err
	}
	logger := log.GetLogger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		rep, swept, err := c.SetOnline(ctx, isOnline(ctx, remote))
		if err != nil {
			logger.Warnf("sync: %v", err)
		} else if swept {
			logger.Infof("back online, pushed %d of %d pending", rep.Created+rep.Existing, rep.Attempted)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printTasks(out io.Writer, list []models.Task) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tCATEGORY\tCREATED")
	for _, t := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, t.Status, t.Category,
			t.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}
