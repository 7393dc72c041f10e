package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"taskmind-backend/internal/ai"
	"taskmind-backend/internal/analytics"
	"taskmind-backend/internal/config"
	"taskmind-backend/internal/db"
	"taskmind-backend/internal/log"
	"taskmind-backend/internal/tasks"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Task manager API server",
	RunE:  runServe,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	}
	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Re-classify every stored task once and exit",
		RunE:  runOptimize,
	}
	suggestCmd := &cobra.Command{
		Use:   "suggest [text]",
		Short: "Ask the model for a task suggestion",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSuggest,
	}
	suggestCmd.Flags().Bool("accept", false, "store the suggestion as a new task")

	rootCmd.AddCommand(serveCmd, optimizeCmd, suggestCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg   *config.Config
	svc   *tasks.Service
	close func()
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)
	logger := log.GetLogger()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	model := ai.New(ai.Options{
		BaseURL:     cfg.ModelBaseURL,
		APIKey:      cfg.ModelAPIKey,
		Model:       cfg.ModelName,
		Temperature: cfg.ModelTemperature,
		Timeout:     cfg.ModelTimeout,
		MaxRetries:  cfg.ModelMaxRetries,
		Logger:      logger,
	})
	svc := tasks.NewService(store, model, model, tasks.ServiceOptions{
		Logger:  logger,
		Workers: cfg.OptimizeWorkers,
	})
	return &app{cfg: cfg, svc: svc, close: closeStore}, nil
}

func openStore(cfg *config.Config) (tasks.Store, func(), error) {
	logger := log.GetLogger()
	if cfg.DBDriver == "memory" {
		logger.Warnf("⚠️ DB_DRIVER=memory, tasks are lost on exit")
		return tasks.NewMemoryStore(), func() {}, nil
	}

	database, err := db.Connect(cfg.DBDriver, cfg.ConnString())
	if err != nil {
		return nil, nil, errors.Wrap(err, "❌ failed to connect DB")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, database); err != nil {
		database.Close()
		return nil, nil, err
	}
	logger.Infof("✅ Connected to %s!", cfg.DBDriver)
	return db.NewTaskStore(database), func() { database.Close() }, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	logger := log.GetLogger()

	if a.cfg.OptimizeSchedule != "" {
		c, err := tasks.ScheduleOptimize(a.cfg.OptimizeSchedule, a.svc)
		if err != nil {
			return err
		}
		defer c.Stop()
		logger.Infof("⏰ optimize scheduled: %s", a.cfg.OptimizeSchedule)
	}

	mux := http.NewServeMux()
	tasks.Routes(mux, a.svc)
	mux.HandleFunc("GET /api/stats", analytics.StatsHandler(a.svc, logger))

	c := cors.New(cors.Options{
		AllowedOrigins: a.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("🚀 API server is running on %s", a.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.svc.OptimizeAll(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Optimized %d tasks! (%d failed)\n", res.Count, res.Failed)
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	accept, err := cmd.Flags().GetBool("accept")
	if err != nil {
		return err
	}
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	sug, err := a.svc.Suggest(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Printf("Title:       %s\nDescription: %s\n", sug.Title, sug.Description)
	if !accept {
		return nil
	}

	desc := sug.Description
	res, err := a.svc.CreateTask(cmd.Context(), tasks.CreateInput{Title: sug.Title, Description: &desc})
	if err != nil {
		return err
	}
	t := res.Task
	fmt.Printf("Stored as #%d [%s/%s/%s]\n", t.ID, t.Priority, t.Status, t.Category)
	return nil
}
