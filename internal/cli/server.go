package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/config"
	"daily-quiz-service/internal/dispatch"
	transport "daily-quiz-service/internal/transport/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	resolver := app.NewQuizResolver(d.quizFinder(), d.loc, config.Duration(cfg.Quiz.LookupTimeout, 2*time.Second))
	otpService := app.NewOTPService(dispatch.NewTriggeredStore(d.otp, d.queue), d.otpValidity(), cfg.MaxAttempts())
	service := app.NewQuizService(d.visitStore(), resolver, otpService, app.NewLeadService(d.leads))

	quizHandler := transport.NewQuizHandler(resolver)
	wsHandler := transport.NewWSHandler(service, d.loc)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/quizzes/today", quizHandler.HandleToday)
	mux.HandleFunc("/quizzes", quizHandler.HandleByDate)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// The in-memory queue only exists in this process, so it always needs an embedded consumer.
	if cfg.Dispatch.Embedded || d.redis == nil {
		worker := d.worker()
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
