package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	dbfs "github.com/sagniknandigit/internship-management/db"

	"github.com/sagniknandigit/internship-management/api"
	"github.com/sagniknandigit/internship-management/internal/applications"
	"github.com/sagniknandigit/internship-management/internal/auth"
	"github.com/sagniknandigit/internship-management/internal/authz"
	"github.com/sagniknandigit/internship-management/internal/config"
	"github.com/sagniknandigit/internship-management/internal/db"
	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/internal/internships"
	"github.com/sagniknandigit/internship-management/internal/interviews"
	"github.com/sagniknandigit/internship-management/internal/jobs"
	"github.com/sagniknandigit/internship-management/internal/mentoring"
	"github.com/sagniknandigit/internship-management/internal/metrics"
	"github.com/sagniknandigit/internship-management/internal/notify"
	"github.com/sagniknandigit/internship-management/internal/reports"
	"github.com/sagniknandigit/internship-management/internal/repository/sqlite"
	"github.com/sagniknandigit/internship-management/internal/screening"
	"github.com/sagniknandigit/internship-management/internal/settings"
	"github.com/sagniknandigit/internship-management/internal/users"
	"github.com/sagniknandigit/internship-management/pkg/mail"
	"github.com/sagniknandigit/internship-management/pkg/ollama"
	"github.com/sagniknandigit/internship-management/pkg/redis"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	logger.Info("starting internship management server", "version", version, "build_time", buildTime, "env", cfg.Env)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open database connection
	d, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Error("close db", "err", err)
		}
	}()
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rc, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if rc != nil {
		defer rc.Close()
	}

	store := sqlite.New(d, logger)
	repo := store.Repository()
	var denylist repository.TokenDenylist = store
	if rc != nil {
		denylist = rc.Denylist()
	}

	hub := events.NewHub(64, logger)
	defer hub.Close()

	userSvc := users.NewService(repo.User, auth.NewTokens(cfg.JWTSecret, cfg.TokenDuration), denylist, hub, logger)
	created, err := userSvc.EnsureAdmin(ctx, cfg.BootstrapAdmin.Name, cfg.BootstrapAdmin.Email, cfg.BootstrapAdmin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		logger.Info("bootstrap admin created", "email", cfg.BootstrapAdmin.Email)
	}

	var enq jobs.Enqueuer
	if cfg.Jobs.Enabled {
		pool, closeJobs, err := startWorkers(ctx, cfg, d, repo, logger)
		if err != nil {
			return err
		}
		defer closeJobs()
		enq = pool
	}

	deps, err := buildDeps(cfg, d, repo, userSvc, enq, hub, logger)
	if err != nil {
		return err
	}
	deps.Limiter = redis.NewLimiter(rc, cfg.RateLimit.SigninPerMinute, time.Minute)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.SetupRoutes(deps),
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	logger.Info("shutting down server")

	// event streams only end when their subscription closes
	hub.Close()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// startWorkers wires the job handlers and starts the pool. The returned
// func stops the pool and releases the LLM client.
func startWorkers(ctx context.Context, cfg *config.Config, d *db.DB, repo *repository.Repository, logger *slog.Logger) (*jobs.WorkerPool, func(), error) {
	var gen screening.Generator
	var oc *ollama.Client
	if cfg.Screening.LLM {
		var err error
		oc, err = ollama.NewDefaultClient(cfg.Ollama)
		if err != nil {
			return nil, nil, fmt.Errorf("ollama: %w", err)
		}
		hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := oc.Health(hctx, cfg.Screening.Model); err != nil {
			// screening still stores the skill match without a summary
			logger.Warn("ollama not ready, summaries will be skipped until it is", "model", cfg.Screening.Model, "err", err)
		}
		cancel()
		gen = oc
	}
	screener := screening.New(repo.Application, repo.Internship, gen, screeningConfig(cfg), logger)

	handlers := map[string]jobs.Handler{
		jobs.TypeScreenApplication: screener.Handle,
		jobs.TypeSendEmail:         jobs.EmailHandler(mail.New(cfg.Email), logger),
	}
	pool := jobs.NewWorkerPool(jobs.NewRepository(d), handlers, logger, cfg.Jobs.Workers)
	pool.SetObserver(metrics.ObserveJob)
	pool.Start(ctx)

	return pool, func() {
		pool.Stop()
		if oc != nil {
			if err := oc.Close(); err != nil {
				logger.Warn("close ollama client", "err", err)
			}
		}
	}, nil
}

func screeningConfig(cfg *config.Config) screening.Config {
	return screening.Config{
		LLM:      cfg.Screening.LLM,
		Model:    cfg.Screening.Model,
		Template: cfg.Screening.Template,
		Timeout:  cfg.Screening.Timeout,
	}
}

func buildDeps(cfg *config.Config, d *db.DB, repo *repository.Repository, userSvc *users.Service, enq jobs.Enqueuer, hub *events.Hub, logger *slog.Logger) (api.Deps, error) {
	enforcer, err := authz.New()
	if err != nil {
		return api.Deps{}, err
	}
	wf, err := applications.NewWorkflow(cfg.Workflow.TransitionPolicy)
	if err != nil {
		return api.Deps{}, err
	}
	loc, err := time.LoadLocation(cfg.Workflow.Timezone)
	if err != nil {
		return api.Deps{}, fmt.Errorf("timezone: %w", err)
	}
	settingsSvc, err := settings.NewService(repo.Settings)
	if err != nil {
		return api.Deps{}, err
	}

	return api.Deps{
		Version:      version,
		BuildTime:    buildTime,
		DB:           d,
		Users:        userSvc,
		Internships:  internships.NewService(repo.Internship, repo.Application, repo.User, hub, logger),
		Applications: applications.NewService(repo, wf, enq, hub, logger),
		Interviews:   interviews.NewService(repo, enq, hub, logger),
		Notify:       notify.NewService(repo.Update, repo.User, hub, logger),
		Mentoring:    mentoring.NewService(repo, hub, logger),
		Reports:      reports.NewService(repo),
		Settings:     settingsSvc,
		Hub:          hub,
		Authz:        enforcer,
		Location:     loc,
	}, nil
}
