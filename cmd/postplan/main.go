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

	"github.com/soochol/postplan/internal/api"
	"github.com/soochol/postplan/internal/config"
	"github.com/soochol/postplan/internal/db"
	"github.com/soochol/postplan/internal/metrics"
	"github.com/soochol/postplan/internal/notify"
	"github.com/soochol/postplan/internal/repository"
	"github.com/soochol/postplan/internal/services"
	"github.com/soochol/postplan/internal/services/scheduler"
	"github.com/soochol/postplan/internal/storage"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve()
		return
	}
	fmt.Println("postplan v0.1.0")
	fmt.Println("Usage: postplan serve")
}

func serve() {
	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	holidays, err := cfg.HolidaySet()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		postRepo     repository.PostRepository
		scheduleRepo repository.ScheduleRepository
	)
	memPosts := repository.NewMemoryPostRepository()
	memSchedules := repository.NewMemoryScheduleRepository()
	postRepo, scheduleRepo = memPosts, memSchedules

	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			slog.Error("database migration failed", "err", err)
			os.Exit(1)
		}
		postRepo = repository.NewPersistentPostRepository(memPosts, database)
		scheduleRepo = repository.NewPersistentScheduleRepository(memSchedules, database)
		slog.Info("using PostgreSQL storage")
	} else {
		slog.Info("no database configured, using in-memory storage")
	}

	reg := metrics.NewRegistry(cfg.Metrics.Retention)

	dispatcher := scheduler.NewDispatcher(scheduleRepo, postRepo, reg, scheduler.Options{
		Tick:          cfg.Scheduler.Tick,
		Sweep:         cfg.Metrics.Sweep,
		Timezone:      cfg.Scheduler.Timezone,
		MaxConcurrent: cfg.Scheduler.MaxConcurrent,
	})
	if n := newNotifier(cfg.Notify); n.Len() > 0 {
		dispatcher.SetNotifier(n)
		slog.Info("dispatcher notifications enabled", "senders", n.Len())
	}
	if err := dispatcher.Start(ctx); err != nil {
		slog.Error("dispatcher start failed", "err", err)
		os.Exit(1)
	}
	defer dispatcher.Stop()

	srv := api.NewServer(
		services.NewPostService(postRepo),
		services.NewScheduleService(scheduleRepo),
		services.NewBulkService(postRepo, holidays),
		services.NewCalendarService(postRepo, time.Sunday),
	)
	srv.SetMetrics(reg)
	media, err := storage.NewLocalStorage(cfg.Media.Dir)
	if err != nil {
		slog.Warn("media storage disabled", "dir", cfg.Media.Dir, "err", err)
	} else {
		srv.SetMedia(media, cfg.Media.MaxUploadMB<<20)
	}
	srv.SetAllowedOrigins(cfg.Server.AllowedOrigins)
	srv.SetJWTSecret(cfg.Auth.JWTSecret)
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("auth.jwt_secret is empty, API is unauthenticated")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting postplan server", "addr", addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newNotifier builds a sender for every notify channel with its required
// fields set.
func newNotifier(cfg config.NotifyConfig) *notify.Notifier {
	var senders []notify.Sender
	if cfg.Slack.WebhookURL != "" {
		senders = append(senders, &notify.SlackSender{WebhookURL: cfg.Slack.WebhookURL, Channel: cfg.Slack.Channel})
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != "" {
		senders = append(senders, &notify.TelegramSender{Token: cfg.Telegram.Token, ChatID: cfg.Telegram.ChatID})
	}
	if cfg.SMTP.Host != "" {
		senders = append(senders, &notify.SMTPSender{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
			Password: cfg.SMTP.Password,
			Subject:  cfg.SMTP.Subject,
		})
	}
	return notify.NewNotifier(senders...)
}
