// Package app wires configuration into a running pantry: the selected item
// store, the inventory controller, the HTTP views and the report scheduler.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/repository"
	"github.com/mamadbah2/pantry/internal/repository/memory"
	"github.com/mamadbah2/pantry/internal/repository/mongodb"
	"github.com/mamadbah2/pantry/internal/repository/redis"
	"github.com/mamadbah2/pantry/internal/repository/sheets"
	"github.com/mamadbah2/pantry/internal/scheduler"
	"github.com/mamadbah2/pantry/internal/server/handlers"
	"github.com/mamadbah2/pantry/internal/server/router"
	commandsvc "github.com/mamadbah2/pantry/internal/service/commands"
	"github.com/mamadbah2/pantry/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/pantry/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/pantry/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/pantry/pkg/clients/whatsapp"
	"github.com/mamadbah2/pantry/pkg/logger"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Store is an item store that also keeps reports and must be closed.
type Store interface {
	repository.ItemStore
	repository.ReportRepository
	Close(ctx context.Context) error
}

// OpenStore connects the backend selected by cfg.Store.Backend.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Store.Backend {
	case config.BackendMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.Store.Collection)
		if err != nil {
			return nil, fmt.Errorf("init mongodb store: %w", err)
		}
		log.Info("mongodb store connected", zap.String("db", cfg.MongoDB.DBName), zap.String("collection", cfg.Store.Collection))
		return repo, nil
	case config.BackendRedis:
		store, err := redis.Dial(ctx, cfg.Redis.Addr, cfg.Store.Collection)
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		log.Info("redis store connected", zap.String("addr", cfg.Redis.Addr))
		return store, nil
	case config.BackendMemory:
		log.Warn("using in-memory store, inventory is lost on exit")
		return memory.NewStore(nil), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Server is a fully wired pantry server.
type Server struct {
	HTTP       *http.Server
	Controller *inventory.Controller
	Scheduler  *scheduler.Scheduler
}

// NewServer builds the controller, views and scheduler over store. The chat
// view and the spreadsheet export are only wired when configured.
func NewServer(ctx context.Context, cfg *config.Config, store Store, base *zap.Logger) (*Server, error) {
	if base == nil {
		base = zap.NewNop()
	}

	controller := inventory.NewController(store, inventory.Options{AtomicCounters: cfg.Inventory.AtomicCounters}, logger.Named(base, "svc.inventory"))

	var (
		webhook   *handlers.WebhookHandler
		messenger reportingsvc.Messenger
		recipient string
	)
	if cfg.WhatsApp.Enabled() {
		dispatcher := commandsvc.NewService(controller, logger.Named(base, "svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsappclient.NewClient(cfg.WhatsApp), dispatcher, logger.Named(base, "svc.whatsapp"))
		webhook = handlers.NewWebhookHandler(messagingSvc, logger.Named(base, "handlers.whatsapp"))
		messenger = messagingSvc
		recipient = cfg.WhatsApp.ReportRecipient
	} else {
		base.Info("whatsapp not configured, chat view disabled")
	}

	var sheetRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(base, "repo.sheets"))
		if err != nil {
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		sheetRepo = repo
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}
	reporting := reportingsvc.NewService(controller, store, sheetRepo, messenger, recipient, logger.Named(base, "svc.reporting"))
	reporting.SetLocation(location)
	sched, err := scheduler.NewScheduler(cfg.Reporting, reporting, logger.Named(base, "scheduler"))
	if err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	inventoryHandler := handlers.NewInventoryHandler(controller, logger.Named(base, "handlers.inventory"))
	engine := router.New(inventoryHandler, webhook, logger.Named(base, "router"))

	return &Server{
		HTTP: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Controller: controller,
		Scheduler:  sched,
	}, nil
}

// Serve opens the store, runs the server until ctx is done and shuts down.
func Serve(ctx context.Context, cfg *config.Config, base *zap.Logger) error {
	if base == nil {
		base = zap.NewNop()
	}

	store, err := OpenStore(ctx, cfg, logger.Named(base, "repo"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			base.Error("failed to close store", zap.Error(err))
		}
	}()

	srv, err := NewServer(ctx, cfg, store, base)
	if err != nil {
		return err
	}

	srv.Scheduler.Start()
	defer srv.Scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		base.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("atomic_counters", srv.Controller.Atomic()))
		if err := srv.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server crashed: %w", err)
		}
	case <-ctx.Done():
		base.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.HTTP.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
