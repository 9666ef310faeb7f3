package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	shopcfg "github.com/Skotchmaster/feed_shop/internal/config"
	"github.com/Skotchmaster/feed_shop/internal/events"
	"github.com/Skotchmaster/feed_shop/internal/httpserver"
	"github.com/Skotchmaster/feed_shop/internal/payment"
	"github.com/Skotchmaster/feed_shop/internal/repo"
	"github.com/Skotchmaster/feed_shop/internal/search"
	"github.com/Skotchmaster/feed_shop/internal/service"
	"github.com/Skotchmaster/feed_shop/internal/session"
	pkgdb "github.com/Skotchmaster/feed_shop/pkg/db"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shopcfg.LoadDotEnv()
			cfg := shopcfg.Load()
			if port != 0 {
				cfg.ServerPort = port
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides SERVER_PORT)")
	return cmd
}

func serve(parent context.Context, cfg *shopcfg.Config) error {
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer pkgdb.Close(db)

	if err := repo.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	r := repo.New(db)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
		defer kp.Close()
		publisher = kp
		logger.Info("events_enabled", "brokers", cfg.KafkaBrokers)
	}

	sessions := session.NewManager(session.NewMemoryStore(), cfg.SessionSecret, cfg.SessionTTL)
	go sessions.RunJanitor(ctx, cfg.SessionPruneInterval)

	var gateway payment.Gateway
	if cfg.GatewayEnabled() {
		gateway = payment.NewRazorpay(cfg.PaymentBaseURL, cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.PaymentTimeout)
	} else {
		gateway = payment.NewMock(cfg.PaymentWebhookSecret)
		logger.Warn("payment_gateway_mock", "reason", "PAYMENT_KEY_ID not set")
	}

	authSvc := &service.AuthService{Repo: r, Sessions: sessions, Events: publisher}
	catalogSvc := &service.CatalogService{Repo: r, Events: publisher}
	if cfg.ESURL != "" {
		ix, err := search.NewClient(ctx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("search_index_unavailable", "reason", "using database search", "error", err)
		} else {
			catalogSvc.Index = ix
		}
	}
	orderSvc := &service.OrderService{
		Repo:           r,
		Gateway:        gateway,
		Events:         publisher,
		Currency:       cfg.PaymentCurrency,
		GatewayTimeout: cfg.PaymentTimeout,
	}
	contactSvc := &service.ContactService{Repo: r, Events: publisher}

	if err := catalogSvc.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if err := authSvc.EnsureAdmin(ctx, service.AdminBootstrap{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
		Phone:    cfg.AdminPhone,
	}); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	staticDir := ""
	if cfg.Production {
		staticDir = cfg.StaticDir
	}
	e := httpserver.New(logger, httpserver.Options{
		CSRF:          cfg.CSRFEnabled,
		SecureCookies: cfg.Production,
		StaticDir:     staticDir,
	}, &httpserver.Deps{
		DB:             db,
		Gate:           &httpserver.Gate{Auth: authSvc, SecureCookies: cfg.Production},
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, SecureCookies: cfg.Production},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc},
		ContactHandler: &httpserver.ContactHTTP{Svc: contactSvc},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "production", cfg.Production)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}

	logger.Info("stopped")
	return nil
}
