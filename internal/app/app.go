package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/m3rciful/shopbot/core/bootstrap"
	"github.com/m3rciful/shopbot/core/logger"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/router"
	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/internal/bot"
	"github.com/m3rciful/shopbot/internal/broadcast"
	"github.com/m3rciful/shopbot/internal/cart"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/orders"
	"github.com/m3rciful/shopbot/internal/payments"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/storage"
	"github.com/m3rciful/shopbot/internal/users"
	"log/slog"
)

// App holds the assembled storefront components.
type App struct {
	cfg *Config

	store      *storage.Store
	users      *users.Service
	handlers   *bot.Handlers
	fsm        state.Manager
	registry   *coretelegram.Registry
	apiServer  *http.Server
	closeStore func() error
}

// Bootstrap initializes infrastructure and wires the shop services.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.New(res.DB)
	sessions := session.NewCache()
	fsm := state.NewMemoryManager()

	usersSvc := users.NewService(store)
	catalogSvc := catalog.NewService(store)
	cartMgr := cart.NewManager(store)
	orderMgr := orders.NewManager(store, orders.Policy{
		AllowPaidDelete: cfg.Shop.AllowPaidOrderDelete,
	})
	provider := payments.NewYooKassa(payments.YooKassaConfig{
		ShopID:    cfg.Payment.ShopID,
		SecretKey: cfg.Payment.SecretKey,
		BaseURL:   cfg.Payment.BaseURL,
		ReturnURL: cfg.Payment.ReturnURL,
		Currency:  cfg.Payment.Currency,
	}, nil)
	reconciler := payments.NewReconciler(store, orderMgr, provider)

	handlers := bot.NewHandlers(bot.Options{
		Channel:             cfg.Shop.Channel,
		PageSize:            cfg.Shop.PageSize,
		RequireSubscription: cfg.Shop.RequireSubscription,
	}, usersSvc, catalogSvc, cartMgr, orderMgr, reconciler, sessions, fsm)

	registry := coretelegram.NewRegistry()
	handlers.Register(registry)

	return &App{
		cfg:        cfg,
		store:      store,
		users:      usersSvc,
		handlers:   handlers,
		fsm:        fsm,
		registry:   registry,
		closeStore: res.DB.Close,
	}, nil
}

// TelegramRunOptions builds the bot runtime configuration.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	coreCfg := a.cfg.CoreConfig()

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: coreCfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.fsm, a.registry, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      coreCfg,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(coreCfg, nil),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	sender := bot.NewBroadcastSender(rt.Bot)
	svc := broadcast.NewService(a.users, sender, 0)

	a.apiServer = &http.Server{
		Addr:              a.cfg.API.Listen,
		Handler:           broadcast.NewRouter(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.API.Info("admin api listening",
			slog.String("event", "start"),
			slog.String("addr", a.cfg.API.Listen),
		)
		if err := a.apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.API.Error("admin api failed",
				slog.String("event", "serve"),
				slog.String("err", err.Error()),
			)
		}
	}()
	return nil
}

func (a *App) onStop(ctx context.Context, rt coretelegram.Runtime) error {
	var firstErr error

	if a.apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
			firstErr = fmt.Errorf("admin api shutdown: %w", err)
		}
	}
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("db close: %w", err)
		}
	}
	return firstErr
}
