package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/entitlement-gate/internal/cache"
	"github.com/magabrotheeeer/entitlement-gate/internal/config"
	"github.com/magabrotheeeer/entitlement-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gate/internal/rabbitmq"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/admin"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/auth"
	"github.com/magabrotheeeer/entitlement-gate/internal/services/premium"
	"github.com/magabrotheeeer/entitlement-gate/internal/session"
	"github.com/magabrotheeeer/entitlement-gate/internal/storage/repository"
)

// Publisher публикация доменных событий.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// App HTTP-сервер со всеми зависимостями.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	closers []io.Closer
}

// New открывает хранилища, подключает брокер и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.gate.New"
	a := &App{logger: logger}

	db, err := repository.New(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	a.db = db
	mode, err := db.JournalMode(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	logger.Info("sqlite opened", slog.String("path", cfg.SQLitePath), slog.String("journal_mode", mode))

	store, err := a.sessionStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	events, err := a.publisher(cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Warn("SESSION_SECRET is not set, using the default secret", slog.String("op", op))
	}
	signer := jwt.NewJWTMaker(cfg.SessionSecret, cfg.SessionTTL)
	sessions := session.NewManager(store, signer, session.Options{
		CookieName: cfg.CookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	})

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Log:      logger,
		Users:    db,
		Sessions: sessions,
		Auth:     auth.NewService(logger, db, events, cfg.AllowedEmailDomain),
		Premium:  premium.NewService(logger, db, events),
		Admin:    admin.NewAuthenticator(logger, cfg.Admin),
		Display: middlewarectx.Display{
			Brand:     cfg.Brand,
			BaseURL:   cfg.BaseURL,
			EmbedURL:  cfg.EmbedURL,
			CropTopPx: cfg.CropTopPx,
		},
		PaymentURL: cfg.PaymentURL,
	})

	a.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

func (a *App) sessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.RedisAddress == "" {
		a.logger.Info("session store: memory")
		return session.NewMemoryStore(), nil
	}
	cacheRedis, err := cache.InitServer(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, cacheRedis)
	a.logger.Info("session store: redis", slog.String("address", cfg.RedisAddress))
	return session.NewRedisStore(cacheRedis.Db), nil
}

func (a *App) publisher(cfg *config.Config) (Publisher, error) {
	if cfg.AMQPURL == "" {
		a.logger.Info("domain events disabled")
		return rabbitmq.NopPublisher{}, nil
	}
	conn, err := rabbitmq.Connect(cfg.AMQPURL, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn)
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, ch)
	a.logger.Info("domain events enabled", slog.String("exchange", cfg.Exchange))
	return rabbitmq.NewPublisher(ch, cfg.Exchange), nil
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
		a.db = nil
	}
}
