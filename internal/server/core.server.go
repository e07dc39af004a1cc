package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notification-service/internal/config"
	hrest "notification-service/internal/handler/http"
	wshandler "notification-service/internal/handler/ws"
	"notification-service/internal/repository"
	"notification-service/internal/router"
	"notification-service/internal/usecase"
	"notification-service/internal/worker"
	"notification-service/pkg/gosms"
	"notification-service/pkg/identity"
	"notification-service/pkg/mailer"
	"notification-service/pkg/notifier"
	ws "notification-service/pkg/notifier/ws"
	"notification-service/pkg/pubsub"
	"notification-service/pkg/push"
	"notification-service/pkg/queue"
	"notification-service/pkg/template"
)

// Server bundles the HTTP surface and the dispatch worker built over one
// set of validated connections.
type Server struct {
	HTTP    *http.Server
	Worker  *worker.Worker
	cleanup []func()
}

func (s *Server) Close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

// New wires the service. Every external connection is established and
// verified here; a missing store or provider is a startup failure.
func New(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*Server, error) {
	srv := &Server{}

	// --- DB connection ---
	dbpool, err := config.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	srv.cleanup = append(srv.cleanup, dbpool.Close)

	notifRepo := repository.NewRepository(dbpool)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		srv.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	srv.cleanup = append(srv.cleanup, func() { _ = rdb.Close() })

	jobQueue := queue.NewRedis(rdb, cfg.QueueKey)
	events := pubsub.NewRedis(rdb)

	// --- Providers ---
	emailProvider := mailer.New(cfg.SendgridFromName, cfg.SendgridFromEmail, cfg.SendgridAPIKey, logger)
	smsProvider := gosms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	pushProvider, err := push.NewFCMClient(ctx, cfg.FirebaseCredentialsFile, logger)
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("init push provider: %w", err)
	}

	// --- Contact resolution ---
	contacts := identity.NewCached(
		identity.NewHTTPResolver(cfg.IdentityBaseURL, cfg.IdentityAPIKey),
		rdb,
		cfg.ContactCacheTTL,
	)

	// --- Templates ---
	tmplService := template.NewTemplateService(cfg.EmailTemplatesPath, cfg.SMSTemplatesPath)

	// --- Channel senders ---
	notif := notifier.New(
		notifier.NewEmailSender(emailProvider, contacts, tmplService, logger),
		notifier.NewSMSSender(smsProvider, contacts, tmplService, logger),
		notifier.NewPushSender(pushProvider, notifRepo, logger),
		notifier.NewInAppSender(notifRepo, events, logger),
	)

	// --- Usecases ---
	progress := func(dispatchID, stage string) {
		logger.Debug("Dispatch progress",
			zap.String("dispatch_id", dispatchID),
			zap.String("stage", stage),
		)
	}
	dispatchUC := usecase.NewDispatchUsecase(notifRepo, notif, logger, cfg.SendTimeout, progress)
	inboxUC := usecase.NewInboxUsecase(notifRepo)

	// --- Worker ---
	srv.Worker = worker.New(jobQueue, dispatchUC, cfg.WorkerPoolSize, cfg.DispatchRateLimit, logger)

	// --- WS manager fed by pub/sub ---
	wsManager := ws.NewManager(logger)
	if err := wsManager.Listen(ctx, events); err != nil {
		srv.Close()
		return nil, fmt.Errorf("subscribe notification events: %w", err)
	}
	go wsManager.Heartbeat(ctx, 30*time.Second)

	// --- Handlers + routes ---
	restHandler := hrest.NewNotificationHandler(inboxUC)
	wsHandler := wshandler.NewWSHandler(wsManager, logger)

	health := func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := dbpool.Ping(pingCtx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}

	r := chi.NewRouter()
	r = router.SetupRoutes(r, restHandler, wsHandler, cfg.JWTSecret, health).(*chi.Mux)

	srv.HTTP = &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	return srv, nil
}
