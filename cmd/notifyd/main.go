package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/danceloop/notifykit/pkg/config"
	"github.com/danceloop/notifykit/pkg/fcm"
	"github.com/danceloop/notifykit/pkg/httpapi"
	"github.com/danceloop/notifykit/pkg/httpserver"
	"github.com/danceloop/notifykit/pkg/inbox"
	"github.com/danceloop/notifykit/pkg/kv"
	"github.com/danceloop/notifykit/pkg/logger"
	"github.com/danceloop/notifykit/pkg/notify"
)

type appConfig struct {
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// StoreBackend selects persistence: file, redis, or memory.
	StoreBackend string `env:"NOTIFY_STORE_BACKEND" envDefault:"file"`
	DataFile     string `env:"NOTIFY_DATA_FILE" envDefault:"notifykit.json"`

	// FCMCredentialsFile enables the FCM channel; without it the daemon
	// logs deliveries instead of pushing them, which is only useful for
	// local development.
	FCMCredentialsFile string `env:"FCM_CREDENTIALS_FILE"`
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)
	var engineCfg notify.Config
	config.MustLoad(&engineCfg)
	var serverCfg httpserver.Config
	config.MustLoad(&serverCfg)

	log := newLogger(cfg)

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to open store", logger.Error(err))
		os.Exit(1)
	}

	sender, err := newSender(ctx, cfg, log)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to initialize push channel", logger.Error(err))
		os.Exit(1)
	}

	registry := newDeviceRegistry(store)
	inboxSvc := inbox.NewService(inbox.NewMemoryStorage())

	orch := notify.NewOrchestrator(registry, sender, store,
		notify.WithOrchestratorLogger(log),
		notify.WithSendTimeout(engineCfg.SendTimeout),
		notify.WithEventBufferSize(engineCfg.EventBufferSize),
		notify.WithInboxFallback(inbox.NewChannel(inboxSvc)),
		notify.WithBroadcasterOptions(
			notify.WithMaxInFlightSends(engineCfg.MaxInFlightSends),
		),
	)
	defer orch.Close()

	processor := notify.NewProcessor(orch,
		notify.WithProcessorLogger(log),
		notify.WithIntervals(engineCfg.RetryInterval, engineCfg.FastRetryInterval),
		notify.WithBackoffBases(engineCfg.RetryBackoffBase, engineCfg.FastRetryBackoffBase),
	)
	processor.Start(ctx)
	defer processor.Stop()

	api := httpapi.New(orch,
		httpapi.WithLogger(log),
		httpapi.WithInbox(inboxSvc),
	)

	router := chi.NewRouter()
	router.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	router.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, func(ctx context.Context) error {
		_, err := store.ListKeys(ctx, "status:")
		return err
	}))
	mountDeviceRoutes(router, registry)
	router.Mount("/", api.Router())

	server := httpserver.New(serverCfg, httpserver.WithLogger(log))
	if err := server.Run(ctx, router); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg appConfig) *slog.Logger {
	opts := []logger.Option{logger.WithAttr(slog.String("service", "notifyd"))}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		opts = append(opts, logger.WithLevel(level))
	}
	if cfg.LogFormat == string(logger.FormatText) {
		opts = append(opts, logger.WithTextFormatter())
	}
	return logger.New(opts...)
}

func newStore(ctx context.Context, cfg appConfig) (kv.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		var redisCfg kv.RedisConfig
		if err := config.Load(&redisCfg); err != nil {
			return nil, err
		}
		client, err := kv.ConnectRedis(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return kv.NewRedisStore(client, "notifykit:"), nil
	case "memory":
		return kv.NewMemoryStore(), nil
	default:
		return kv.NewFileStore(cfg.DataFile)
	}
}

func newSender(ctx context.Context, cfg appConfig, log *slog.Logger) (notify.ChannelSender, error) {
	if cfg.FCMCredentialsFile != "" {
		var fcmCfg fcm.Config
		if err := config.Load(&fcmCfg); err != nil {
			return nil, err
		}
		return fcm.New(ctx, fcmCfg)
	}

	log.LogAttrs(ctx, slog.LevelWarn, "FCM credentials not configured, using log-only push channel")
	return logChannel{logger: log}, nil
}

// logChannel is the development stand-in for a real push gateway.
type logChannel struct {
	logger *slog.Logger
}

func (c logChannel) Name() string { return "log" }

func (c logChannel) Send(ctx context.Context, addr notify.DeviceAddress, req notify.Request) error {
	c.logger.LogAttrs(ctx, slog.LevelInfo, "push delivery (log channel)",
		logger.NotificationID(req.ID),
		logger.UserID(req.TargetUserID),
		logger.Kind(string(req.Kind)),
		logger.DeviceID(addr.DeviceID),
		slog.String("title", req.Title),
	)
	return nil
}
