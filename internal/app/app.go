package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/sharetube/jukebox/internal/command"
	"github.com/sharetube/jukebox/internal/controller"
	broadcastRedis "github.com/sharetube/jukebox/internal/repository/broadcast/redis"
	"github.com/sharetube/jukebox/internal/repository/connection/inmemory"
	roomRedis "github.com/sharetube/jukebox/internal/repository/room/redis"
	"github.com/sharetube/jukebox/internal/service/player"
	"github.com/sharetube/jukebox/pkg/ctxlogger"
	"github.com/sharetube/jukebox/pkg/redisclient"
	"github.com/sharetube/jukebox/pkg/validator"
	"github.com/sharetube/jukebox/pkg/ytvideodata"
)

const shutdownTimeout = 30 * time.Second

type AppConfig struct {
	Host                 string        `json:"host" validate:"required"`
	Port                 int           `json:"port" validate:"min=1,max=65535"`
	LogLevel             string        `json:"log_level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	PlaylistLimit        int           `json:"playlist_limit" validate:"min=0"`
	UpcomingCount        int           `json:"upcoming_count" validate:"min=1,max=50"`
	Moderators           []string      `json:"moderators" validate:"dive,required,max=32"`
	RoomExp              time.Duration `json:"room_exp" validate:"required"`
	ConnTTL              time.Duration `json:"conn_ttl" validate:"required"`
	YouTubeAPIKey        string        `json:"-"`
	YouTubeLookupTimeout time.Duration `json:"youtube_lookup_timeout" validate:"required"`
	RedisHost            string        `json:"redis_host" validate:"required"`
	RedisPort            int           `json:"redis_port" validate:"min=1,max=65535"`
	RedisPassword        string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if validationErrors, ok := validator.NewValidator().Validate(cfg); !ok {
		return validator.Join(validationErrors)
	}

	return nil
}

type iCatalog interface {
	GetByID(context.Context, string) (ytvideodata.Result, error)
}

type application struct {
	handler   http.Handler
	subscribe func(ctx context.Context, ready chan<- struct{}) error
}

func newApplication(cfg *AppConfig, rc *redis.Client, catalog iCatalog, logger *slog.Logger) *application {
	roomRepo := roomRedis.NewRepo(rc, cfg.RoomExp, logger)
	broadcastRepo := broadcastRedis.NewRepo(rc, logger)
	connectionRepo := inmemory.NewRepo(logger)

	playerService := player.NewService(roomRepo, catalog, broadcastRepo, &player.Config{
		PlaylistLimit: cfg.PlaylistLimit,
		Moderators:    cfg.Moderators,
		ConnTTL:       cfg.ConnTTL,
	}, logger)
	dispatcher := command.NewDispatcher(command.PlaylistRoutes(playerService, cfg.UpcomingCount, logger)...)
	controller := controller.NewController(playerService, dispatcher, broadcastRepo, connectionRepo, logger)

	return &application{
		handler: controller.GetMux(),
		subscribe: func(ctx context.Context, ready chan<- struct{}) error {
			return broadcastRepo.Subscribe(ctx, controller.Deliver, ready)
		},
	}
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(h), nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	catalog := ytvideodata.New(&ytvideodata.Config{
		APIKey:  cfg.YouTubeAPIKey,
		Timeout: cfg.YouTubeLookupTimeout,
	})

	app := newApplication(cfg, rc, catalog, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	serverCtx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	g, gCtx := errgroup.WithContext(serverCtx)
	g.Go(func() error {
		if err := app.subscribe(gCtx, nil); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to subscribe: %w", err)
		}

		return nil
	})
	g.Go(func() error {
		logger.InfoContext(gCtx, "starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.InfoContext(ctx, "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		return nil
	})

	return g.Wait()
}
