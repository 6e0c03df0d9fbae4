package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"incidentService/internal/api"
	"incidentService/internal/api/handlers/http/admin"
	"incidentService/internal/api/handlers/http/incidents"
	"incidentService/internal/api/handlers/http/system"
	"incidentService/internal/bridge"
	"incidentService/internal/config"
	"incidentService/internal/consumer"
	"incidentService/internal/envelope"
	"incidentService/internal/redis"
	"incidentService/internal/service"
	"incidentService/internal/storage/memory"
	"incidentService/internal/storage/postgres"
	"incidentService/internal/workers"
	"incidentService/pkg/logger"
)

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
	Workers    *workers.Pool
	Publisher  *service.Publisher
	Consumer   *consumer.CommandConsumer
	Commands   *redis.StreamConsumer
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{logger: logger}

	repo, storePinger, err := c.initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		c.ShutdownAll()
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}
	c.Redis = redisClient

	format, err := envelope.ParseFormat(cfg.Events.Format)
	if err != nil {
		c.ShutdownAll()
		return nil, err
	}

	var cache service.IncidentCache
	if cfg.Cache.Enabled {
		cache = redis.NewIncidentCache(redisClient, cfg.Cache)
	}

	events := redis.NewStreamProducer(redisClient.Client, cfg.Streams.EventStream, cfg.Streams)
	c.Publisher = service.NewPublisher(envelope.NewEncoder(format, cfg.Events.Source), events, logger, cfg.Events.QueueSize)

	incidentSvc := service.NewIncidentService(repo, cache, c.Publisher, logger)

	c.Workers = workers.NewPool(cfg.Bridge.Workers, cfg.Bridge.QueueSize, logger)
	bus := bridge.New(incidentSvc, c.Workers, cfg.Bridge.RequestTimeout, logger)

	dropped := redis.NewDroppedLog(redisClient.Client, cfg.Streams.DroppedKey, cfg.Streams.DroppedMax)
	c.Commands = redis.NewStreamConsumer(redisClient.Client, cfg.Streams.CommandStream, cfg.Streams, logger)
	c.Consumer = consumer.NewCommandConsumer(envelope.NewDecoder(), incidentSvc, c.Workers, dropped, logger)

	c.HttpServer = api.NewServer(ctx, cfg, logger, api.Handlers{
		Incidents: incidents.NewHandler(logger, bus),
		Admin:     admin.NewHandler(logger, dropped),
		System: system.NewHandler(logger, map[string]system.Pinger{
			"store": storePinger,
			"redis": redisClient,
		}),
	})
	logger.Info("Initialized server",
		slog.String("store", cfg.Store.Driver),
		slog.String("event_format", string(format)),
		slog.Bool("cache", cfg.Cache.Enabled),
	)

	return c, nil
}

func (c *Components) initStore(ctx context.Context, cfg *config.Config) (service.IncidentRepository, system.Pinger, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		c.logger.Warn("Using in-memory store, state is lost on restart")
		store := memory.NewStore()
		return store, store, nil
	}

	c.logger.Info("Initializing Postgres")
	storage, err := postgres.NewPostgres(ctx, cfg.Postgres, c.logger)
	if err != nil {
		c.logger.Error("Failed to init postgres", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to init postgres: %w", err)
	}
	c.Postgres = storage
	return storage.Incidents, storage, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

// Run serves HTTP and consumes commands until ctx is done or either loop
// fails. The worker pool and publisher outlive both loops so in-flight
// requests can finish during shutdown.
func (c *Components) Run(ctx context.Context) error {
	backCtx, stopBack := context.WithCancel(context.Background())
	var back sync.WaitGroup
	back.Add(2)
	go func() {
		defer back.Done()
		c.Workers.Run(backCtx)
	}()
	go func() {
		defer back.Done()
		c.Publisher.Run(backCtx)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	fail := func(name string, err error) {
		if err == nil {
			return
		}
		c.logger.Error(name+" failed", slog.Any("error", err))
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		mu.Unlock()
		cancel()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		fail("http server", c.HttpServer.Run(runCtx))
		c.logger.Info("http server stopped")
	}()
	go func() {
		defer wg.Done()
		fail("command consumer", c.Consumer.Run(runCtx, c.Commands))
	}()
	wg.Wait()

	stopBack()
	back.Wait()

	return errors.Join(errs...)
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	if c.Postgres != nil {
		c.Postgres.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
