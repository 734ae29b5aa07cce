package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"pkg.mon.icu/relay/internal/archive"
	"pkg.mon.icu/relay/internal/config"
	"pkg.mon.icu/relay/internal/event"
	"pkg.mon.icu/relay/internal/gateway"
	"pkg.mon.icu/relay/internal/metrics"
	"pkg.mon.icu/relay/internal/storage"
)

type app struct {
	ctx    context.Context
	cancel context.CancelFunc

	logConf zap.Config
	logger  *zap.Logger

	config *config.Config

	metrics    *metrics.Registry
	dispatcher *event.Dispatcher
	storage    *storage.Storage
	archiver   *archive.Archiver
	cluster    *gateway.Cluster
}

func newApp(ctx context.Context, lcf zap.Config, log *zap.Logger) (*app, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &app{ctx: ctx, cancel: cancel, logConf: lcf, logger: log}
	var err error

	log.Debug("Loading configuration.")
	a.config, err = config.Read()
	if err != nil {
		return nil, fmt.Errorf("couldn't load configuration: %w", err)
	}

	log.Debug("Successfully loaded configuration (also switching log level.)")
	lcf.Level.SetLevel(a.config.Logging.Level)

	a.metrics = metrics.NewRegistry()
	a.dispatcher = event.NewDispatcher(log, a.metrics)

	log.Debug("Initializing Storage struct.")
	a.storage = storage.NewStorage(ctx, log)

	log.Debug("Initializing archiver.")
	a.archiver = archive.NewArchiver(ctx, log, archive.NewConfig(a.config.Discord.Guilds, a.config.Discord.Channels, a.config.Archive.IgnoreRegexp), a.storage)
	a.archiver.Attach(a.dispatcher)

	a.dispatcher.OnMessageReactionAdd.Subscribe(func(e *event.MessageReaction) error {
		log.Debug("Reaction added.", zap.Int("shard", e.Conn.ShardID()), zap.Stringer("message", e.MessageID), zap.String("emoji", e.Emoji.Mention()))
		return nil
	})

	log.Debug("Initializing gateway cluster.")
	a.cluster, err = gateway.NewCluster(log, a.config.Discord.Auth, a.config.Discord.Shards, a.dispatcher, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize gateway cluster: %w", err)
	}

	return a, nil
}

func (a *app) Run() error {
	a.logger.Debug("Connecting to PostgreSQL storage.")
	if err := a.storage.Connect(a.config.Storage.PostgresDSN); err != nil {
		return fmt.Errorf("couldn't connect to storage: %w", err)
	}
	defer func() {
		a.logger.Debug("Closing PostgreSQL storage.")
		if err := a.storage.Close(); err != nil {
			a.logger.Sugar().Errorf("Couldn't close storage: %s.", err)
		}
		a.logger.Debug("Closed PostgreSQL storage.")
	}()
	if a.config.Storage.Migrate {
		if err := a.storage.Migrate(); err != nil {
			return err
		}
	}
	a.logger.Debug("Successfully connected to PostgreSQL storage.")

	g, ctx := errgroup.WithContext(a.ctx)
	g.Go(func() error {
		return metrics.NewServer(a.config.Metrics.Port, a.metrics, a.logger).Start(ctx)
	})

	a.logger.Debug("Connecting to Discord API gateway.", zap.Int("shards", a.config.Discord.Shards))
	defer func() {
		a.logger.Debug("Closing connection with Discord API gateway.")
		a.archiver.Detach()
		if err := a.cluster.Close(); err != nil {
			a.logger.Sugar().Errorf("Couldn't close Discord: %s.", err)
		}
		a.logger.Debug("Closed connection with Discord API gateway.")
	}()
	g.Go(func() error {
		if err := a.cluster.Open(ctx); err != nil {
			return fmt.Errorf("couldn't connect to Discord: %w", err)
		}
		a.logger.Info("Launch complete. Send SIGINT to gracefully terminate.")
		<-ctx.Done()
		return ctx.Err()
	})

	err := g.Wait()
	if a.ctx.Err() != nil {
		a.logger.Info("SIGINT received, terminating.")
	}
	return err
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	lcf := zap.NewDevelopmentConfig() // to later switch level without reallocation
	lcf.Level.SetLevel(zapcore.DebugLevel)
	lcf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	lcf.DisableCaller = true
	log, _ := lcf.Build()
	defer func() { _ = log.Sync() }()

	log.Info("Initializing application.")
	a, err := newApp(ctx, lcf, log)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Sugar().Fatalf("Couldn't initialize application: %s.", err)
		}

		return
	}
	defer a.cancel()

	log.Debug("Initialization tasks complete, continuing with launch.")
	if err := a.Run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Sugar().Fatalf("Application crashed: %s.", err)
		}
	}
}
