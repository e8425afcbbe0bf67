package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"viewtube/domain/repository"
	"viewtube/infrastructure/cache"
	"viewtube/infrastructure/clients/viewtube"
	"viewtube/infrastructure/configuration"
	"viewtube/infrastructure/logger"
	"viewtube/infrastructure/persistence"
	"viewtube/infrastructure/pubsub"
	"viewtube/infrastructure/realtime"
	"viewtube/infrastructure/servicebus"
	"viewtube/infrastructure/utils"
	httpHandler "viewtube/interfaces/http"
	"viewtube/server"
	"viewtube/usecase"

	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	issueToken := flag.String("issue-token", "", "print a bearer token for the given user name and exit")
	flag.Parse()

	// Load env from files (non-destructive; OS env still has precedence)
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); len(loaded) > 0 {
		logger.GetLogger().WithField("files", loaded).Info("Loaded env files")
		configuration.Reload()
	}
	app := configuration.C.App

	if *issueToken != "" {
		token, err := utils.GenerateRequesterToken(*issueToken, app.SecretKey, 24*time.Hour)
		if err != nil {
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	store, closeStore, err := persistence.NewVideoStore(ctx, configuration.C.Database)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Video store initialization failed")
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while closing video store")
		}
	}()

	if configuration.C.RedisClient.Enabled {
		redisClient, err := cache.NewCache(ctx)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without cache")
		} else {
			defer redisClient.Close()
			store = cache.NewVideoCache(store, redisClient, configuration.C.RedisClient.TTL())
			logger.GetLogger().Info("Redis client initialized successfully.")
		}
	}

	remote := InitiateRemote(ctx)
	videoSync := usecase.NewVideoSyncUsecase(remote, store, usecase.VideoSyncConfig{
		CallTimeout: configuration.C.Sync.CallTimeout(),
		EventBuffer: configuration.C.Sync.EventBuffer,
		Now:         utils.GetCurrentTime,
	})

	sinks, closeSinks := InitiateEventSinks(ctx)
	defer closeSinks()
	if len(sinks) > 0 {
		relay := usecase.NewVideoEventRelay(configuration.C.Sync.CallTimeout(), sinks...)
		events, unsubscribe := videoSync.SubscribeEvents()
		g.Go(func() error {
			defer unsubscribe()
			return relay.Run(ctx, events)
		})
		logger.GetLogger().WithField("sinks", relay.SinkCount()).Info("Video event relay started")
	}

	if configuration.C.Sync.FetchOnStart {
		videoSync.FetchAllVideos()
	}

	stream := realtime.NewVideoStream(videoSync)
	router := server.InitiateRouter(
		server.RouterConfig{SecretKey: app.SecretKey, AllowOrigins: configuration.C.Cors.AllowOrigins},
		httpHandler.NewVideoHandler(videoSync),
		httpHandler.NewHealthHandler(version),
		stream.Serve,
	)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}
	g.Go(func() error {
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
			if err := httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
		if app.TLSEnabled {
			logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	videoSync.Close()

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateRemote picks the remote authority: "http" talks to remote.baseURL, anything else runs in-process.
func InitiateRemote(ctx context.Context) repository.IRemoteSource {
	cfg := configuration.C.Remote
	if cfg.Mode == "http" && cfg.BaseURL != "" {
		logger.GetLogger().WithField("baseURL", cfg.BaseURL).Info("Using HTTP remote source")
		return viewtube.NewRemoteClient(ctx, viewtube.Config{
			BaseURL:      cfg.BaseURL,
			Timeout:      cfg.RemoteTimeout(),
			PageSize:     cfg.PageSize,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		})
	}
	logger.GetLogger().Info("Using in-memory remote source")
	return viewtube.NewMemoryRemote(utils.GetCurrentTime)
}

// InitiateEventSinks connects the optional Pub/Sub and Service Bus sinks.
func InitiateEventSinks(ctx context.Context) ([]repository.IVideoEventSink, func()) {
	var sinks []repository.IVideoEventSink
	var closers []func()

	if projectID := configuration.C.Pubsub.ProjectID; projectID != "" {
		pubSubClient, err := pubsub.NewPubSub(ctx, projectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
		} else {
			sinks = append(sinks, pubsub.NewVideoEventPubSub(pubSubClient, configuration.C.Pubsub.Topic))
			closers = append(closers, func() { _ = pubSubClient.Close() })
		}
	}

	if namespace := configuration.C.ServiceBus.Namespace; namespace != "" {
		azServiceBusClient, err := servicebus.NewServiceBus(namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus features")
		} else {
			sinks = append(sinks, servicebus.NewVideoEventServiceBus(azServiceBusClient, configuration.C.ServiceBus.Queue))
			closers = append(closers, func() { _ = azServiceBusClient.Close(context.Background()) })
		}
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
