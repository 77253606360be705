package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/boltdb/bolt"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	storages       *Storages
	mirrorRedis    *redis.Client
	mirrorBolt     *bolt.DB
	cleanups       []func()
	queueConsumers []func(context.Context) error
}

// NewApp provides an instance of App. On failure every connection opened so
// far is closed and the logs are flushed.
func NewApp() (_ AppProvider, err error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logWriter := NewLogFileWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, NewTickClock(clock))
	cleanups := []func(){
		func() {
			if ferr := flusher(); ferr != nil {
				fmt.Println("error during flushing of logs: ", ferr)
			}
		},
		func() {
			if cerr := logWriter.Close(); cerr != nil {
				fmt.Println("error during closing of log file: ", cerr)
			}
		},
	}

	app := &App{
		logger:   logger,
		config:   config,
		cleanups: cleanups,
	}
	defer func() {
		if err != nil {
			logger.Error("failed to setup the app", zap.Error(err))
			app.closeBackends(context.Background())
			app.Clean()
		}
	}()

	// Setup the catalog storage backend.
	app.storages, err = NewStorages(logger, config)
	if err != nil {
		return nil, err
	}
	storages := app.storages
	logger.Info("storage backend connected", zap.String("storage.backend", config.Storage.Backend))

	queue, err := app.setupMirror()
	if err != nil {
		return nil, err
	}

	// Setup the api services and routing.
	ids := NewIDsHandler()
	categoryService := NewCategoryService(logger, config, clock, ids, storages.Categories, queue)
	bookService := NewBookService(logger, config, clock, ids, storages.Books, storages.Categories, queue)
	addressService := NewAddressService(logger, config, clock, ids, storages.Addresses, queue)
	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		ids,
		categoryService,
		bookService,
		addressService,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	app.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
		ConnContext:    SaveConnInContext,
	}

	return app, nil
}

// setupMirror opens the optional mirror: writes are queued into redis then
// replayed into a boltDB backup file by the consumer. Nothing stays open
// when it fails.
func (app *App) setupMirror() (Queuer, error) {
	if !app.config.Mirror.Enabled {
		return NewNoopQueue(), nil
	}
	client, err := GetRedisClient(app.config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mirror redis server: %w", err)
	}
	db, err := GetBoltDBClient(app.config.Mirror.FilePath, app.config.Mirror.Timeout, CategoriesCollection, BooksCollection, AddressesCollection)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to open mirror boltDB file: %w", err)
	}
	app.mirrorRedis, app.mirrorBolt = client, db

	queue := NewRedisQueue(client)
	boltDBConsumer := NewBoltDBConsumer(app.logger, queue, NewBoltDBMirror(app.logger, db))
	app.queueConsumers = append(app.queueConsumers, func(ctx context.Context) error {
		return boltDBConsumer.Consume(ctx, CreateQueue, UpdateQueue, DeleteQueue)
	})
	return queue, nil
}

// closeBackends releases the storage and mirror connections that are open.
func (app *App) closeBackends(ctx context.Context) {
	if app.storages != nil {
		if err := app.storages.Close(ctx); err != nil {
			app.logger.Error("failed to close storage backend", zap.Error(err))
		}
		app.storages = nil
	}
	if app.mirrorRedis != nil {
		if err := app.mirrorRedis.Close(); err != nil {
			app.logger.Error("failed to close mirror redis client", zap.Error(err))
		}
		app.mirrorRedis = nil
	}
	if app.mirrorBolt != nil {
		if err := app.mirrorBolt.Close(); err != nil {
			app.logger.Error("failed to close mirror boltDB file", zap.Error(err))
		}
		app.mirrorBolt = nil
	}
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
		)
		err := app.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch {
		case err == nil, errors.Is(err, http.ErrServerClosed):
			app.logger.Info("api server graceful shutdown succeeded")
		case errors.Is(err, context.DeadlineExceeded):
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}

		app.closeBackends(sCtx)
		return nil
	}
}

// ConsumeQueues runs all queue consumers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			consume := consume
			g.Go(func() error {
				return consume(gCtx)
			})
		}
		return nil
	}
}
