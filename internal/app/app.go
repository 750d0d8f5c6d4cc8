package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/catalog"
	"github.com/drstein77/ordercalc/internal/config"
	"github.com/drstein77/ordercalc/internal/controllers"
	"github.com/drstein77/ordercalc/internal/logger"
	"github.com/drstein77/ordercalc/internal/middleware"
	"github.com/drstein77/ordercalc/internal/storage"
)

type Server struct {
	mx      sync.Mutex
	srv     *http.Server
	ctx     context.Context
	option  *config.Options
	storage *storage.MemoryStorage
	stopped chan struct{}
	Log     *logger.Logger
}

// NewServer creates a new Server instance with the provided context
func NewServer(ctx context.Context) *Server {
	// create and initialize a new option instance
	option := config.NewOptions()
	option.ParseFlags()

	// get a new logger
	nLogger, err := logger.NewLogger(option.LogLevel())
	if err != nil {
		log.Fatalln(err)
	}

	return &Server{
		ctx:     ctx,
		option:  option,
		stopped: make(chan struct{}),
		Log:     nLogger,
	}
}

// Serve opens the store, mounts the routes and blocks until the server stops
func (server *Server) Serve() {
	store, err := OpenStore(server.ctx, StoreConfigFromOptions(server.option), server.Log)
	if err != nil {
		server.Log.Error("Failed to open store", zap.Error(err))
		return
	}
	server.mx.Lock()
	server.storage = store
	server.mx.Unlock()

	products, err := catalog.Load(server.option.CatalogFile())
	if err != nil {
		server.Log.Error("Failed to load catalog", zap.Error(err))
		return
	}
	if _, err := store.SeedProducts(server.ctx, products); err != nil {
		server.Log.Error("Failed to seed catalog", zap.Error(err))
		return
	}

	basecontr := controllers.NewBaseController(store, server.Log)

	// create router and mount routes
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(server.Log))
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", basecontr.Route())

	handler := cors.New(cors.Options{
		AllowedOrigins: server.option.CORSOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Content-Encoding", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
	}).Handler(r)

	// configure and start the server
	srv := &http.Server{
		Addr:              server.option.RunAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	server.mx.Lock()
	server.srv = srv
	server.mx.Unlock()
	if server.ctx.Err() != nil {
		return
	}

	server.Log.Info("Server started", zap.String("address", server.option.RunAddr()))
	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		server.Log.Error("Server stopped", zap.Error(err))
		return
	}

	// wait for Shutdown to release the store
	<-server.stopped
}

// Shutdown stops accepting requests and closes the store
func (server *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	server.mx.Lock()
	defer server.mx.Unlock()

	if server.srv != nil {
		if err := server.srv.Shutdown(ctx); err != nil {
			server.Log.Error("Server shutdown error", zap.Error(err))
		}
	}
	if server.storage != nil && !server.storage.Close() {
		server.Log.Error("Failed to close store")
	}

	server.Log.Info("Server stopped")
	// syncing stderr fails on some platforms
	_ = server.Log.Sync()
	close(server.stopped)
}
