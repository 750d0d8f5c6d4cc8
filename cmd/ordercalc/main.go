package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drstein77/ordercalc/internal/app"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// the context is cancelled on the first SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := app.NewServer(ctx)
	go func() {
		<-ctx.Done()
		server.Log.Info("Shutdown signal received")
		server.Shutdown(shutdownTimeout)
	}()

	server.Serve()
}
