package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/tutorbot-backend/internal/app"
	"github.com/yungbote/tutorbot-backend/internal/platform/envutil"
	"github.com/yungbote/tutorbot-backend/internal/platform/shutdown"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()
	a.Start()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case <-ctx.Done():
		a.Log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second))
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("Server shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			a.Log.Error("Server failed", "error", err)
			a.Close()
			os.Exit(1)
		}
	}
}
