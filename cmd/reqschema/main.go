// cmd/reqschema/main.go
//
// reqschema – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load configuration (defaults → conf/.env → conf/global.yaml → env).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Initialize the process-wide Validator from the `validator` section.
//
//  4. Optionally watch the schema directory and purge compiled schemas on
//     every change, so edits are picked up without a restart.
//
//  5. Serve the API router until SIGINT/SIGTERM, then drain for up to
//     shutdownGrace.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanizio/reqschema/internal/api"
	"github.com/yanizio/reqschema/internal/config"
	"github.com/yanizio/reqschema/internal/logger"
	"github.com/yanizio/reqschema/internal/schema"
	"github.com/yanizio/reqschema/internal/server"
	"github.com/yanizio/reqschema/internal/validator"
)

const shutdownGrace = 10 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, cfg.Log.Tee || runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Validator singleton ─────────────────────────────────────────
	//
	v := validator.Instance()
	v.Initialize(cfg.Validator.Options())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	//
	// ── 2.  Schema watcher (cache invalidation) ─────────────────────────
	//
	if cfg.Validator.Watch {
		wd, err := os.Getwd()
		if err != nil {
			logOut.Fatalw("working directory", "err", err)
		}
		dir := filepath.Join(wd, cfg.Validator.SchemaPath)
		w, err := schema.NewWatcher(dir, schema.DefaultDebounce, v.Purge)
		if err != nil {
			logOut.Fatalw("schema watcher", "dir", dir, "err", err)
		}
		g.Go(func() error { return w.Run(ctx) })
	}

	//
	// ── 3.  HTTP server ─────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, api.NewRouter(v, cfg.HTTP), server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

	g.Go(func() error {
		logOut.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logOut.Infow("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logOut.Errorw("server stopped", "err", err)
		os.Exit(1)
	}
}
