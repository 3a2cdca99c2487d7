// Command static-server serves files from a directory over HTTP/1.x,
// one request per connection.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"static-server/application/http/actor/server"
	"static-server/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.LookupEnv, os.Stderr))
}

// run serves until ctx is done and returns the exit code.
func run(ctx context.Context, args []string, lookupEnv func(string) (string, bool), stderr io.Writer) int {
	cfg, err := parseConfig(args, lookupEnv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "static-server:", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.logLevel}))

	registry, err := cfg.registry()
	if err != nil {
		logger.Error("invalid mime types", "error", err)
		return 1
	}

	if info, err := os.Stat(cfg.root); err != nil || !info.IsDir() {
		// Not fatal. Every request will just be answered with 404.
		logger.Warn("root is not a readable directory", "root", cfg.root)
	}

	l, err := tcp.Listen(":" + strconv.FormatUint(uint64(cfg.port), 10))
	if err != nil {
		logger.Error("failed to listen", "port", cfg.port, "error", err)
		return 1
	}

	srv := server.New(
		l,
		logger,
		clock.New(),
		server.StaticHandler(cfg.root, registry),
		cfg.opts,
	)
	srv.Start()

	<-ctx.Done()
	logger.Info("shutting down")

	if err := srv.Close(); err != nil {
		logger.Error("error when shutting down", "error", err)
	}
	return 0
}
