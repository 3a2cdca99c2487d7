package main

import (
	"flag"
	"io"
	"log/slog"
	"strings"

	"static-server/application/http/actor/server"
	"static-server/application/http/mime"

	"github.com/pkg/errors"
)

const envPrefix = "STATIC_SERVER_"

type config struct {
	port     uint
	root     string
	logLevel slog.Level
	mime     string

	opts server.Options
}

// envName maps a flag name to the variable that provides its default.
// e.g. "max-conns" -> "STATIC_SERVER_MAX_CONNS"
func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// parseConfig reads flags from args. A flag that isn't given falls back to
// its environment variable, then to the builtin default.
func parseConfig(args []string, lookupEnv func(string) (string, bool), output io.Writer) (config, error) {
	cfg := config{opts: server.DefaultOptions()}
	serve := &cfg.opts.Serve

	fs := flag.NewFlagSet("static-server", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.UintVar(&cfg.port, "port", 8080, "port to listen on")
	fs.StringVar(&cfg.root, "root", "./public", "directory to serve files from")
	fs.TextVar(&cfg.logLevel, "log-level", slog.LevelInfo, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.mime, "mime", "", `extra media types, e.g. "txt=text/plain,png=image/png;binary"`)

	fs.UintVar(&serve.MaxConns, "max-conns", serve.MaxConns, "connections served at once")
	fs.UintVar(&serve.BufferSize, "buffer-size", serve.BufferSize, "max request size in bytes")
	fs.UintVar(&serve.ChunkSize, "chunk-size", serve.ChunkSize, "write size for binary files")
	fs.BoolVar(&serve.SerializeDiskIO, "serialize-disk-io", serve.SerializeDiskIO, "serve one file at a time")
	fs.DurationVar(&serve.Timeout.ReadTimeout, "read-timeout", 0, "time to wait for the request, 0 for none")
	fs.DurationVar(&serve.Timeout.WriteTimeout, "write-timeout", 0, "time allowed for writing the response, 0 for none")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 0 {
		return config{}, errors.Errorf("unexpected arguments: %v", fs.Args())
	}

	given := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	var envErr error
	fs.VisitAll(func(f *flag.Flag) {
		if given[f.Name] || envErr != nil {
			return
		}
		if v, ok := lookupEnv(envName(f.Name)); ok {
			if err := fs.Set(f.Name, v); err != nil {
				envErr = errors.Wrapf(err, "invalid %s", envName(f.Name))
			}
		}
	})
	if envErr != nil {
		return config{}, envErr
	}

	if cfg.port == 0 || cfg.port > 65535 {
		return config{}, errors.Errorf("invalid port: %d", cfg.port)
	}
	if cfg.root == "" {
		return config{}, errors.New("root must not be empty")
	}
	if err := cfg.opts.Validate(); err != nil {
		return config{}, errors.Wrap(err, "invalid options")
	}

	return cfg, nil
}

func (c config) registry() (*mime.Registry, error) {
	overrides, err := mime.ParseOverrides(c.mime)
	if err != nil {
		return nil, err
	}
	return mime.New(overrides)
}
