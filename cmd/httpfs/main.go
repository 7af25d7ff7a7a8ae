// httpfs serves a local directory over HTTP/1.1 with GET, POST, PUT and
// DELETE.
//
// WARNING: request targets are appended to the base directory without any
// containment check, so any file reachable through ".." can be read,
// overwritten or deleted. Do not expose this server to untrusted clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"httpfs/pkg/dispatch"
	"httpfs/pkg/server"
	"httpfs/pkg/vfs"
	"httpfs/pkg/vfs/diskfs"
	"httpfs/pkg/vfs/memfs"
)

// options is the parsed command line.
type options struct {
	host        string
	port        int
	dir         string
	mem         bool
	minimal     bool
	readTimeout time.Duration
	verbose     bool
	jsonLogs    bool
	noUA        bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := newLogger(os.Stderr, opts)
	if err := run(opts, logger); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// parseFlags reads flags, then applies HTTPFS_* environment overrides for any
// flag not given explicitly.
func parseFlags(args []string, getenv func(string) string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("httpfs", flag.ContinueOnError)
	fs.StringVar(&opts.host, "host", "localhost", "host to bind (env HTTPFS_HOST)")
	fs.IntVar(&opts.port, "port", 3001, "port to listen on (env HTTPFS_PORT)")
	fs.StringVar(&opts.dir, "dir", ".", "directory request targets are appended to (env HTTPFS_DIR)")
	fs.BoolVar(&opts.mem, "mem", false, "serve an empty in-memory filesystem instead of -dir")
	fs.BoolVar(&opts.minimal, "minimal", false, "send bodyless error responses and drop connections on internal errors")
	fs.DurationVar(&opts.readTimeout, "read-timeout", 0, "limit on reading a request (0 = none)")
	fs.BoolVar(&opts.verbose, "v", false, "log debug events")
	fs.BoolVar(&opts.jsonLogs, "json", false, "write logs as JSON lines")
	fs.BoolVar(&opts.noUA, "no-ua", false, "do not classify User-Agent headers in access logs")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if v := getenv("HTTPFS_HOST"); v != "" && !set["host"] {
		opts.host = v
	}
	if v := getenv("HTTPFS_PORT"); v != "" && !set["port"] {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return opts, fmt.Errorf("invalid HTTPFS_PORT %q", v)
		}
		opts.port = port
	}
	if v := getenv("HTTPFS_DIR"); v != "" && !set["dir"] {
		opts.dir = v
	}
	if opts.port < 0 || opts.port > 65535 {
		return opts, fmt.Errorf("invalid port %d", opts.port)
	}
	return opts, nil
}

func newLogger(w io.Writer, opts options) zerolog.Logger {
	if !opts.jsonLogs {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func newFileSystem(opts options) (vfs.FileSystem, error) {
	if opts.mem {
		return memfs.New(), nil
	}
	info, err := os.Stat(opts.dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", opts.dir)
	}
	return diskfs.New(opts.dir), nil
}

func run(opts options, logger zerolog.Logger) error {
	fsys, err := newFileSystem(opts)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr: net.JoinHostPort(opts.host, strconv.Itoa(opts.port)),
		Dispatcher: dispatch.New(dispatch.Config{
			FS:     fsys,
			Logger: &logger,
		}),
		Minimal:            opts.minimal,
		ReadTimeout:        opts.readTimeout,
		ClassifyUserAgents: !opts.noUA,
		Logger:             &logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, server.ErrServerClosed) {
		return err
	}
	logger.Info().Msg("server exited")
	return nil
}
