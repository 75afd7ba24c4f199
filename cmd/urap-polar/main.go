package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"urap-polar/internal/client"
	"urap-polar/internal/config"
	"urap-polar/internal/logger"
	"urap-polar/internal/store"
)

const usage = `usage: urap-polar <command> [flags] [args]

commands:
  list                         list recordings on the phone
  get [id]                     fetch a recording and print its statistics
  stats <zip>                  per-sensor statistics of an exported zip
  plot [zip|id]                render HR and RR charts to HTML
  export <zip|id>              write the session as xlsx, json or csv
  serve <zip|id>               serve the session over HTTP
  verify                       parse the built-in reference export

Run "urap-polar <command> -h" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(stderr, "Error: reading .env: %v\n", err)
		return 1
	}

	a := &app{cfg: config.Load(), stdout: stdout, stderr: stderr}
	defer a.close()

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "list":
		err = a.list(ctx, rest)
	case "get":
		err = a.get(ctx, rest)
	case "stats":
		err = a.stats(ctx, rest)
	case "plot":
		err = a.plot(ctx, rest)
	case "export":
		err = a.export(ctx, rest)
	case "serve":
		err = a.serve(ctx, rest)
	case "verify":
		err = a.verify(ctx, rest)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
	if err != nil {
		return a.report(err)
	}
	return 0
}

// app shared wiring for one command invocation
type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer

	logger *zap.Logger
	remote *client.Client
	cached *client.CachedClient
	redis  *store.RedisKV
}

// setup applies the common flags and builds the logger.
func (a *app) setup(c *commonFlags) error {
	if c.baseURL != "" {
		a.cfg.API.BaseURL = c.baseURL
	}
	level := a.cfg.Log.Level
	if c.verbose {
		level = "debug"
	}
	l, err := logger.NewLogger(level, a.cfg.Log.Format, "urap-polar")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = l
	return nil
}

// recordings the phone API, behind the cache when CACHE_ENABLED is set.
// Redis that does not answer a ping falls back to an in-process cache.
func (a *app) recordings(ctx context.Context) client.Recordings {
	if a.remote == nil {
		a.remote = client.New(a.cfg.API, a.logger)
	}
	if !a.cfg.Cache.Enabled {
		return a.remote
	}
	if a.cached == nil {
		var kv store.KV
		rkv := store.NewRedisKV(store.NewRedisClient(a.cfg.Cache.Redis))
		if err := rkv.Ping(ctx); err != nil {
			a.logger.Warn("redis unavailable, caching in memory",
				zap.String("addr", a.cfg.Cache.Redis.Addr),
				zap.Error(err),
			)
			_ = rkv.Close()
			kv = store.NewMemoryKV()
		} else {
			a.redis = rkv
			kv = rkv
		}
		a.cached = client.NewCachedClient(a.remote, kv, a.cfg.Cache.TTL, a.logger)
	}
	return a.cached
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// report prints err for a human and returns the exit code.
func (a *app) report(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errUsage) {
		return 2
	}
	var connErr *client.ConnectivityError
	if errors.As(err, &connErr) {
		fmt.Fprintf(a.stderr, "Connection error: %v\n\n", err)
		fmt.Fprint(a.stderr, connectivityChecklist)
		return 1
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return 1
}

const connectivityChecklist = `The app's API server is not reachable. Check:
  1. App is open and in the foreground (not backgrounded or locked).
  2. iPhone/iPad is on the same Wi-Fi network as this computer.
  3. In iOS Settings → URAP Polar H10 → Local Network is ON.
  4. Base URL matches the one shown in the app: Settings → API for Python.
`
