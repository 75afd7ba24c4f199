package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cli/browser"
	"go.uber.org/zap"

	"urap-polar/internal/domain"
	httpapi "urap-polar/internal/http"
	"urap-polar/internal/ingest"
	"urap-polar/internal/plot"
	"urap-polar/internal/report"
	"urap-polar/internal/service"
)

// errUsage flag parsing failed; the flag package already printed why.
var errUsage = errors.New("usage")

type commonFlags struct {
	baseURL string
	verbose bool
}

func (a *app) flagSet(name, args string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	c := &commonFlags{}
	fs.StringVar(&c.baseURL, "base-url", "", "app API base URL (default $URAP_BASE_URL)")
	fs.BoolVar(&c.verbose, "v", false, "debug logging, including skipped CSV values")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: urap-polar %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs, c
}

// parse lets flags follow positional arguments ("stats x.zip -o r.csv").
func (a *app) parse(fs *flag.FlagSet, c *commonFlags, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, flag.ErrHelp
			}
			return nil, errUsage
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	return positional, a.setup(c)
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (a *app) source(ctx context.Context, arg string) httpapi.SessionSource {
	if service.IsArchivePath(arg) {
		return service.NewArchiveSource(arg, ingest.NewLoader(a.logger), a.logger)
	}
	return service.NewRemoteSource(a.recordings(ctx), arg)
}

// session loads arg as a zip export or recording id. No arg means the first
// recording the app lists.
func (a *app) session(ctx context.Context, arg string) (*domain.Session, error) {
	if arg == "" {
		first, err := service.FirstRecordingID(ctx, a.recordings(ctx))
		if errors.Is(err, service.ErrNoRecordings) {
			return nil, errors.New("No recordings found. Start a recording in the app first.")
		}
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(a.stdout, "Using first recording: %s (id: %s)\n", first.Name, first.ID)
		arg = first.ID
	}
	return a.source(ctx, arg).Session(ctx)
}

func (a *app) list(ctx context.Context, args []string) error {
	fs, c := a.flagSet("list", "")
	cachedOnly := fs.Bool("cached", false, "list recording ids held in the cache instead")
	if _, err := a.parse(fs, c, args); err != nil {
		return err
	}
	rec := a.recordings(ctx)
	if *cachedOnly {
		if a.cached == nil {
			return errors.New("cache is disabled (set CACHE_ENABLED=true)")
		}
		ids, err := a.cached.CachedIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(a.stdout, id)
		}
		return nil
	}
	list, err := rec.ListRecordings(ctx)
	if err != nil {
		return err
	}
	return report.WriteRecordingList(a.stdout, list)
}

func (a *app) get(ctx context.Context, args []string) error {
	fs, c := a.flagSet("get", "[id]")
	out := fs.String("o", "", "also write the session JSON to this file")
	pos, err := a.parse(fs, c, args)
	if err != nil {
		return err
	}
	s, err := a.session(ctx, optionalArg(pos))
	if err != nil {
		return err
	}
	if err := report.WriteSummary(a.stdout, s); err != nil {
		return err
	}
	if *out != "" {
		return a.writeJSON(*out, s)
	}
	return nil
}

func (a *app) stats(ctx context.Context, args []string) error {
	fs, c := a.flagSet("stats", "<zip>")
	out := fs.String("o", "", "write a per-sensor CSV report to this file")
	table := fs.Bool("table", false, "print sensors as a table")
	pos, err := a.parse(fs, c, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		fs.Usage()
		return errUsage
	}
	path := pos[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	s, err := service.NewArchiveSource(path, ingest.NewLoader(a.logger), a.logger).Session(ctx)
	if err != nil {
		return fmt.Errorf("loading zip: %w", err)
	}

	if *table {
		report.WriteTable(a.stdout, s)
	} else if err := report.WriteSummary(a.stdout, s); err != nil {
		return err
	}

	if *out != "" {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, s); err != nil {
			return err
		}
		if err := writeFile(*out, buf.Bytes()); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(a.stdout, "Report written to %s\n", *out)
	}
	return nil
}

func (a *app) plot(ctx context.Context, args []string) error {
	fs, c := a.flagSet("plot", "[zip|id]")
	save := fs.String("save", "", "write the HTML page to this file")
	show := fs.Bool("show", false, "open the page in a browser (default when -save is not given)")
	kind := fs.String("kind", "all", "all, hr or rr")
	sensor := fs.String("sensor", "", "only this sensor id")
	pos, err := a.parse(fs, c, args)
	if err != nil {
		return err
	}
	s, err := a.session(ctx, optionalArg(pos))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := plot.Render(&buf, s, *kind, plot.Options{SensorID: *sensor}); err != nil {
		if errors.Is(err, plot.ErrNoData) {
			return errors.New("No sensor data to plot.")
		}
		return err
	}

	path := *save
	if path == "" {
		f, err := os.CreateTemp("", "urap-polar-*.html")
		if err != nil {
			return err
		}
		path = f.Name()
		_ = f.Close()
		*show = true
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Plot written to %s\n", path)
	if *show {
		return browser.OpenFile(path)
	}
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs, c := a.flagSet("export", "<zip|id>")
	format := fs.String("format", "xlsx", "xlsx, json or csv")
	out := fs.String("o", "", "output file (default recording_<id>.<format>)")
	pos, err := a.parse(fs, c, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		fs.Usage()
		return errUsage
	}
	s, err := a.session(ctx, pos[0])
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("recording_%s.%s", s.ID(), *format)
	}
	switch strings.ToLower(*format) {
	case "xlsx":
		data, err := report.ExcelWorkbook(s)
		if err != nil {
			return err
		}
		err = writeFile(path, data)
		if err != nil {
			return err
		}
	case "json":
		if err := a.writeJSON(path, s); err != nil {
			return err
		}
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, s); err != nil {
			return err
		}
		if err := writeFile(path, buf.Bytes()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want xlsx, json or csv)", *format)
	}
	fmt.Fprintf(a.stdout, "Wrote %s\n", path)
	return nil
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs, c := a.flagSet("serve", "<zip|id>")
	addr := fs.String("addr", "", "listen address (default $HTTP_ADDR)")
	pos, err := a.parse(fs, c, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		fs.Usage()
		return errUsage
	}
	if *addr != "" {
		a.cfg.HTTP.Addr = *addr
	}

	loader := ingest.NewLoader(a.logger)
	router := httpapi.NewRouter(a.logger)
	router.RegisterHealthRoutes()
	router.RegisterSessionRoutes(httpapi.NewSessionHandler(a.source(ctx, pos[0]), a.logger))
	router.RegisterRecordingRoutes(httpapi.NewRecordingsHandler(a.recordings(ctx), a.logger))
	router.RegisterArchiveRoutes(httpapi.NewArchiveHandler(loader, httpapi.DefaultMaxArchiveBytes, a.logger))

	srv := service.NewServer(a.cfg.HTTP.Addr, router, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

func (a *app) verify(ctx context.Context, args []string) error {
	fs, c := a.flagSet("verify", "")
	if _, err := a.parse(fs, c, args); err != nil {
		return err
	}
	data, err := ingest.ReferenceArchive()
	if err != nil {
		return err
	}
	res, err := ingest.NewLoader(a.logger).LoadReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("FAIL: loading reference export: %w", err)
	}
	if err := ingest.CheckReference(res.Session); err != nil {
		return fmt.Errorf("FAIL: %w", err)
	}
	fmt.Fprintln(a.stdout, "OK: Zip format matches app export; parsing verified.")
	return nil
}

func (a *app) writeJSON(path string, s *domain.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
