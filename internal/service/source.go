package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"urap-polar/internal/client"
	"urap-polar/internal/domain"
	"urap-polar/internal/ingest"
)

// ArchiveSource session from a zip export on disk, parsed once.
type ArchiveSource struct {
	path   string
	loader *ingest.Loader
	logger *zap.Logger

	once    sync.Once
	session *domain.Session
	diags   []ingest.Diagnostic
	err     error
}

func NewArchiveSource(path string, loader *ingest.Loader, logger *zap.Logger) *ArchiveSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loader == nil {
		loader = ingest.NewLoader(logger)
	}
	return &ArchiveSource{path: path, loader: loader, logger: logger}
}

func (a *ArchiveSource) Session(ctx context.Context) (*domain.Session, error) {
	a.once.Do(func() {
		res, err := a.loader.Load(a.path)
		if err != nil {
			a.err = err
			return
		}
		a.session, a.diags = res.Session, res.Diagnostics
		if len(res.Diagnostics) > 0 {
			a.logger.Info("archive loaded with skipped values",
				zap.String("path", a.path),
				zap.Int("diagnostics", len(res.Diagnostics)),
			)
		}
	})
	return a.session, a.err
}

// Diagnostics lenient-parse notes from the load; nil before the first Session call.
func (a *ArchiveSource) Diagnostics() []ingest.Diagnostic { return a.diags }

// RemoteSource session fetched from the app by id on every call. Wrap the
// client in a CachedClient to avoid refetching.
type RemoteSource struct {
	recordings client.Recordings
	id         string
}

func NewRemoteSource(recordings client.Recordings, id string) *RemoteSource {
	return &RemoteSource{recordings: recordings, id: id}
}

func (r *RemoteSource) Session(ctx context.Context) (*domain.Session, error) {
	return r.recordings.GetRecording(ctx, r.id)
}

func (r *RemoteSource) ID() string { return r.id }

// IsArchivePath a CLI argument names a zip export rather than a recording id
// when it ends in .zip or is an existing file.
func IsArchivePath(arg string) bool {
	if strings.HasSuffix(strings.ToLower(arg), ".zip") {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// FirstRecordingID id of the first recording the app lists.
func FirstRecordingID(ctx context.Context, recordings client.Recordings) (domain.RecordingSummary, error) {
	list, err := recordings.ListRecordings(ctx)
	if err != nil {
		return domain.RecordingSummary{}, fmt.Errorf("could not list recordings: %w", err)
	}
	if len(list) == 0 {
		return domain.RecordingSummary{}, ErrNoRecordings
	}
	return list[0], nil
}

// ErrNoRecordings the app has nothing recorded yet
var ErrNoRecordings = errors.New("no recordings found")
