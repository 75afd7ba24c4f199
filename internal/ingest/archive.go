package ingest

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"urap-polar/internal/domain"
)

const (
	folderPrefix = "recording_"
	folderSuffix = "_csv"
)

// Result outcome of one archive load
type Result struct {
	Session     *domain.Session
	Document    domain.SessionDocument
	Diagnostics []Diagnostic
}

// Loader turns an app CSV export (zip) into a session. A Loader holds no
// per-load state and may be shared.
type Loader struct {
	logger *zap.Logger
}

// NewLoader nil logger means silent.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadFromArchive loads a zip export from disk without diagnostics.
func LoadFromArchive(path string) (*domain.Session, error) {
	res, err := NewLoader(nil).Load(path)
	if err != nil {
		return nil, err
	}
	return res.Session, nil
}

// Load opens the zip at path. The file is closed before returning.
func (l *Loader) Load(path string) (*Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
		}
		return nil, &FormatError{Path: path, Reason: "not a readable zip archive", Err: err}
	}
	defer zr.Close()

	return l.load(&zr.Reader, path)
}

// LoadReader loads a zip held in memory or streamed from elsewhere (uploads,
// remote downloads).
func (l *Loader) LoadReader(r io.ReaderAt, size int64) (*Result, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &FormatError{Path: "<reader>", Reason: "not a readable zip archive", Err: err}
	}
	return l.load(zr, "<reader>")
}

func (l *Loader) load(zr *zip.Reader, source string) (*Result, error) {
	entries := make(map[string]*zip.File, len(zr.File))
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if _, dup := entries[f.Name]; !dup {
			entries[f.Name] = f
		}
		names = append(names, f.Name)
	}

	folder, ok := findRecordingFolder(names)
	if !ok {
		return nil, &FormatError{Path: source, Reason: "no recording_*_csv folder found in zip"}
	}
	prefix := folder + "/"
	diag := &diagnostics{logger: l.logger.With(zap.String("archive", source))}

	infoPath := prefix + sessionInfoFile
	infoEntry, ok := entries[infoPath]
	if !ok {
		return nil, &FormatError{Path: infoPath, Reason: "missing session_info.csv in zip"}
	}
	infoContent, err := readEntry(infoEntry)
	if err != nil {
		return nil, &FormatError{Path: infoPath, Reason: "unreadable session_info.csv", Err: err}
	}

	meta, rows := parseSessionInfo(infoPath, infoContent, diag)
	discovered := false
	if len(rows) == 0 {
		rows = discoverSensors(names, prefix, diag)
		discovered = true
	}

	sensors := make([]domain.SensorDocument, 0, len(rows))
	for i, row := range rows {
		if discovered && row.index != i+1 {
			diag.add(sensorFileBase(prefix, row.index-1, row.sensorID)+hrFileSuffix, 0,
				"discovered index %d differs from position %d; sensor files are looked up as %s*",
				row.index, i+1, sensorFileBase(prefix, i, row.sensorID))
		}
		sensors = append(sensors, l.loadSensor(entries, prefix, i, row, diag))
	}

	doc := domain.SessionDocument{
		ID:               meta.id,
		Name:             sessionName(meta),
		StartDate:        meta.startDate,
		EndDate:          meta.endDate,
		Duration:         meta.duration,
		SensorCount:      meta.sensorCount,
		TotalDataPoints:  meta.totalDataPoints,
		AverageHeartRate: meta.averageHeartRate,
		AverageSDNN:      meta.averageSDNN,
		AverageRMSSD:     meta.averageRMSSD,
		SensorRecordings: sensors,
	}
	session := domain.NewSession(doc)

	l.logger.Debug("archive loaded",
		zap.String("archive", source),
		zap.String("folder", folder),
		zap.String("session_id", session.ID()),
		zap.Int("sensor_count", session.SensorCount()),
		zap.Int("diagnostics", len(diag.items)),
	)

	return &Result{Session: session, Document: doc, Diagnostics: diag.items}, nil
}

func (l *Loader) loadSensor(entries map[string]*zip.File, prefix string, position int, row sensorRow, diag *diagnostics) domain.SensorDocument {
	base := sensorFileBase(prefix, position, row.sensorID)
	hrPath := base + hrFileSuffix
	rrPath := base + rrFileSuffix
	statsPath := base + statsFileSuffix

	doc := domain.SensorDocument{
		SensorID:   row.sensorID,
		SensorName: row.sensorName,
	}

	if content, ok := readOptional(entries, hrPath, diag); ok {
		doc.HeartRateData = parseHeartRateCSV(hrPath, content, diag)
	}
	if content, ok := readOptional(entries, rrPath, diag); ok {
		doc.RRIntervalData = parseRRIntervalCSV(rrPath, content, diag)
	}
	if content, ok := readOptional(entries, statsPath, diag); ok {
		doc.Statistics = parseStatisticsCSV(statsPath, content, diag)
	} else {
		doc.Statistics = synthesizeStatistics(doc.HeartRateData, row)
	}
	return doc
}

// findRecordingFolder first top-level recording_<id>_csv directory in
// archive order.
func findRecordingFolder(names []string) (string, bool) {
	for _, name := range names {
		top, _, found := strings.Cut(name, "/")
		if !found {
			continue
		}
		if strings.HasPrefix(top, folderPrefix) && strings.HasSuffix(top, folderSuffix) &&
			len(top) >= len(folderPrefix)+len(folderSuffix) {
			return top, true
		}
	}
	return "", false
}

func sessionName(meta sessionMeta) string {
	if meta.hasName {
		return meta.name
	}
	if meta.id != "" {
		return meta.id
	}
	return "Unknown"
}

// readOptional missing and unreadable entries both count as absent.
func readOptional(entries map[string]*zip.File, name string, diag *diagnostics) (string, bool) {
	f, ok := entries[name]
	if !ok {
		diag.add(name, 0, "file not in archive")
		return "", false
	}
	content, err := readEntry(f)
	if err != nil {
		diag.add(name, 0, "unreadable: %v", err)
		return "", false
	}
	return content, true
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
