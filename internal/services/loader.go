package services

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cap-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize    = 2000
	maxWorkers   = 8
	cacheVersion = "v1"
)

// CSVColumns is the header of a dataset file, in the order the exporter
// writes it. Loaded files may order the columns differently.
var CSVColumns = []string{
	"date", "category", "quantity", "unit_price", "revenue", "payment_method", "frequent_customer",
}

// Loader reads datasets from CSV files. When CacheDir is set, parsed
// records are kept in a gob file next to it and reused while the source is
// unchanged.
type Loader struct {
	CacheDir string
	logger   *slog.Logger
}

func NewLoader(logger *slog.Logger, cacheDir string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{CacheDir: cacheDir, logger: logger}
}

// Load parses path into records in file order. Rows that fail to parse are
// skipped; a file without a single valid row is an error.
func (l *Loader) Load(ctx context.Context, path string) ([]models.Record, error) {
	if records, err := l.loadFromCache(path); err == nil {
		l.logger.Info("loaded dataset from cache", "file", path, "records", len(records))
		return records, nil
	}

	start := time.Now()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	records, skipped, err := ReadRecords(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	l.logger.Info("dataset loaded",
		"file", path,
		"records", len(records),
		"skipped", skipped,
		"duration", time.Since(start))

	if err := l.saveToCache(path, records); err != nil {
		l.logger.Warn("failed to save dataset cache", "error", err)
	}
	return records, nil
}

// ReadRecords parses CSV from r. Lines are parsed in batches by a bounded
// worker pool and reassembled in input order.
func ReadRecords(ctx context.Context, r io.Reader) ([]models.Record, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	columns, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	var (
		records []models.Record
		skipped int
		batch   = make([][]string, 0, batchSize)
	)
	flush := func() error {
		parsed, bad, err := parseBatch(ctx, batch, columns)
		if err != nil {
			return err
		}
		records = append(records, parsed...)
		skipped += bad
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, 0, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, 0, err
		}
	}

	if len(records) == 0 {
		return nil, skipped, fmt.Errorf("no valid records found")
	}
	return records, skipped, nil
}

func parseBatch(ctx context.Context, rows [][]string, columns map[string]int) ([]models.Record, int, error) {
	var g errgroup.Group
	g.SetLimit(maxWorkers)

	parsed := make([]models.Record, len(rows))
	valid := make([]bool, len(rows))

	for i, row := range rows {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			record, err := ParseRecord(row, columns)
			if err != nil {
				return nil
			}
			parsed[i] = record
			valid[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	out := make([]models.Record, 0, len(rows))
	for i, ok := range valid {
		if ok {
			out = append(out, parsed[i])
		}
	}
	return out, len(rows) - len(out), nil
}

func columnIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	var missing []string
	for _, name := range CSVColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

// ParseRecord converts one CSV row. Revenue must equal quantity times unit
// price.
func ParseRecord(row []string, columns map[string]int) (models.Record, error) {
	field := func(name string) string {
		i := columns[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := models.ParseDay(field("date"))
	if err != nil {
		return models.Record{}, err
	}
	category := field("category")
	if category == "" {
		return models.Record{}, fmt.Errorf("empty category")
	}
	quantity, err := strconv.Atoi(field("quantity"))
	if err != nil || quantity < 0 {
		return models.Record{}, fmt.Errorf("invalid quantity %q", field("quantity"))
	}
	unitPrice, err := strconv.Atoi(field("unit_price"))
	if err != nil || unitPrice < 0 {
		return models.Record{}, fmt.Errorf("invalid unit_price %q", field("unit_price"))
	}
	revenue, err := strconv.Atoi(field("revenue"))
	if err != nil {
		return models.Record{}, fmt.Errorf("invalid revenue %q", field("revenue"))
	}
	if revenue != quantity*unitPrice {
		return models.Record{}, fmt.Errorf("revenue %d != %d x %d", revenue, quantity, unitPrice)
	}
	frequent, err := strconv.ParseBool(field("frequent_customer"))
	if err != nil {
		return models.Record{}, fmt.Errorf("invalid frequent_customer %q", field("frequent_customer"))
	}

	return models.NewRecord(date, category, quantity, unitPrice, field("payment_method"), frequent), nil
}

type cachedDataset struct {
	Source   string
	ModTime  time.Time
	Records  []models.Record
	CachedAt time.Time
}

func (l *Loader) cacheFilename(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(abs)
	return filepath.Join(l.CacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (l *Loader) saveToCache(path string, records []models.Record) error {
	if l.CacheDir == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.CacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(l.cacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(cachedDataset{
		Source:   path,
		ModTime:  info.ModTime(),
		Records:  records,
		CachedAt: time.Now(),
	})
}

func (l *Loader) loadFromCache(path string) ([]models.Record, error) {
	if l.CacheDir == "" {
		return nil, fmt.Errorf("cache disabled")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(l.cacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cached cachedDataset
	if err := gob.NewDecoder(file).Decode(&cached); err != nil {
		return nil, err
	}
	if !cached.ModTime.Equal(info.ModTime()) || len(cached.Records) == 0 {
		return nil, fmt.Errorf("cache is stale")
	}
	return cached.Records, nil
}
