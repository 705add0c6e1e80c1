package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skysift/hrrr-point-etl/internal/domain"
	"github.com/skysift/hrrr-point-etl/internal/observability"
	"github.com/skysift/hrrr-point-etl/internal/spatial"
)

// RowStore persists extracted rows idempotently.
type RowStore interface {
	EnsureTable(ctx context.Context) error
	// InsertRows submits one batch and returns the number of rows attempted.
	// Primary-key conflicts are silently discarded by the store.
	InsertRows(ctx context.Context, rows []domain.ExtractedRow) (int, error)
}

// RowSink receives each file's extracted rows for downstream consumers.
// Optional; sink failures never affect a file's status.
type RowSink interface {
	PublishRows(ctx context.Context, rows []domain.ExtractedRow) error
}

// Options carries orchestrator settings beyond its collaborators.
type Options struct {
	Bucket        string
	Catalog       []domain.VariableSpec
	FetchTimeout  time.Duration
	FetchAttempts int
	Sink          RowSink
	Clock         clockwork.Clock
}

// Orchestrator drives the per-object pipeline: fetch, decode, resolve, match,
// extract, persist. Failures are classified per object and folded into the
// run summary; nothing below the orchestrator terminates the run.
type Orchestrator struct {
	blob     domain.BlobStore
	decoder  domain.Decoder
	resolver *spatial.Resolver
	store    RowStore
	sink     RowSink
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock

	bucket        string
	catalog       []domain.VariableSpec
	fetchTimeout  time.Duration
	fetchAttempts int

	ready atomic.Bool
}

// New creates an Orchestrator. FetchTimeout defaults to 5 minutes and
// FetchAttempts to 3 when unset.
func New(blob domain.BlobStore, dec domain.Decoder, res *spatial.Resolver, store RowStore, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Orchestrator {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Minute
	}
	if opts.FetchAttempts <= 0 {
		opts.FetchAttempts = 3
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Orchestrator{
		blob:          blob,
		decoder:       dec,
		resolver:      res,
		store:         store,
		sink:          opts.Sink,
		logger:        logger,
		metrics:       metrics,
		clock:         opts.Clock,
		bucket:        opts.Bucket,
		catalog:       opts.Catalog,
		fetchTimeout:  opts.FetchTimeout,
		fetchAttempts: opts.FetchAttempts,
	}
}

// CheckReadiness returns nil once at least one object key has been handled.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("no object keys processed yet")
	}
	return nil
}

// Run processes every planned key in order and returns the aggregate summary.
// Per-key failures are recorded and the loop continues; only an empty plan or
// a table initialization failure is fatal. Cancellation is honored at the
// loop boundary: the object in flight finishes (or aborts via its fetch
// context) and its temp file is cleaned up either way.
func (o *Orchestrator) Run(ctx context.Context, keys []string) (*Summary, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyPlan
	}
	if err := o.store.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("initialize storage table: %w", err)
	}

	o.metrics.RunInProgress.Set(1)
	defer o.metrics.RunInProgress.Set(0)

	sum := newSummary(len(keys), o.clock.Now().UTC())
	o.logger.Info("ingestion run started", "keys", len(keys), "bucket", o.bucket)

	handled := 0
	for _, key := range keys {
		if ctx.Err() != nil {
			o.logger.Info("run cancelled", "reason", ctx.Err(), "remaining_keys", len(keys)-handled)
			break
		}

		start := o.clock.Now()
		res := o.processObject(ctx, key)
		o.metrics.ObjectDuration.Observe(o.clock.Since(start).Seconds())
		o.metrics.ObjectsProcessed.WithLabelValues(string(res.Status)).Inc()
		o.metrics.MessagesScanned.Add(float64(res.MessagesScanned))
		o.metrics.RowsAttempted.Add(float64(res.RowsInserted))

		sum.add(res)
		handled++
		o.ready.Store(true)

		o.logger.Info("object key handled",
			"key", key,
			"status", string(res.Status),
			"messages_scanned", res.MessagesScanned,
			"rows_attempted", res.RowsInserted,
		)
	}

	sum.Finished = o.clock.Now().UTC()
	o.logger.Info("ingestion run finished",
		"processed", sum.Processed,
		"not_found", sum.NotFound,
		"download_errors", sum.DownloadErrors,
		"skipped_no_grid", sum.SkippedNoGrid,
		"processing_errors", sum.ProcessingErrors,
		"messages_scanned", sum.MessagesScanned,
		"rows_attempted", sum.RowsAttempted,
	)
	return sum, nil
}

// processObject runs the full pipeline for one key and classifies the outcome.
// The temp file is removed on every exit path.
func (o *Orchestrator) processObject(ctx context.Context, key string) domain.FileResult {
	result := domain.FileResult{VariablesFound: make(map[string]struct{})}

	tmp, err := os.CreateTemp("", "hrrr-*.grib2")
	if err != nil {
		o.logger.Error("create temp file failed", "key", key, "error", err)
		result.Status = domain.StatusProcessingError
		return result
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("temp file cleanup failed", "path", tmpPath, "error", err)
		}
	}()

	if err := o.fetch(ctx, key, tmpPath); err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			o.logger.Warn("object not found", "bucket", o.bucket, "key", key)
			result.Status = domain.StatusNotFound
		} else {
			o.logger.Error("download failed", "bucket", o.bucket, "key", key, "error", err)
			result.Status = domain.StatusDownloadError
		}
		return result
	}

	entry, cacheHit, err := o.resolveGrid(tmpPath)
	if err != nil {
		o.logger.Warn("grid resolution failed, skipping file", "key", key, "error", err)
		o.metrics.GridCacheLookups.WithLabelValues("miss").Inc()
		result.Status = domain.StatusSkippedNoGrid
		return result
	}
	if cacheHit {
		o.metrics.GridCacheLookups.WithLabelValues("hit").Inc()
	} else {
		o.metrics.GridCacheLookups.WithLabelValues("miss").Inc()
	}

	locator := fmt.Sprintf("s3://%s/%s", o.bucket, key)
	rows, scanned, found, scanErr := o.scanMessages(tmpPath, entry, locator)
	result.MessagesScanned = scanned
	result.VariablesFound = found

	status := domain.StatusProcessed
	if scanErr != nil {
		// Rows extracted before the failure are still persisted below.
		o.logger.Error("message scan failed", "key", key, "error", scanErr, "partial_rows", len(rows))
		status = domain.StatusProcessingError
	}

	if len(rows) > 0 {
		attempted, err := o.store.InsertRows(ctx, rows)
		if err != nil {
			o.logger.Error("batch insert failed", "key", key, "rows", len(rows), "error", err)
			status = domain.StatusProcessingError
		} else {
			result.RowsInserted = attempted
			o.publishRows(ctx, rows)
		}
	}

	result.Status = status
	return result
}

// fetch downloads the object with a bounded timeout and retry count.
// A missing object and a cancelled parent context are never retried.
func (o *Orchestrator) fetch(ctx context.Context, key, dst string) error {
	var err error
	for attempt := 1; attempt <= o.fetchAttempts; attempt++ {
		if attempt > 1 {
			o.metrics.FetchRetries.Inc()
			o.logger.Warn("retrying download", "key", key, "attempt", attempt, "error", err)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
		start := o.clock.Now()
		err = o.blob.Download(fetchCtx, o.bucket, key, dst)
		cancel()

		if err == nil {
			o.metrics.FetchDuration.Observe(o.clock.Since(start).Seconds())
			return nil
		}
		if errors.Is(err, domain.ErrObjectNotFound) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

// resolveGrid peeks at the file's first message for the grid geometry and
// resolves nearest indices through the cache. Coordinate arrays are only read
// when the signature has not been seen before.
func (o *Orchestrator) resolveGrid(path string) (entry *spatial.Entry, cacheHit bool, err error) {
	reader, err := o.decoder.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open for grid peek: %w", err)
	}
	defer reader.Close()

	msg, err := reader.Next()
	if err != nil {
		return nil, false, fmt.Errorf("read first message: %w", err)
	}
	defer msg.Close()

	meta, err := readGridMeta(msg)
	if err != nil {
		return nil, false, fmt.Errorf("read grid meta: %w", err)
	}

	return o.resolver.Resolve(meta, func() ([]float64, []float64, error) {
		lats, err := msg.GetFloatArray("latitudes")
		if err != nil {
			return nil, nil, err
		}
		lons, err := msg.GetFloatArray("longitudes")
		if err != nil {
			return nil, nil, err
		}
		return lats, lons, nil
	})
}

func readGridMeta(msg domain.Message) (spatial.GridMeta, error) {
	var meta spatial.GridMeta
	var err error
	if meta.TemplateNumber, err = msg.GetInt("gridDefinitionTemplateNumber"); err != nil {
		return meta, err
	}
	if meta.Ni, err = msg.GetInt("Ni"); err != nil {
		return meta, err
	}
	if meta.Nj, err = msg.GetInt("Nj"); err != nil {
		return meta, err
	}
	if meta.Lat1, err = msg.GetFloat("latitudeOfFirstGridPointInDegrees"); err != nil {
		return meta, err
	}
	if meta.Lon1, err = msg.GetFloat("longitudeOfFirstGridPointInDegrees"); err != nil {
		return meta, err
	}
	return meta, nil
}

// scanMessages iterates every message in the file, matching against the
// catalog and extracting point rows for matches. A reader error mid-file
// returns the rows accumulated so far along with the error.
func (o *Orchestrator) scanMessages(path string, entry *spatial.Entry, locator string) (rows []domain.ExtractedRow, scanned int, found map[string]struct{}, err error) {
	found = make(map[string]struct{})

	reader, err := o.decoder.Open(path)
	if err != nil {
		return nil, 0, found, fmt.Errorf("open for message scan: %w", err)
	}
	defer reader.Close()

	for {
		msg, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return rows, scanned, found, nil
		}
		if err != nil {
			return rows, scanned, found, fmt.Errorf("read message %d: %w", scanned+1, err)
		}

		scanned++
		rows = o.handleMessage(msg, entry, locator, found, rows)
	}
}

// handleMessage matches and extracts one message, always releasing the handle.
func (o *Orchestrator) handleMessage(msg domain.Message, entry *spatial.Entry, locator string, found map[string]struct{}, rows []domain.ExtractedRow) []domain.ExtractedRow {
	defer msg.Close()

	spec, ok := domain.MatchVariable(msg, o.catalog)
	if !ok {
		return rows
	}
	found[spec.UserName] = struct{}{}

	extracted, err := domain.ExtractRows(msg, spec, entry.Indices, entry.Lats, entry.Lons, locator)
	if err != nil {
		// Per-message problem: log and move on, the file is not failed.
		o.logger.Warn("row extraction failed", "variable", spec.UserName, "error", err)
		return rows
	}
	return append(rows, extracted...)
}

// publishRows forwards a batch to the optional sink. Failures are logged and
// counted but never change the file's status.
func (o *Orchestrator) publishRows(ctx context.Context, rows []domain.ExtractedRow) {
	if o.sink == nil {
		return
	}
	if err := o.sink.PublishRows(ctx, rows); err != nil {
		o.metrics.SinkPublishErrors.Inc()
		o.logger.Warn("sink publish failed", "rows", len(rows), "error", err)
	}
}
