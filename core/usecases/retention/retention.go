// Package retention purges activity log entries whose retention date has
// passed. It runs as a workers.Processor.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/helix/infrastructure/workers"
	"github.com/jrazmi/helix/sdk/logger"
)

// Options is the env mapped retention configuration.
type Options struct {
	BatchSize int `env:"RETENTION_BATCH_SIZE" default:"500"`
}

// ActivityLogs is the slice of activitylogsrepo.Repository the purge uses.
type ActivityLogs interface {
	ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error)
	PurgeExpired(ctx context.Context, ids []string, now time.Time) (int64, error)
}

// Batch is one checkout of expired activity log ids.
type Batch struct {
	ID      string
	LogIDs  []string
	Cutoff  time.Time
	Deleted int64
}

func (b Batch) GetID() string { return b.ID }

// Processor checks out batches of expired entries and deletes them. Ids held
// by a batch in flight are not handed to another worker.
type Processor struct {
	log       *logger.Logger
	logs      ActivityLogs
	batchSize int
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

var _ workers.Processor[Batch] = (*Processor)(nil)

func NewProcessor(log *logger.Logger, logs ActivityLogs, cfg Options) *Processor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Processor{
		log:       log,
		logs:      logs,
		batchSize: cfg.BatchSize,
		now:       time.Now,
		inFlight:  map[string]struct{}{},
	}
}

func (p *Processor) Checkout(ctx context.Context, workerID string) (Batch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().UTC()
	ids, err := p.logs.ListExpired(ctx, cutoff, p.batchSize+len(p.inFlight))
	if err != nil {
		return Batch{}, fmt.Errorf("checkout expired activity: %w", err)
	}

	batch := Batch{ID: uuid.NewString(), Cutoff: cutoff}
	for _, id := range ids {
		if _, held := p.inFlight[id]; held {
			continue
		}
		batch.LogIDs = append(batch.LogIDs, id)
		if len(batch.LogIDs) == p.batchSize {
			break
		}
	}
	if len(batch.LogIDs) == 0 {
		return Batch{}, workers.ErrNoWorkAvailable
	}

	for _, id := range batch.LogIDs {
		p.inFlight[id] = struct{}{}
	}
	p.log.DebugContext(ctx, "checked out retention batch", "batch_id", batch.ID, "worker_id", workerID, "count", len(batch.LogIDs))
	return batch, nil
}

func (p *Processor) Process(ctx context.Context, batch Batch) (Batch, error) {
	n, err := p.logs.PurgeExpired(ctx, batch.LogIDs, batch.Cutoff)
	if err != nil {
		return batch, fmt.Errorf("purge batch %s: %w", batch.ID, err)
	}
	batch.Deleted = n
	return batch, nil
}

func (p *Processor) Complete(ctx context.Context, batch Batch, processingTimeMS int) error {
	p.release(batch)
	p.log.InfoContext(ctx, "retention batch purged",
		"batch_id", batch.ID,
		"requested", len(batch.LogIDs),
		"deleted", batch.Deleted,
		"duration_ms", processingTimeMS)
	return nil
}

func (p *Processor) Fail(ctx context.Context, batch Batch, err error) error {
	p.release(batch)
	p.log.ErrorContext(ctx, "retention batch failed", "batch_id", batch.ID, "count", len(batch.LogIDs), "error", err)
	return nil
}

func (p *Processor) release(batch Batch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range batch.LogIDs {
		delete(p.inFlight, id)
	}
}
