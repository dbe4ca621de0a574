package processor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"resalelens/server/config"
	"resalelens/server/internal/database"
	"resalelens/server/internal/models"
	"resalelens/server/internal/queue"
)

// Transactor is the part of *gorm.DB the processor needs
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchProcessor buffers history records and writes them in batches
type BatchProcessor struct {
	db        Transactor
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.RecordQueue
	now       func() time.Time
	mu        sync.Mutex
	pending   []*models.HistoryRecord
	flushCh   chan struct{}
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Transactor, queue *queue.RecordQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:      db,
		queue:   queue,
		config:  config,
		logger:  logger,
		now:     time.Now,
		flushCh: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start subscribes the writer to the queue and starts the flush loop
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
	p.queue.Start()

	p.waitGroup.Add(1)
	go p.flushLoop()
}

// Stop flushes buffered records and shuts down gracefully
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
	p.flush()
	if err := p.queue.Close(); err != nil {
		p.logger.WithError(err).Error("Failed to close record queue")
	}
}

// Record converts a completed analysis into a history record and buffers it
func (p *BatchProcessor) Record(analysis *models.Analysis) {
	record := &models.HistoryRecord{
		ID:        uuid.NewString(),
		RequestID: analysis.RequestID,
		Category:  analysis.Category,
		HasImage:  analysis.UsedImage,
		CreatedAt: p.now(),
	}
	if analysis.Estimate != nil {
		record.Strategy = analysis.Estimate.Strategy
		record.Amount = analysis.Estimate.Amount
	}

	p.mu.Lock()
	p.pending = append(p.pending, record)
	full := len(p.pending) >= p.config.BatchProcessing.MaxBatchSize
	p.mu.Unlock()

	if full {
		select {
		case p.flushCh <- struct{}{}:
		default:
		}
	}
}

// Pending returns the number of buffered records
func (p *BatchProcessor) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// flushLoop pushes full batches immediately and partial ones after MaxBatchWaitTime
func (p *BatchProcessor) flushLoop() {
	defer p.waitGroup.Done()

	wait := time.Duration(p.config.BatchProcessing.MaxBatchWaitTime) * time.Second
	if wait <= 0 {
		wait = time.Second
	}
	ticker := time.NewTicker(wait)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.flushCh:
			p.flush()
		case <-ticker.C:
			p.flush()
		}
	}
}

func (p *BatchProcessor) flush() {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := p.queue.Push(batch); err != nil {
		p.logger.WithError(err).WithField("batch_size", len(batch)).Error("Dropping history batch")
	}
}

// processBatch handles a single batch of records with transaction and retry logic
func (p *BatchProcessor) processBatch(batch []*models.HistoryRecord) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.InsertRecords(tx, batch); err != nil {
				return fmt.Errorf("failed to insert history batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Debugf("Successfully processed batch of %d history records", len(batch))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries+1, err)
}
