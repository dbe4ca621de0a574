package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JobType represents the periodic maintenance jobs
type JobType int

const (
	JobTypePrune JobType = iota
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypePrune:
		return "prune"
	default:
		return "unknown"
	}
}

// Pruner deletes history records created before the cutoff
type Pruner interface {
	DeleteRecordsBefore(cutoff time.Time) (int64, error)
}

// Scheduler periodically removes history older than the retention window
type Scheduler struct {
	pruner    Pruner
	logger    *logrus.Logger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	jobMutex  sync.Mutex // Ensures sequential job execution
}

// NewScheduler creates a new scheduler
func NewScheduler(pruner Pruner, retention, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if interval <= 0 {
		interval = time.Hour
	}

	return &Scheduler{
		pruner:    pruner,
		logger:    logger,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Start runs the prune job once and then on every interval
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	s.logger.Info("Running startup prune job")
	s.RunPrune()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunPrune()
		}
	}
}

// RunPrune deletes records older than the retention window and returns how many were removed
func (s *Scheduler) RunPrune() int64 {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	cutoff := s.now().Add(-s.retention)
	fields := logrus.Fields{
		"job_type": JobTypePrune.String(),
		"cutoff":   cutoff.Format(time.RFC3339),
	}

	deleted, err := s.pruner.DeleteRecordsBefore(cutoff)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Scheduled job failed")
		return 0
	}

	s.logger.WithFields(fields).WithField("deleted", deleted).Info("Scheduled job completed successfully")
	return deleted
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}
