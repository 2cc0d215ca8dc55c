package orchestrator

import (
	"sync"

	"github.com/docintel/answer-engine/internal/models"
	"github.com/sirupsen/logrus"
)

// Per-1k-token prices in hundredths of a cent, used to estimate CostCents.
// Unknown models record no cost.
var modelCostPer1kTokens = map[string]int{
	"gpt-4o":      250,
	"gpt-4o-mini": 15,
}

// Recorder persists usage records off the request path. Record hands the
// entry to a buffered channel and returns immediately; a full queue drops
// the entry with a warning rather than blocking a response.
type Recorder struct {
	repo    models.QueryLogRepository
	queue   chan *models.QueryLog
	logger  *logrus.Logger
	wg      sync.WaitGroup
	closing sync.Once
}

func NewRecorder(repo models.QueryLogRepository, queueSize int, logger *logrus.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		repo:   repo,
		queue:  make(chan *models.QueryLog, queueSize),
		logger: logger,
	}
	r.wg.Add(1)
	go r.worker()
	return r
}

// Record enqueues a usage entry. Never blocks.
func (r *Recorder) Record(entry *models.QueryLog) {
	select {
	case r.queue <- entry:
	default:
		r.logger.WithField("query_id", entry.QueryID).Warn("Usage queue full, dropping record")
	}
}

// Close drains the queue and stops the worker.
func (r *Recorder) Close() {
	r.closing.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for entry := range r.queue {
		if cost, ok := modelCostPer1kTokens[entry.ModelUsed]; ok && entry.TokensUsed > 0 {
			// Below one cent the estimate stays nil: a recorded zero
			// would be indistinguishable from a measured free query.
			if cents := entry.TokensUsed * cost / 1000 / 100; cents > 0 {
				entry.CostCents = &cents
			}
		}
		if err := r.repo.Create(entry); err != nil {
			r.logger.WithError(err).WithField("query_id", entry.QueryID).Error("Failed to persist usage record")
		}
	}
}
