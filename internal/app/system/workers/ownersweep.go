// internal/app/system/workers/ownersweep.go
package workers

import (
	"context"
	"sync"
	"time"

	meetingstore "github.com/dalemusser/meethub/internal/app/store/meetings"
	"go.uber.org/zap"
)

// OwnerSweep is a background worker that repairs the owner-reference gap
// left by the non-transactional meeting create: a meeting insert that
// succeeds but whose follow-up user update is lost (crash, store error)
// leaves a meeting missing from its organiser's reference list. The sweep
// re-adds those references; the add is a $addToSet so repeated repairs are
// no-ops.
type OwnerSweep struct {
	meetings *meetingstore.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewOwnerSweep creates a new owner-reference sweep worker.
func NewOwnerSweep(meetings *meetingstore.Store, logger *zap.Logger, interval time.Duration) *OwnerSweep {
	return &OwnerSweep{
		meetings: meetings,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *OwnerSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("owner sweep worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *OwnerSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("owner sweep worker stopped")
}

func (w *OwnerSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *OwnerSweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repaired, err := w.meetings.RepairOwnerRefs(ctx)
	if err != nil {
		w.log.Error("owner sweep failed", zap.Error(err))
		return
	}
	if repaired > 0 {
		w.log.Info("repaired owner references", zap.Int64("count", repaired))
	}
}
