package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/materials-catalog/internal/data/aggregates"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
)

// InjectedTxRunner injects begin/body/commit failures into aggregate writes.
// With DB set the body runs in a real transaction that is rolled back whenever
// a failure is injected, so tests can assert nothing leaked.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin error
	// FailBeginTimes limits FailBegin to the first N calls. Zero means every call.
	FailBeginTimes int
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	call := r.BeginCalls
	failBegin := r.FailBegin
	if r.FailBeginTimes > 0 && call > r.FailBeginTimes {
		failBegin = nil
	}
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}

	var tx *gorm.DB
	if r.DB != nil {
		tx = r.DB.WithContext(ctx).Begin()
		if tx.Error != nil {
			return tx.Error
		}
	}
	rollback := func() {
		if tx != nil {
			_ = tx.Rollback().Error
		}
		r.mu.Lock()
		r.RollbackCalls++
		r.mu.Unlock()
	}

	if failBeforeBody != nil {
		rollback()
		return failBeforeBody
	}
	if fn != nil {
		if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
			rollback()
			return err
		}
	}
	if failCommit != nil {
		rollback()
		return failCommit
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
	return nil
}
