package services

import (
	"context"
	"strings"
	"sync"

	"github.com/yungbote/materials-catalog/internal/observability"
	"github.com/yungbote/materials-catalog/internal/platform/gcp"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

// assetAction is one stored object that must be removed if the write does not commit.
type assetAction struct {
	Seq      int
	Category gcp.BucketCategory
	Key      string
	Done     bool
}

// compensationLedger records uploads made ahead of a transaction. It lives for one
// request; nothing is persisted because the uploads it tracks are not referenced by
// any committed row until the write succeeds.
type compensationLedger struct {
	mu      sync.Mutex
	log     *logger.Logger
	bucket  gcp.BucketService
	metrics *observability.Metrics
	op      string
	actions []*assetAction
}

func newCompensationLedger(log *logger.Logger, bucket gcp.BucketService, metrics *observability.Metrics, op string) *compensationLedger {
	return &compensationLedger{log: log, bucket: bucket, metrics: metrics, op: op}
}

func (l *compensationLedger) Append(category gcp.BucketCategory, key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, &assetAction{Seq: len(l.actions) + 1, Category: category, Key: key})
}

// Compensate deletes every recorded object, newest first. Missing objects count as
// removed. Failures are logged and never returned: the caller is already failing
// with the error that matters.
func (l *compensationLedger) Compensate(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	for i := len(l.actions) - 1; i >= 0; i-- {
		a := l.actions[i]
		if a.Done {
			continue
		}
		err := l.bucket.DeleteFile(ctx, a.Category, a.Key)
		if gcp.IsNotFound(err) {
			err = nil
		}
		l.metrics.IncAsset("compensate", err == nil)
		if err != nil {
			l.log.Warn("asset compensation failed",
				"op", l.op,
				"seq", a.Seq,
				"category", string(a.Category),
				"key", a.Key,
				"error", err,
			)
			continue
		}
		a.Done = true
	}
}
