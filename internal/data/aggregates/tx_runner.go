package aggregates

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
)

// TxRunner is the transaction boundary every aggregate write runs inside.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

// InTx runs fn in one gorm transaction. Begin and commit failures are tagged
// ErrTransaction so callers can tell them apart from failures inside fn.
func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	var bodyErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bodyErr = fn(dbctx.Context{Ctx: ctx, Tx: tx})
		return bodyErr
	})
	if err != nil && bodyErr == nil {
		return errors.Join(ErrTransaction, err)
	}
	return err
}
