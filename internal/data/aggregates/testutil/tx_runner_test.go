package testutil

import (
	"context"
	"errors"
	"testing"

	repotest "github.com/yungbote/materials-catalog/internal/data/repos/testutil"
	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/platform/dbctx"
)

func TestInjectedTxRunner_CommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
	if r.BeginCalls != 1 || r.CommitCalls != 1 || r.RollbackCalls != 0 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_RollbackOnBodyError(t *testing.T) {
	r := &InjectedTxRunner{}
	bodyErr := errors.New("boom")
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		return bodyErr
	})
	if !errors.Is(err, bodyErr) {
		t.Fatalf("expected body err, got %v", err)
	}
	if r.BeginCalls != 1 || r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailCommitTriggersRollback(t *testing.T) {
	commitErr := errors.New("commit failed")
	r := &InjectedTxRunner{FailCommit: commitErr}
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		return nil
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit err, got %v", err)
	}
	if r.BeginCalls != 1 || r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailCommitDiscardsRealWrites(t *testing.T) {
	db := repotest.SQLite(t)
	r := &InjectedTxRunner{DB: db, FailCommit: errors.New("commit failed")}

	err := r.InTx(context.Background(), func(dbc dbctx.Context) error {
		return dbc.Tx.Create(&types.Category{Name: "Transient"}).Error
	})
	if err == nil {
		t.Fatalf("expected commit failure")
	}
	var n int64
	db.Model(&types.Category{}).Where("name = ?", "Transient").Count(&n)
	if n != 0 {
		t.Fatalf("row survived injected commit failure")
	}

	r.FailCommit = nil
	if err := r.InTx(context.Background(), func(dbc dbctx.Context) error {
		return dbc.Tx.Create(&types.Category{Name: "Durable"}).Error
	}); err != nil {
		t.Fatalf("InTx: %v", err)
	}
	db.Model(&types.Category{}).Where("name = ?", "Durable").Count(&n)
	if n != 1 {
		t.Fatalf("committed row missing")
	}
}

func TestInjectedTxRunner_FailBeginTimes(t *testing.T) {
	beginErr := errors.New("begin failed")
	r := &InjectedTxRunner{FailBegin: beginErr, FailBeginTimes: 1}
	if err := r.InTx(context.Background(), func(_ dbctx.Context) error { return nil }); !errors.Is(err, beginErr) {
		t.Fatalf("first call: want begin err, got %v", err)
	}
	if err := r.InTx(context.Background(), func(_ dbctx.Context) error { return nil }); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if r.BeginCalls != 2 || r.CommitCalls != 1 {
		t.Fatalf("unexpected counters begin=%d commit=%d", r.BeginCalls, r.CommitCalls)
	}
}
