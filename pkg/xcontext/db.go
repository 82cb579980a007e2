package xcontext

import (
	"context"

	"gorm.io/gorm"
)

// dbTransaction is shared by pointer so that a deferred rollback sees a
// commit which happened after the defer statement was evaluated.
type dbTransaction struct {
	tx   *gorm.DB
	done bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the running transaction if there is one, otherwise the base
// database handle.
func DB(ctx context.Context) *gorm.DB {
	if t, ok := ctx.Value(dbTxKey{}).(*dbTransaction); ok && !t.done {
		return t.tx.WithContext(ctx)
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction. Every repository call using the
// returned context runs inside it until it is committed or rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	tx := DB(ctx).Begin()
	return context.WithValue(ctx, dbTxKey{}, &dbTransaction{tx: tx})
}

// WithCommitDBTransaction commits the current transaction. It is a no-op if
// there is no running transaction.
func WithCommitDBTransaction(ctx context.Context) (context.Context, error) {
	t, ok := ctx.Value(dbTxKey{}).(*dbTransaction)
	if !ok || t.done {
		return ctx, nil
	}

	t.done = true
	if err := t.tx.Commit().Error; err != nil {
		return ctx, err
	}

	return ctx, nil
}

// WithRollbackDBTransaction rolls back the current transaction if it is still
// running, so it is safe to defer right after WithDBTransaction.
func WithRollbackDBTransaction(ctx context.Context) context.Context {
	t, ok := ctx.Value(dbTxKey{}).(*dbTransaction)
	if !ok || t.done {
		return ctx
	}

	t.done = true
	t.tx.Rollback()
	return ctx
}
