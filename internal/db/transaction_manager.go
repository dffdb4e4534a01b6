package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
)

// TransactionManager runs statements inside a transaction and commits every batchSize statements.
type TransactionManager struct {
	Db        *sql.DB
	Tx        *sql.Tx
	Count     atomic.Int64
	mu        sync.Mutex
	batchSize int64
}

func NewTransactionManager(ctx context.Context, db *sql.DB, batchSize int64) (*TransactionManager, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to start a transaction: %w", err)
	}

	return &TransactionManager{
		Db:        db,
		Tx:        tx,
		batchSize: batchSize,
	}, nil
}

func (m *TransactionManager) Exec(ctx context.Context, query string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.Tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error adding to transaction: %w", err)
	}

	if newCount := m.Count.Add(1); newCount >= m.batchSize {
		if err := m.Tx.Commit(); err != nil {
			return fmt.Errorf("commit error: %w", err)
		}

		m.Count.Store(0)
		tx, err := m.Db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("unable to start a transaction: %w", err)
		}
		m.Tx = tx
	}
	return nil
}

// Close commits whatever is pending in the current transaction.
func (m *TransactionManager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Tx.Commit(); err != nil {
		return fmt.Errorf("commit error: %w", err)
	}
	m.Count.Store(0)
	return nil
}

func (m *TransactionManager) Rollback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.Tx.Rollback()
}
