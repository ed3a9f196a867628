package db

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	*Queries
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:      db,
		Queries: New(db),
	}
}

// ExecTx runs fq inside a single transaction, committing only when fq returns nil.
func (s *Store) ExecTx(ctx context.Context, fq func(q *Queries) error) error {
	return s.ExecTxWithOptions(ctx, nil, fq)
}

func (s *Store) ExecTxWithOptions(ctx context.Context, opts *sql.TxOptions, fq func(q *Queries) error) error {
	tx, err := s.DB.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	q := New(tx)
	err = fq(q)

	if err != nil {
		if txErr := tx.Rollback(); txErr != nil {
			return fmt.Errorf("encountered rollback error: %v, original error: %w", txErr, err)
		}
		return err
	}

	return tx.Commit()
}
