package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// ExpenseSummary is a row of expense_summaries.
type ExpenseSummary struct {
	ID         int64
	Category   string
	Date       string
	Amount     string
	SyncStatus string
	CreatedAt  string
}

type CreateExpenseSummaryParams struct {
	Category string
	Date     string
	Amount   string
}

const createExpenseSummary = `INSERT INTO expense_summaries (category, date, amount)
VALUES (?, ?, ?)
RETURNING id, category, date, amount, sync_status, created_at`

func (q *Queries) CreateExpenseSummary(ctx context.Context, arg CreateExpenseSummaryParams) (ExpenseSummary, error) {
	row := q.db.QueryRowContext(ctx, createExpenseSummary, arg.Category, arg.Date, arg.Amount)
	var i ExpenseSummary
	err := row.Scan(&i.ID, &i.Category, &i.Date, &i.Amount, &i.SyncStatus, &i.CreatedAt)
	return i, err
}

const getExpenseSummary = `SELECT id, category, date, amount, sync_status, created_at
FROM expense_summaries WHERE id = ?`

func (q *Queries) GetExpenseSummary(ctx context.Context, id int64) (ExpenseSummary, error) {
	row := q.db.QueryRowContext(ctx, getExpenseSummary, id)
	var i ExpenseSummary
	err := row.Scan(&i.ID, &i.Category, &i.Date, &i.Amount, &i.SyncStatus, &i.CreatedAt)
	return i, err
}

const listExpenseSummaries = `SELECT id, category, date, amount, sync_status, created_at
FROM expense_summaries ORDER BY date DESC, id DESC`

func (q *Queries) ListExpenseSummaries(ctx context.Context) ([]ExpenseSummary, error) {
	return q.list(ctx, listExpenseSummaries)
}

const getPendingSyncSummaries = `SELECT id, category, date, amount, sync_status, created_at
FROM expense_summaries WHERE sync_status = 'pending' ORDER BY id LIMIT ?`

func (q *Queries) GetPendingSyncSummaries(ctx context.Context, limit int64) ([]ExpenseSummary, error) {
	return q.list(ctx, getPendingSyncSummaries, limit)
}

const setSyncStatus = `UPDATE expense_summaries SET sync_status = ? WHERE id = ?`

func (q *Queries) SetSyncStatus(ctx context.Context, id int64, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, setSyncStatus, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]ExpenseSummary, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseSummary
	for rows.Next() {
		var i ExpenseSummary
		if err := rows.Scan(&i.ID, &i.Category, &i.Date, &i.Amount, &i.SyncStatus, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
