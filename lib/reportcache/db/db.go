package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type RawReport struct {
	Query     string
	Body      string
	FetchedAt int64
}

const getRawReport = `
select query, body, fetched_at from RawReport
where query = ?
`

func (q *Queries) GetRawReport(ctx context.Context, query string) (RawReport, error) {
	row := q.db.QueryRowContext(ctx, getRawReport, query)
	var i RawReport
	err := row.Scan(&i.Query, &i.Body, &i.FetchedAt)
	return i, err
}

const putRawReport = `
insert into RawReport(query, body, fetched_at) values (?, ?, ?)
on conflict (query) do update set
    body = excluded.body,
    fetched_at = excluded.fetched_at
`

type PutRawReportParams struct {
	Query     string
	Body      string
	FetchedAt int64
}

func (q *Queries) PutRawReport(ctx context.Context, arg PutRawReportParams) error {
	_, err := q.db.ExecContext(ctx, putRawReport, arg.Query, arg.Body, arg.FetchedAt)
	return err
}

const deleteRawReportsBefore = `
delete from RawReport
where fetched_at < ?
`

func (q *Queries) DeleteRawReportsBefore(ctx context.Context, before int64) error {
	_, err := q.db.ExecContext(ctx, deleteRawReportsBefore, before)
	return err
}
