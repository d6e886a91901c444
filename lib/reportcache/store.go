package reportcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gtrends/lib/chrono"
	"gtrends/lib/reportcache/db"
)

// Store caches raw report bodies keyed by the query url that produced them.
type Store struct {
	qry    *db.Queries
	clock  chrono.API
	maxAge time.Duration
}

// Open creates the schema if needed and returns a Store over `database`.
func Open(ctx context.Context, database *sql.DB, clock chrono.API, maxAge time.Duration) (Store, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create cache schema: %w", err)
	}
	return Store{
		qry:    db.New(database),
		clock:  clock,
		maxAge: maxAge,
	}, nil
}

// Get returns the cached body for a query, ok is false on a miss or when
// the entry is older than the max age.
func (s Store) Get(ctx context.Context, query string) (body string, ok bool, err error) {
	report, err := s.qry.GetRawReport(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if s.maxAge > 0 && s.clock.Now().Sub(time.Unix(report.FetchedAt, 0)) > s.maxAge {
		return "", false, nil
	}
	return report.Body, true, nil
}

func (s Store) Put(ctx context.Context, query, body string) error {
	return s.qry.PutRawReport(ctx, db.PutRawReportParams{
		Query:     query,
		Body:      body,
		FetchedAt: s.clock.Now().Unix(),
	})
}

// Prune removes entries past the max age.
func (s Store) Prune(ctx context.Context) error {
	if s.maxAge <= 0 {
		return nil
	}
	return s.qry.DeleteRawReportsBefore(ctx, s.clock.Now().Add(-s.maxAge).Unix())
}
