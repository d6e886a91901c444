package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	devenv "gtrends/dev/env"
	"gtrends/lib/telemetry"

	_ "modernc.org/sqlite"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB  *sql.DB
	Tel *RecordingAPI
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	result := ServiceResult{Tel: &RecordingAPI{}}

	if params.DbSchema == "" {
		return result, cleanup
	}

	dbpath := ":memory:"
	if params.DbPath != "" && params.DbPath != ":memory:" {
		var err error
		dbpath, err = devenv.ResolvePath(params.DbPath)
		if err != nil {
			t.Fatal(err)
		}
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is a different database
	sqlite.SetMaxOpenConns(1)
	_, err = sqlite.Exec(params.DbSchema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}
	result.DB = sqlite

	return result, func() {
		sqlite.Close()
		cleanup()
	}
}

// Report is one call made to a RecordingAPI.
type Report struct {
	Kind   string
	Id     string
	Params []any
}

// RecordingAPI is a telemetry.API that remembers what it was told, it also
// forwards everything to slog so test output stays readable.
type RecordingAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *RecordingAPI) record(kind, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, Id: id, Params: params})
}

func (r *RecordingAPI) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
	telemetry.SlogAPI{}.ReportBroken(id, params...)
}

func (r *RecordingAPI) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
	telemetry.SlogAPI{}.ReportWarning(id, params...)
}

func (r *RecordingAPI) ReportDebug(msg string, params ...any) {
	telemetry.SlogAPI{}.ReportDebug(msg, params...)
}

func (r *RecordingAPI) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Ids returns the ids reported with the given kind ("broken", "warning" or
// "count") in the order they were reported.
func (r *RecordingAPI) Ids(kind string) []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var ids []string
	for _, report := range r.reports {
		if report.Kind == kind {
			ids = append(ids, report.Id)
		}
	}
	return ids
}
