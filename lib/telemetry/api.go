package telemetry

import (
	"fmt"
)

// API is how packages report what happened to them. Tests swap in a
// recording implementation to assert on reports.
//
// Ids name the component, ex. `client.login` or `collect.download`. They
// are lowercase, with dashes separating a method from its component.
type API interface {
	// ReportBroken is for failures someone should look at.
	ReportBroken(id string, params ...any)
	// ReportWarning is for odd but survivable situations, like an export
	// with a different granularity than requested.
	ReportWarning(id string, params ...any)
	ReportDebug(msg string, params ...any)
	// ReportCount records a gauge-like value, ex. the windows a batch needs.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scoped(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scoped(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scoped(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scoped(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scoped(id), count)
}
