package telemetry

import (
	"fmt"
)

// API is how every component in fbwatch logs and counts things. Keeping it
// behind an interface lets tests assert on what a component reported.
//
// Report ids name the component and method that reported, e.g.
// `fetcher.fetch-timeline`. They are lowercase, with underscores inside a
// component name and a dash between words of a method. Details such as urls or
// user ids go into params, never into the id.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a failure that needs someone to look at it.
	ReportBroken(id string, params ...any)
	// ReportWarning reports something unexpected that was recovered from.
	ReportWarning(id string, params ...any)
	// ReportDebug reports tracing information, dropped unless --debug is set.
	ReportDebug(msg string, params ...any)
	// ReportCount reports a gauge reading, readings are points over time and
	// are never summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id it reports with a namespace, usually the name of
// the package or struct that owns it.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
