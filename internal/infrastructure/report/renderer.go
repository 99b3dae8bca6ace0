// Package report renders scored events and dataset analyses as
// human-readable documents. Only these renderers stamp a generation time.
package report

import "time"

// DefaultHTMLFile is the event report file name used when none is given.
const DefaultHTMLFile = "risk_report.html"

// Renderer produces HTML event reports and plain-text dataset reports.
type Renderer struct {
	now func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the generation time source.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates a Renderer stamped with the current UTC time.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// generatedAt formats the generation time as an ISO 8601 UTC timestamp with
// a trailing Z. Microseconds are printed only when non-zero.
func (r *Renderer) generatedAt() string {
	t := r.now().UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format("2006-01-02T15:04:05") + "Z"
	}
	return t.Format("2006-01-02T15:04:05.000000") + "Z"
}
