package core

import (
	"fmt"
	"net/url"
	"strings"
)

// Query describes one export request.
type Query struct {
	Terms    []string
	Geo      string
	Category string
	Property string
	Timezone string
	// Month and Year are the first month of the window.
	Month int
	Year  int
	// Span is the window length as the site spells it, ex. "2m" or "6m".
	Span string
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Path returns the export path and query string, relative to the trends
// base url.
func (q Query) Path() string {
	terms := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		terms[i] = escape(t)
	}

	var b strings.Builder
	b.WriteString("/trends/trendsReport?&q=")
	b.WriteString(strings.Join(terms, "%2C"))
	b.WriteString("&geo=" + escape(q.Geo))
	b.WriteString("&cat=" + escape(q.Category))
	b.WriteString("&gprop=" + escape(q.Property))
	if q.Timezone != "" {
		b.WriteString("&tz=" + escape(q.Timezone))
	}
	b.WriteString("&cmpt=q&content=1&export=1")
	b.WriteString(fmt.Sprintf("&date=%d%%2F%d%%20%s", q.Month, q.Year, escape(q.Span)))
	return b.String()
}
