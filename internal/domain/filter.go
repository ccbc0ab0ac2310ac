package domain

import (
	"net/url"
	"strings"
)

// QueryPath is the backend endpoint serving accident GeoJSON.
const QueryPath = "/geojson"

// ViewMode selects how accidents are drawn.
type ViewMode string

const (
	ViewCluster ViewMode = "cluster"
	ViewHeatmap ViewMode = "heatmap"
)

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	return m == ViewCluster || m == ViewHeatmap
}

// FilterState is the client-side filter selection. Severity and the years hold
// the raw control values; an empty string (or "0") means the control is unset.
type FilterState struct {
	Location  string
	Severity  string
	StartYear string
	EndYear   string
	ViewMode  ViewMode
}

// BuildQuery turns filter state into the backend query string. The location is
// always present; the other parameters only when their control is set.
func BuildQuery(f FilterState) string {
	var b strings.Builder
	b.WriteString(QueryPath)
	b.WriteString("?location=")
	b.WriteString(EncodeURIComponent(f.Location))

	if isSet(f.Severity) {
		b.WriteString("&severity=")
		b.WriteString(EncodeURIComponent(f.Severity))
	}
	if isSet(f.StartYear) {
		b.WriteString("&start_date=")
		b.WriteString(EncodeURIComponent(f.StartYear + "-01-01"))
	}
	if isSet(f.EndYear) {
		b.WriteString("&end_date=")
		b.WriteString(EncodeURIComponent(f.EndYear + "-12-31"))
	}
	return b.String()
}

func isSet(v string) bool {
	return v != "" && v != "0"
}

// componentUnescapes restores the characters encodeURIComponent leaves alone
// but url.QueryEscape escapes.
var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s like the ECMAScript function of the same name.
func EncodeURIComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}
