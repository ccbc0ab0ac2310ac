package domain

import (
	"fmt"
	"html"
	"strings"

	"github.com/paulmach/orb/geojson"
)

var popupFields = []struct {
	label string
	key   string
}{
	{"Accident ID", PropID},
	{"Severity", PropSeverity},
	{"Time", PropStartTime},
	{"Weather", PropWeatherCondition},
	{"Distance (mi)", PropDistanceMi},
	{"Description", PropDescription},
}

// PopupHTML renders the click popup for an accident feature. Missing or falsy
// properties show as N/A.
func PopupHTML(props geojson.Properties) string {
	var b strings.Builder
	for i, f := range popupFields {
		if i > 0 {
			b.WriteString("<br>\n")
		}
		v := propertyString(props[f.key])
		if v == "" || v == "0" || v == "false" {
			v = "N/A"
		}
		fmt.Fprintf(&b, "<strong>%s:</strong> %s", f.label, html.EscapeString(v))
	}
	return b.String()
}
