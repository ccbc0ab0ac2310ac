package domain

import (
	"encoding/json"
	"strconv"
)

// Severity palette shared by the unclustered point and close-up circle layers.
const (
	ColorSeverity1       = "#00FF00"
	ColorSeverity2       = "#FFFF00"
	ColorSeverity3       = "#FFA500"
	ColorSeverity4       = "#FF0000"
	ColorSeverityUnknown = "#999999"
)

// SeverityColors maps the string form of a severity to its marker colour, in
// ascending severity order.
var SeverityColors = []struct {
	Level string
	Color string
}{
	{"1", ColorSeverity1},
	{"2", ColorSeverity2},
	{"3", ColorSeverity3},
	{"4", ColorSeverity4},
}

// SeverityColor returns the marker colour for a severity property value.
// Values are compared by string form, so 2, 2.0 and "2" all map to yellow.
// Anything outside 1-4, including nil, is gray.
func SeverityColor(v any) string {
	s := propertyString(v)
	for _, sc := range SeverityColors {
		if sc.Level == s {
			return sc.Color
		}
	}
	return ColorSeverityUnknown
}

// propertyString renders a decoded JSON property the way a map expression's
// to-string would.
func propertyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
