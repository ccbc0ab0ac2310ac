package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"one", 1, "#00FF00"},
		{"two", 2, "#FFFF00"},
		{"three", 3, "#FFA500"},
		{"four", 4, "#FF0000"},
		{"five", 5, "#999999"},
		{"nil", nil, "#999999"},
		{"decoded float", float64(2), "#FFFF00"},
		{"string", "3", "#FFA500"},
		{"json number", json.Number("4"), "#FF0000"},
		{"fractional", 2.5, "#999999"},
		{"empty string", "", "#999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityColor(tt.value))
		})
	}
}
