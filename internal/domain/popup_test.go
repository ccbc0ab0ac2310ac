package domain

import (
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
)

func TestPopupHTML(t *testing.T) {
	props := geojson.Properties{
		"id":                "A-1",
		"severity":          float64(3),
		"start_time":        "2019-03-05 17:41:00",
		"weather_condition": "Light Rain",
		"distance_mi":       0.25,
		"description":       "Lane blocked <I-10>",
	}

	got := PopupHTML(props)

	assert.Contains(t, got, "<strong>Accident ID:</strong> A-1")
	assert.Contains(t, got, "<strong>Severity:</strong> 3")
	assert.Contains(t, got, "<strong>Weather:</strong> Light Rain")
	assert.Contains(t, got, "<strong>Distance (mi):</strong> 0.25")
	assert.Contains(t, got, "Lane blocked &lt;I-10&gt;")
}

func TestPopupHTML_MissingFieldsShowNA(t *testing.T) {
	got := PopupHTML(geojson.Properties{"id": "A-2", "distance_mi": float64(0)})

	assert.Contains(t, got, "<strong>Accident ID:</strong> A-2")
	assert.Contains(t, got, "<strong>Severity:</strong> N/A")
	assert.Contains(t, got, "<strong>Distance (mi):</strong> N/A")
	assert.Contains(t, got, "<strong>Description:</strong> N/A")
}
