package chart

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vibecharting/chartsafe/internal/results"
)

func TestAssessSuitability_DowngradesMissing3DAxis(t *testing.T) {
	rows := []results.Row{{"X": 1.0, "Y": 2.0}}

	s := AssessSuitability(Scatter3D, rows, "X", "Y", "", "", "")

	assert.Equal(t, Scatter, s.Recommended)
	assert.NotEmpty(t, s.ReasonNotBest)
	assert.NotEmpty(t, s.Warnings)
}

func TestAssessSuitability_Keeps3DWhenZPresent(t *testing.T) {
	rows := []results.Row{{"X": 1.0, "Y": 2.0, "Z": 3.0}}

	s := AssessSuitability(Scatter3D, rows, "X", "Y", "Z", "", "")

	assert.Equal(t, Scatter3D, s.Recommended)
	assert.Empty(t, s.ReasonNotBest)
	assert.Empty(t, s.Warnings)
}

func TestAssessSuitability_DowngradesBubbleWithoutSize(t *testing.T) {
	rows := []results.Row{{"X": 1.0, "Y": 2.0}}

	s := AssessSuitability(Bubble, rows, "X", "Y", "", "", "")

	assert.Equal(t, Scatter, s.Recommended)
	assert.NotEmpty(t, s.ReasonNotBest)
}

func TestAssessSuitability_WarnsOnCrowdedPie(t *testing.T) {
	var rows []results.Row
	for i := 0; i < pieReadabilityLimit+2; i++ {
		rows = append(rows, results.Row{"Region": fmt.Sprintf("R%d", i), "Amount": 1.0})
	}

	s := AssessSuitability(Pie, rows, "Region", "Amount", "", "", "")

	// Readability only warns; the requested type stands.
	assert.Equal(t, Pie, s.Recommended)
	assert.NotEmpty(t, s.Warnings)
}

func TestAssessSuitability_SuggestsStackedBar(t *testing.T) {
	rows := []results.Row{
		{"Region": "East", "Amount": 1.0, "Stage": "Won"},
		{"Region": "West", "Amount": 2.0, "Stage": "Lost"},
	}

	s := AssessSuitability(Bar, rows, "Region", "Amount", "", "", "Stage")

	assert.Equal(t, Bar, s.Recommended)
	assert.NotEmpty(t, s.Warnings)
}

func TestAssessSuitability_CleanRequestPassesSilently(t *testing.T) {
	rows := []results.Row{{"Region": "East", "Amount": 1.0}}

	s := AssessSuitability(Bar, rows, "Region", "Amount", "", "", "")

	assert.Equal(t, Bar, s.Recommended)
	assert.Empty(t, s.ReasonNotBest)
	assert.Empty(t, s.Warnings)
}
