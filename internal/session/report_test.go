package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vitalwatch/internal/models"
)

func sampleReadings() []models.Reading {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.Reading{
		{HeartRate: 72, SpO2: 98, Temperature: 36.6, StressLevel: 25, GSRValue: 50.5, ECGValue: 12.34, Timestamp: ts},
		{HeartRate: 75, SpO2: 97, Temperature: 36.7, StressLevel: 30, GSRValue: 55.2, ECGValue: -8.1, Timestamp: ts.Add(-2 * time.Second)},
	}
}

func TestGenerateCSV(t *testing.T) {
	data, err := GenerateCSV(sampleReadings())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Heart Rate (BPM)")
	assert.Contains(t, lines[1], "72")
	assert.Contains(t, lines[1], "36.6")
}

func TestGenerateCSV_Empty(t *testing.T) {
	data, err := GenerateCSV(nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 1) // 仅表头
}

func TestGenerateExcel(t *testing.T) {
	data, err := GenerateExcel(sampleReadings())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(strings.NewReader(string(data)))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Session Readings")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ReadingExportHeader, rows[0])
	assert.Equal(t, "72", rows[1][1])
}

func TestGenerateReport(t *testing.T) {
	profile := models.UserProfile{
		Name:       "Test User",
		Age:        30,
		BaselineHR: 70,
	}

	data, err := GenerateReport(profile, sampleReadings(), 95)
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "Test User")
	assert.Contains(t, html, "95 / 100")
	assert.Contains(t, html, "Excellent")
	assert.Contains(t, html, "72 BPM")
}

func TestGenerateReport_NoReadings(t *testing.T) {
	data, err := GenerateReport(models.UserProfile{Name: "Empty"}, nil, 75)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No readings recorded.")
}
