package session

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"vitalwatch/internal/models"
	"vitalwatch/internal/vitals"
)

// ReadingExportHeader 读数导出表头（CSV 与 Excel 共用）
var ReadingExportHeader = []string{
	"Timestamp",
	"Heart Rate (BPM)",
	"SpO2 (%)",
	"Temperature (C)",
	"Stress Level",
	"GSR Value",
	"ECG Value",
}

// GenerateCSV 生成读数的 CSV 导出
func GenerateCSV(readings []models.Reading) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ReadingExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range readings {
		record := []string{
			r.Timestamp.Format(time.RFC3339),
			strconv.Itoa(r.HeartRate),
			strconv.Itoa(r.SpO2),
			fmt.Sprintf("%.1f", r.Temperature),
			strconv.Itoa(r.StressLevel),
			fmt.Sprintf("%.2f", r.GSRValue),
			fmt.Sprintf("%.2f", r.ECGValue),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateExcel 生成读数的 Excel 导出
// data 为空时只生成表头
func GenerateExcel(readings []models.Reading) ([]byte, error) {
	f := excelize.NewFile()
	// 注意：WriteTo 需要文件保持打开状态，这里不 defer Close

	sheetName := "Session Readings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 表头样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ReadingExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}
	}

	for row, r := range readings {
		values := []interface{}{
			r.Timestamp.Format(time.RFC3339),
			r.HeartRate,
			r.SpO2,
			r.Temperature,
			r.StressLevel,
			r.GSRValue,
			r.ECGValue,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value: %w", err)
			}
		}
	}

	// 列宽（时间戳列加宽）
	if err := f.SetColWidth(sheetName, "A", "A", 24); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "G", 16); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// reportTemplate 健康报告 HTML 模板
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Health Monitoring Report</title>
</head>
<body>
  <h1>Health Monitoring Report</h1>
  <p>Generated: {{.GeneratedAt}}</p>

  <h2>Patient Information</h2>
  <table>
    <tr><td>Name</td><td>{{.Profile.Name}}</td></tr>
    <tr><td>Age</td><td>{{.Profile.Age}}</td></tr>
    <tr><td>Baseline HR</td><td>{{.Profile.BaselineHR}} BPM</td></tr>
  </table>

  <h2>Health Score</h2>
  <p class="score {{.ScoreClass}}">{{.HealthScore}} / 100 ({{.ScoreLabel}})</p>

  <h2>Session Averages</h2>
  <table>
    <tr><td>Heart Rate</td><td>{{.Averages.HeartRate}} BPM</td></tr>
    <tr><td>SpO2</td><td>{{.Averages.SpO2}}%</td></tr>
    <tr><td>Temperature</td><td>{{.Averages.Temperature}} &deg;C</td></tr>
    <tr><td>Stress Level</td><td>{{.Averages.StressLevel}}/100</td></tr>
  </table>

  <h2>Latest Reading</h2>
  {{if .Latest}}
  <table>
    <tr><td>Heart Rate</td><td>{{.Latest.HeartRate}} BPM</td></tr>
    <tr><td>SpO2</td><td>{{.Latest.SpO2}}%</td></tr>
    <tr><td>Temperature</td><td>{{printf "%.1f" .Latest.Temperature}} &deg;C</td></tr>
    <tr><td>Stress Level</td><td>{{.Latest.StressLevel}}/100</td></tr>
  </table>
  {{else}}
  <p>No readings recorded.</p>
  {{end}}

  <p>Total readings: {{.ReadingCount}}</p>
</body>
</html>
`))

// reportData HTML 报告的模板数据
type reportData struct {
	GeneratedAt  string
	Profile      models.UserProfile
	HealthScore  int
	ScoreLabel   string
	ScoreClass   string
	Averages     Averages
	Latest       *models.Reading
	ReadingCount int
}

// GenerateReport 生成会话的 HTML 健康报告
func GenerateReport(profile models.UserProfile, readings []models.Reading, healthScore int) ([]byte, error) {
	data := reportData{
		GeneratedAt:  time.Now().Format("2006-01-02 15:04:05"),
		Profile:      profile,
		HealthScore:  healthScore,
		ScoreLabel:   vitals.ScoreLabel(healthScore),
		ScoreClass:   scoreClass(healthScore),
		Averages:     ComputeAverages(readings),
		ReadingCount: len(readings),
	}
	if len(readings) > 0 {
		data.Latest = &readings[0]
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func scoreClass(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "attention"
	}
}
