package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	return Report{
		Title:  "Analysis Report",
		Fields: []Field{{Label: "Topic", Value: "Café culture"}, {Label: "Plagiarism score", Value: "12.50"}},
		Tables: []Table{{
			Title:   "Suggested sources",
			Headers: []string{"Title", "Authors", "Year"},
			Rows:    [][]string{{"Attention Is All You Need", "Vaswani et al.", "2017"}, {"Short row"}},
		}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleReport())
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"field", "value"}, records[0])
	assert.Equal(t, []string{"Topic", "Café culture"}, records[1])
	assert.Equal(t, []string{"Suggested sources"}, records[3])
	assert.Equal(t, []string{"Title", "Authors", "Year"}, records[4])
	assert.Equal(t, []string{"Short row", "", ""}, records[6])
}

func TestCSVExporterRejectsHeaderlessTable(t *testing.T) {
	_, err := NewCSVExporter().Render(Report{Tables: []Table{{Title: "empty"}}})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	report := sampleReport()
	report.Tables[0].Rows = append(report.Tables[0].Rows, []string{strings.Repeat("very long title ", 20), "x", "y"})

	out, err := NewPDFExporter().Render(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
