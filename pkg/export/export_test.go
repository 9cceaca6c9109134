package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Course", "Hours"},
		Rows: []map[string]string{
			{"Course": "Linear Algebra", "Hours": "4.50"},
			{"Course": "Databases", "Hours": "2.00"},
		},
		Footer: map[string]string{"Course": "Total", "Hours": "6.50"},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "Course,Hours", lines[0])
	require.Equal(t, "Linear Algebra,4.50", lines[1])
	require.Equal(t, "Total,6.50", lines[3])
}

func TestCSVExporterMissingColumnRendersEmpty(t *testing.T) {
	data := Dataset{
		Headers: []string{"Course", "Hours"},
		Rows:    []map[string]string{{"Course": "Databases"}},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	require.Contains(t, string(out), "Databases,\n")
}

func TestCSVExporterNoHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Course", "Hours"},
		Rows:    []map[string]string{{"Course": "Databases", "Hours": "2.00"}},
		Footer:  map[string]string{"Course": "Total", "Hours": "2.00"},
	}

	out, err := NewPDFExporter().Render(data, "Study Time")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFExporterNoHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "Study Time")
	require.Error(t, err)
}
