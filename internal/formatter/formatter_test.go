package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"stormscrape/internal/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = &extractor.Result{
	Headers: []string{"Stormname", "Dates active", "Areas affected", "Deaths"},
	Records: []extractor.Record{
		{StormName: "Amy", DatesActive: "June 27 – July 4", AreasAffected: "Atlantic", Deaths: "1"},
		{StormName: "Eloise", DatesActive: "September 13 – 24", AreasAffected: "Puerto Rico, Florida", Deaths: "80"},
	},
}

func TestFormatText(t *testing.T) {
	out, err := Format(sample, "text")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Stormname")
	assert.Contains(t, lines[0], "Dates active")
	assert.Contains(t, lines[2], "Puerto Rico, Florida")
	assert.NotContains(t, out, "|")
	assert.NotContains(t, out, "STORMNAME")
}

func TestFormatMarkdown(t *testing.T) {
	out, err := Format(sample, "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "|"))
	assert.Contains(t, out, "Eloise")
}

func TestFormatCSV(t *testing.T) {
	out, err := Format(sample, "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Stormname,Dates active,Areas affected,Deaths")
	assert.Contains(t, out, `"Puerto Rico, Florida"`)
	assert.NotContains(t, out, `\,`)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Puerto Rico, Florida", rows[2][2])
}

func TestFormatJSON(t *testing.T) {
	out, err := Format(sample, "json")
	require.NoError(t, err)

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Eloise", decoded[1]["Stormname"])
	assert.Equal(t, "80", decoded[1]["Deaths"])
}

func TestFormatUnsupported(t *testing.T) {
	_, err := Format(sample, "yaml")
	assert.ErrorContains(t, err, "unsupported data format")
}

func TestHeaderFallback(t *testing.T) {
	out := ToText(&extractor.Result{Records: []extractor.Record{{StormName: "Amy"}}})
	assert.Contains(t, out, "storm name")
	assert.Contains(t, out, "areas affected")
}

func TestPreview(t *testing.T) {
	out := Preview([]string{"a", "b"}, [][]string{{"1", "2"}})
	assert.Contains(t, out, "│")
	assert.Contains(t, out, "1")
}
