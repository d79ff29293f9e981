package output

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, false)

	require.NoError(t, p.Print(map[string]interface{}{"id": "u:cam:1", "count": json.Number("12")}))
	assert.Equal(t, "{\n  \"count\": 12,\n  \"id\": \"u:cam:1\"\n}\n", buf.String())
}

func TestPrinter_YAML(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatYAML, false)

	require.NoError(t, p.Print(map[string]interface{}{"displayName": "Alice"}))
	assert.Equal(t, "displayName: Alice\n", buf.String())
}

func TestPrinter_StringIsRaw(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, true)

	require.NoError(t, p.Print("plain text body"))
	assert.Equal(t, "plain text body\n", buf.String())
}

func TestPrinter_Color(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, true)

	require.NoError(t, p.Print(map[string]interface{}{"a": true}))
	assert.Contains(t, buf.String(), "\x1b[", "highlighted output carries escape codes")
	assert.Contains(t, buf.String(), "true")
}

func TestPrinter_UnknownFormatFallsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, "xml", false).Print([]int{1}))
	assert.Equal(t, "[\n  1\n]\n", buf.String())
}

func TestPrinter_Message(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, FormatJSON, false).Message("Re-indexing %s", "started")
	assert.Equal(t, "Re-indexing started\n", buf.String())
}

func TestColorEnabled(t *testing.T) {
	assert.True(t, ColorEnabled("always", nil))
	assert.False(t, ColorEnabled("never", os.Stdout))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ColorEnabled("auto", f), "regular files are not terminals")
}

func TestPrinter_KeepsQueryCharacters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(map[string]string{"q": "a&b<c>"}))
	assert.Equal(t, "{\n  \"q\": \"a&b<c>\"\n}\n", buf.String())
}
