package shell

import (
	"bytes"
	stderrors "errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockPrompter(t *testing.T) {
	m := NewMockPrompter("first", "second")

	got, err := m.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
	got, _ = m.Password("Once more: ")
	assert.Equal(t, "second", got)
	got, _ = m.Password("Password: ")
	assert.Equal(t, "", got, "exhausted responses read as empty")

	assert.Equal(t, []string{"Password: ", "Once more: ", "Password: "}, m.Prompts)
	assert.Equal(t, 3, m.CallCount())

	m.Error = stderrors.New("closed")
	_, err = m.Password("Password: ")
	assert.Error(t, err)
}

func TestTerminalPrompter_ReadsLinesFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	_, err = w.WriteString("secret\r\nagain\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var out bytes.Buffer
	p := NewTerminalPrompterWithIO(r, &out)

	got, err := p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	got, err = p.Password("Once more: ")
	require.NoError(t, err)
	assert.Equal(t, "again", got)

	got, err = p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "", got, "EOF reads as an empty password")

	assert.Equal(t, "Password: Once more: Password: ", out.String())
}
