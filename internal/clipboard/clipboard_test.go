package clipboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRejectsEmpty(t *testing.T) {
	err := Write("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestRunReadCmd(t *testing.T) {
	out, err := runReadCmd("echo", []string{"-n", "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRunReadCmdMissingBinary(t *testing.T) {
	_, err := runReadCmd("frisk-no-such-command", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frisk-no-such-command")
}

func TestRunWriteCmd(t *testing.T) {
	// cat consumes stdin and exits zero; that is all Write needs.
	err := runWriteCmd("cat", nil, strings.Repeat("x", 1024))
	assert.NoError(t, err)
}

func TestRunWriteCmdFailure(t *testing.T) {
	err := runWriteCmd("false", nil, "content")
	assert.Error(t, err)
}
