package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal(t *testing.T) {
	isTTY, width := Terminal(&bytes.Buffer{})
	assert.False(t, isTTY)
	assert.Zero(t, width)

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()
	isTTY, width = Terminal(f)
	assert.False(t, isTTY)
	assert.Zero(t, width)
}
