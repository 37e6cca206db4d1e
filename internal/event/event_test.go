package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "ScanStarted", typ: ScanStarted},
		{want: "ScanComplete", typ: ScanComplete},
		{want: "FileCopied", typ: FileCopied},
		{want: "FileCopiedNoMetadata", typ: FileCopiedNoMetadata},
		{want: "FileSkipped", typ: FileSkipped},
		{want: "FileFailed", typ: FileFailed},
		{want: "DirUnreadable", typ: DirUnreadable},
		{want: "VerifyStarted", typ: VerifyStarted},
		{want: "VerifyMissing", typ: VerifyMissing},
		{want: "VerifyMismatch", typ: VerifyMismatch},
		{want: "VerifyComplete", typ: VerifyComplete},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(-1).String())
}

func TestEventZeroValue(t *testing.T) {
	var e Event
	assert.Equal(t, Type(0), e.Type)
	assert.True(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Path)
	assert.Empty(t, e.Readable)
	assert.Zero(t, e.Index)
	assert.Zero(t, e.Total)
	require.NoError(t, e.Error)
}

func TestEventFields(t *testing.T) {
	now := time.Now()
	e := Event{
		Type:      FileCopied,
		Timestamp: now,
		Path:      "dir/file.txt",
		Readable:  "2020-01-11T08:00:00.0000000Z",
		Size:      1024,
		Index:     3,
		Total:     10,
	}
	assert.Equal(t, FileCopied, e.Type)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "dir/file.txt", e.Path)
	assert.Equal(t, int64(1024), e.Size)
	assert.Equal(t, 3, e.Index)
	assert.Equal(t, 10, e.Total)
}
