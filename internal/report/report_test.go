package report

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_Record(t *testing.T) {
	s := NewStats()

	s.RecordInserted()
	s.RecordInserted()
	s.RecordDuplicate()
	s.RecordFailure("bad.txt", errors.New("empty file"))

	assert.Equal(t, 2, s.Inserted)
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 4, s.TotalSeen)
	require.Len(t, s.FileErrors, 1)
	assert.Equal(t, "bad.txt", s.FileErrors[0].Name)
	assert.Equal(t, "empty file", s.FileErrors[0].Reason)
}

func TestStats_RecordFailure_NilError(t *testing.T) {
	s := NewStats()
	s.RecordFailure("odd.txt", nil)

	require.Len(t, s.FileErrors, 1)
	assert.Equal(t, "unknown error", s.FileErrors[0].Reason)
}

func TestStats_Throughput(t *testing.T) {
	s := NewStats()
	s.Started = time.Now().Add(-2 * time.Second)
	s.Inserted = 10

	tp := s.Throughput()
	assert.InDelta(t, 5.0, tp, 0.5)
}

func TestStats_Throughput_NoInserts(t *testing.T) {
	s := NewStats()
	s.Started = time.Now().Add(-time.Second)
	assert.Equal(t, 0.0, s.Throughput())
}

func TestWriteSummary(t *testing.T) {
	s := NewStats()
	s.Started = time.Now().Add(-time.Second)
	s.Inserted = 3
	s.Duplicates = 1
	s.Failed = 2
	s.TotalSeen = 6
	s.FileErrors = []FileError{
		{Name: "a.txt", Reason: "empty"},
		{Name: "b.txt", Reason: "embed failed"},
	}

	var buf bytes.Buffer
	s.WriteSummary(&buf, 42)
	out := buf.String()

	assert.Contains(t, out, "Documents inserted:    3")
	assert.Contains(t, out, "Duplicates skipped:    1")
	assert.Contains(t, out, "Errors:                2")
	assert.Contains(t, out, "Documents in collection: 42")
	assert.Contains(t, out, "a.txt: empty")
	assert.Contains(t, out, "b.txt: embed failed")
	assert.NotContains(t, out, "more")
}

func TestWriteSummary_CapsErrorList(t *testing.T) {
	s := NewStats()
	for i := 0; i < 8; i++ {
		s.RecordFailure(fmt.Sprintf("f%d.txt", i), errors.New("boom"))
	}

	var buf bytes.Buffer
	s.WriteSummary(&buf, 0)
	out := buf.String()

	assert.Contains(t, out, "f0.txt: boom")
	assert.Contains(t, out, "f4.txt: boom")
	assert.NotContains(t, out, "f5.txt")
	assert.Contains(t, out, "... and 3 more")
}

func TestWriteSummary_UnknownCollectionCount(t *testing.T) {
	s := NewStats()

	var buf bytes.Buffer
	s.WriteSummary(&buf, -1)

	assert.NotContains(t, buf.String(), "Documents in collection")
}
