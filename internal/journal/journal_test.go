package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "verdicts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func sampleVerdict(run, id string, passed bool, ts int64) Verdict {
	msg := ""
	if !passed {
		msg = "limit exceeded"
	}
	return Verdict{
		RunToken:     run,
		ConstraintID: id,
		Passed:       passed,
		Message:      msg,
		Timestamp:    ts,
		Fingerprint:  "FP" + id,
	}
}

func TestJournal_AppendAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, sampleVerdict("run-1", "C_AAAA0001", true, 1000)))
	require.NoError(t, j.Append(ctx, sampleVerdict("run-1", "C_AAAA0002", false, 2000)))
	require.NoError(t, j.Append(ctx, sampleVerdict("run-2", "C_AAAA0003", true, 3000)))

	recent, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, "C_AAAA0003", recent[0].ConstraintID)
	assert.Equal(t, "C_AAAA0002", recent[1].ConstraintID)
	assert.False(t, recent[1].Passed)
	assert.Equal(t, "limit exceeded", recent[1].Message)
}

func TestJournal_ByRun(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, sampleVerdict("run-1", "C_AAAA0001", true, 1000)))
	require.NoError(t, j.Append(ctx, sampleVerdict("run-2", "C_AAAA0002", true, 2000)))
	require.NoError(t, j.Append(ctx, sampleVerdict("run-1", "C_AAAA0003", false, 3000)))

	verdicts, err := j.ByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, verdicts, 2)

	// Append order.
	assert.Equal(t, "C_AAAA0001", verdicts[0].ConstraintID)
	assert.Equal(t, "C_AAAA0003", verdicts[1].ConstraintID)
	for _, v := range verdicts {
		assert.Equal(t, "run-1", v.RunToken)
	}

	empty, err := j.ByRun(ctx, "run-unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestJournal_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, sampleVerdict("run-1", "C_AAAA0001", true, 1000)))
	require.NoError(t, j.Close())

	// Reopening keeps existing rows.
	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	recent, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
