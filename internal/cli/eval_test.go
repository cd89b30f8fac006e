package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verist/cdl/internal/journal"
)

func TestEval_Pass(t *testing.T) {
	def := writeFile(t, "def.json",
		`{"domain": "financial", "field": "amount", "operator": "lt", "value": 5000, "message": "too large"}`)
	rec := writeFile(t, "rec.json", `{"amount": 1200}`)

	out, err := execute(t, "eval", def, rec)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS C_")
}

func TestEval_FailExitsOne(t *testing.T) {
	def := writeFile(t, "def.json",
		`{"domain": "financial", "field": "amount", "operator": "lt", "value": 5000, "message": "too large"}`)
	rec := writeFile(t, "rec.json", `{"amount": 9000}`)

	out, err := execute(t, "eval", def, rec)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL C_")
	assert.Contains(t, out, "too large")
}

func TestEval_JSONVerdict(t *testing.T) {
	def := writeFile(t, "def.json", `{"field": "amount", "operator": "lt", "value": 5000}`)
	rec := writeFile(t, "rec.json", `{"amount": 100}`)

	out, err := execute(t, "--format", "json", "eval", def, rec)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["passed"])
	assert.NotEmpty(t, data["constraint_id"])
	assert.NotEmpty(t, data["fingerprint"])
}

func TestEval_YAMLInputs(t *testing.T) {
	def := writeFile(t, "def.yaml", "field: category\noperator: ne\nvalue: blocked\n")
	rec := writeFile(t, "rec.yaml", "category: allowed\n")

	out, err := execute(t, "eval", def, rec)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
}

func TestEval_BadRecord(t *testing.T) {
	def := writeFile(t, "def.json", `{"field": "x", "operator": "exists"}`)
	rec := writeFile(t, "rec.json", `not json at all`)

	out, err := execute(t, "eval", def, rec)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeLoad)
}

func TestEval_JournalsVerdict(t *testing.T) {
	def := writeFile(t, "def.json",
		`{"field": "amount", "operator": "lt", "value": 5000, "message": "too large"}`)
	rec := writeFile(t, "rec.json", `{"amount": 9000}`)
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	_, err := execute(t, "eval", def, rec, "--journal", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	verdicts, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.False(t, verdicts[0].Passed)
	assert.Equal(t, "too large", verdicts[0].Message)
	assert.NotEmpty(t, verdicts[0].RunToken)
	assert.NotEmpty(t, verdicts[0].Fingerprint)
}

func TestHistory_ListsVerdicts(t *testing.T) {
	def := writeFile(t, "def.json", `{"field": "amount", "operator": "lt", "value": 5000}`)
	pass := writeFile(t, "pass.json", `{"amount": 10}`)
	fail := writeFile(t, "fail.json", `{"amount": 9000}`)
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	_, err := execute(t, "eval", def, pass, "--journal", dbPath)
	require.NoError(t, err)
	_, err = execute(t, "eval", def, fail, "--journal", dbPath)
	require.Error(t, err)

	out, err := execute(t, "history", "--journal", dbPath)
	require.NoError(t, err)
	// Newest first.
	assert.Regexp(t, `(?s)FAIL.*PASS`, out)
	assert.Contains(t, out, "run=")
}

func TestHistory_ByRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, j.Append(context.Background(), journal.Verdict{
		RunToken: "run-a", ConstraintID: "C_AAAA0001", Passed: true,
		Timestamp: 1700000000000, Fingerprint: "FP1",
	}))
	require.NoError(t, j.Append(context.Background(), journal.Verdict{
		RunToken: "run-b", ConstraintID: "C_AAAA0002", Passed: true,
		Timestamp: 1700000001000, Fingerprint: "FP2",
	}))
	require.NoError(t, j.Close())

	out, err := execute(t, "history", "--journal", dbPath, "--run", "run-a")
	require.NoError(t, err)
	assert.Contains(t, out, "C_AAAA0001")
	assert.NotContains(t, out, "C_AAAA0002")
}

func TestHistory_EmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	out, err := execute(t, "history", "--journal", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no verdicts")
}

func TestHistory_RequiresJournalFlag(t *testing.T) {
	_, err := execute(t, "history")
	require.Error(t, err)
}
