package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/airace/pkg/rank"
)

func sampleScored() []rank.ScoredModel {
	return []rank.ScoredModel{
		{
			Rank: 1, Name: "Alpha", Origin: "US", Index: 0,
			RawInputCost: "$1.00", RawOutputCost: "$2.00",
			AvgIQ: 90, Value: 30, Unified: 1000,
			Scores:    map[string]float64{"GPQA": 100},
			RawScores: map[string]string{"GPQA": "55.1"},
		},
		{
			Rank: 2, Name: "Beta", Origin: "CN", Index: 1,
			RawInputCost: "$0.50", RawOutputCost: "$1.00",
			AvgIQ: 80, Value: 53.3, Unified: 800,
			Scores:    map[string]float64{"GPQA": 0},
			RawScores: map[string]string{"GPQA": "41.0"},
		},
	}
}

func fixedTime() time.Time {
	return time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
}

func TestNewEntry_AggregatesTeams(t *testing.T) {
	entry := NewEntry(fixedTime(), []string{"GPQA"}, sampleScored())

	require.Len(t, entry.Models, 2)
	assert.Equal(t, "Alpha", entry.Models[0].Model)
	assert.Equal(t, "$1.00", entry.Models[0].InputCost)
	assert.Equal(t, "55.1", entry.Models[0].Scores["GPQA"])

	us := entry.Teams["US"]
	assert.Equal(t, 1, us.Models)
	assert.Equal(t, 1000.0, us.TotalUnified)
	assert.Equal(t, 1000.0, us.AvgUnified)
	cn := entry.Teams["CN"]
	assert.Equal(t, 800.0, cn.AvgUnified)
}

func TestAppend_CreatesNewLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	w := NewWriter(path, nil)

	entry := NewEntry(fixedTime(), []string{"GPQA"}, sampleScored())
	require.NoError(t, w.Append(entry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"GPQA"}, doc.Benchmarks)
	require.Len(t, doc.History, 1)
}

func TestAppend_PrependsAndPreservesPriorEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	w := NewWriter(path, nil)

	first := NewEntry(fixedTime(), []string{"GPQA"}, sampleScored())
	require.NoError(t, w.Append(first))

	second := NewEntry(fixedTime().Add(24*time.Hour), []string{"GPQA", "MMLU"}, sampleScored())
	require.NoError(t, w.Append(second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.History, 2)

	var newest, oldest Entry
	require.NoError(t, json.Unmarshal(doc.History[0], &newest))
	require.NoError(t, json.Unmarshal(doc.History[1], &oldest))
	assert.Equal(t, second.Timestamp, newest.Timestamp)
	assert.Equal(t, first.Timestamp, oldest.Timestamp)
	// Document-level benchmark list follows the latest run.
	assert.Equal(t, []string{"GPQA", "MMLU"}, doc.Benchmarks)
}

func TestAppend_PreservesStaticMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.json")
	seed := `{"title": "The AI Race", "subtitle": "US vs CN", "benchmarks": [], "history": []}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	w := NewWriter(path, nil)
	require.NoError(t, w.Append(NewEntry(fixedTime(), []string{"GPQA"}, sampleScored())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"The AI Race"`, string(raw["title"]))
	assert.JSONEq(t, `"US vs CN"`, string(raw["subtitle"]))
}

func TestAppend_WritesTimestampedBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.json")
	seed := `{"benchmarks": [], "history": []}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	w := NewWriter(path, nil)
	w.now = fixedTime
	require.NoError(t, w.Append(NewEntry(fixedTime(), []string{"GPQA"}, sampleScored())))

	backup := filepath.Join(dir, "models.backup-2026-03-15T103000.json")
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, seed, string(data), "backup must hold the pre-run bytes verbatim")
}

func TestAppend_CommitFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.json")
	seed := `{"benchmarks": ["GPQA"], "history": []}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	// A directory squatting on the temp path makes the commit write fail
	// after the backup has already been taken.
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	w := NewWriter(path, nil)
	err := w.Append(NewEntry(fixedTime(), []string{"GPQA"}, sampleScored()))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "commit", perr.Op)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, seed, string(data), "log must be byte-identical to its pre-run state")
}

func TestAppend_CorruptLogRefusedBeforeBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	w := NewWriter(path, nil)
	err := w.Append(NewEntry(fixedTime(), []string{"GPQA"}, sampleScored()))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "parse log", perr.Op)
}
