// Package history owns the persisted ranking log: a single JSON document
// whose "history" array holds immutable run snapshots, newest first. The
// pipeline only ever prepends; existing entries are carried through as raw
// bytes and never re-encoded.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elonfeng/airace/pkg/rank"
)

// TimestampLayout is the entry timestamp format: ISO 8601 with the local
// UTC offset, matching the published document.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// PersistenceError reports a failed backup or commit. After one, the log
// on disk has been restored to its pre-run bytes (when a backup existed).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TeamAggregate summarizes one origin group inside an entry.
type TeamAggregate struct {
	Models       int     `json:"models"`
	TotalUnified float64 `json:"totalUnified"`
	AvgUnified   float64 `json:"avgUnified"`
}

// ModelRow is one scored model as persisted.
type ModelRow struct {
	Rank        int     `json:"rank"`
	Model       string  `json:"model"`
	Company     string  `json:"company,omitempty"`
	Link        string  `json:"link,omitempty"`
	Origin      string  `json:"origin"`
	Description string  `json:"description,omitempty"`
	Created     string  `json:"created,omitempty"`
	InputCost   string  `json:"inputCost"`
	OutputCost  string  `json:"outputCost"`
	AvgIQ       float64 `json:"avgIq"`
	Value       float64 `json:"value"`
	Unified     float64 `json:"unified"`

	// Scores carries the verbatim benchmark cells the run was derived
	// from, so every entry stays independently re-derivable.
	Scores map[string]string `json:"scores"`
}

// Entry is one complete, self-contained run snapshot.
type Entry struct {
	Timestamp  string                   `json:"timestamp"`
	Teams      map[string]TeamAggregate `json:"teams"`
	Benchmarks []string                 `json:"benchmarks"`
	Models     []ModelRow               `json:"models"`
}

// NewEntry builds a snapshot from a validated, already-ordered run.
func NewEntry(now time.Time, benchmarks []string, scored []rank.ScoredModel) Entry {
	teams := make(map[string]TeamAggregate)
	rows := make([]ModelRow, 0, len(scored))

	for i := range scored {
		s := &scored[i]
		rows = append(rows, ModelRow{
			Rank:        s.Rank,
			Model:       s.Name,
			Company:     s.Company,
			Link:        s.DetailURL,
			Origin:      s.Origin,
			Description: s.Description,
			Created:     s.Created,
			InputCost:   s.RawInputCost,
			OutputCost:  s.RawOutputCost,
			AvgIQ:       s.AvgIQ,
			Value:       s.Value,
			Unified:     s.Unified,
			Scores:      s.RawScores,
		})

		agg := teams[s.Origin]
		agg.Models++
		agg.TotalUnified += s.Unified
		teams[s.Origin] = agg
	}

	for origin, agg := range teams {
		agg.AvgUnified = agg.TotalUnified / float64(agg.Models)
		teams[origin] = agg
	}

	return Entry{
		Timestamp:  now.Format(TimestampLayout),
		Teams:      teams,
		Benchmarks: benchmarks,
		Models:     rows,
	}
}

// Document is the persisted log. Static presentation metadata written by
// other tools is passed through untouched; prior history entries are kept
// as raw bytes so a rewrite never reformats them.
type Document struct {
	Benchmarks []string
	History    []json.RawMessage
	Extra      map[string]json.RawMessage
}

func (d *Document) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if b, ok := raw["benchmarks"]; ok {
		if err := json.Unmarshal(b, &d.Benchmarks); err != nil {
			return fmt.Errorf("benchmarks field: %w", err)
		}
		delete(raw, "benchmarks")
	}
	if h, ok := raw["history"]; ok {
		if err := json.Unmarshal(h, &d.History); err != nil {
			return fmt.Errorf("history field: %w", err)
		}
		delete(raw, "history")
	}
	d.Extra = raw
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Extra)+2)
	for k, v := range d.Extra {
		out[k] = v
	}

	b, err := json.Marshal(d.Benchmarks)
	if err != nil {
		return nil, err
	}
	out["benchmarks"] = b

	h, err := json.Marshal(d.History)
	if err != nil {
		return nil, err
	}
	if d.History == nil {
		h = []byte("[]")
	}
	out["history"] = h

	// Deterministic key order.
	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make(orderedObject, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, keyedValue{k, out[k]})
	}
	return json.Marshal(ordered)
}

type keyedValue struct {
	key string
	val json.RawMessage
}

type orderedObject []keyedValue

func (o orderedObject) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, kv := range o {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(kv.key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, kv.val...)
	}
	return append(buf, '}'), nil
}

// Writer performs the backed-up, atomic, append-only log update.
type Writer struct {
	Path string

	log *logrus.Entry
	now func() time.Time
}

// NewWriter creates a writer for the log at path.
func NewWriter(path string, log *logrus.Entry) *Writer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Writer{Path: path, log: log, now: time.Now}
}

// Append prepends entry to the log. The sequence is: read current bytes,
// write a timestamped backup, marshal the new document to a temp file,
// rename into place. Any failure after the backup restores the original
// bytes and reports PersistenceError; a partial file is never left as the
// final state.
func (w *Writer) Append(entry Entry) error {
	prior, err := os.ReadFile(w.Path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return &PersistenceError{Op: "read log", Err: err}
	}

	doc := Document{}
	if exists {
		if err := json.Unmarshal(prior, &doc); err != nil {
			return &PersistenceError{Op: "parse log", Err: err}
		}
	}

	var backupPath string
	if exists {
		backupPath = fmt.Sprintf("%s.backup-%s.json", trimJSON(w.Path), w.now().UTC().Format("2006-01-02T150405"))
		if err := os.WriteFile(backupPath, prior, 0o644); err != nil {
			return &PersistenceError{Op: "write backup", Err: err}
		}
		w.log.WithField("backup", backupPath).Info("created history backup")
	}

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return w.rollback(prior, exists, &PersistenceError{Op: "marshal entry", Err: err})
	}

	doc.History = append([]json.RawMessage{entryJSON}, doc.History...)
	doc.Benchmarks = entry.Benchmarks

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return w.rollback(prior, exists, &PersistenceError{Op: "marshal document", Err: err})
	}
	data = append(data, '\n')

	if err := w.commit(data); err != nil {
		return w.rollback(prior, exists, &PersistenceError{Op: "commit", Err: err})
	}

	w.log.WithFields(logrus.Fields{
		"path":    w.Path,
		"entries": len(doc.History),
	}).Info("prepended history entry")
	return nil
}

// commit writes data next to the log and renames it into place so the
// final state is all-or-nothing.
func (w *Writer) commit(data []byte) error {
	tmp := w.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, w.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// rollback restores the pre-run bytes after a post-backup failure.
func (w *Writer) rollback(prior []byte, existed bool, cause error) error {
	if existed {
		if err := os.WriteFile(w.Path, prior, 0o644); err != nil {
			w.log.WithError(err).Error("history rollback failed")
		}
	}
	return cause
}

func trimJSON(path string) string {
	const ext = ".json"
	if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
		return path[:len(path)-len(ext)]
	}
	return path
}
