// Package trace renders execution logs into a deterministic canonical form
// for golden-file comparison and CLI output.
//
// The canonical form is wall-clock-free: entries carry the log sequence
// number instead of timestamps, and aliases are NFC-normalized so the same
// logical trace always serializes to the same bytes.
package trace

import (
	"encoding/json"

	"golang.org/x/text/unicode/norm"

	"github.com/verdict-eval/verdict/condition"
)

// Snapshot is a deterministic rendering of one evaluation's execution log.
type Snapshot struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Entry is one log outcome, stripped of everything nondeterministic.
type Entry struct {
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	Alias     string `json:"alias"`
	Matched   *bool  `json:"matched,omitempty"`
	Error     string `json:"error,omitempty"`
	Async     bool   `json:"async,omitempty"`
	DelayMS   int64  `json:"delay_ms,omitempty"`
	TimeoutMS int64  `json:"timeout_ms,omitempty"`
}

// NewSnapshot converts a context log (as returned by Context.Log) into a
// snapshot named name. Entries keep their completion order.
func NewSnapshot(name string, log []condition.Outcome) Snapshot {
	entries := make([]Entry, len(log))
	for i, o := range log {
		e := Entry{
			Seq:       o.Seq,
			Kind:      o.Kind.String(),
			Alias:     norm.NFC.String(o.Alias),
			Async:     o.Async,
			DelayMS:   o.Delay.Milliseconds(),
			TimeoutMS: o.Timeout.Milliseconds(),
		}
		if o.Kind == condition.OutcomeCompleted {
			matched := o.Matched
			e.Matched = &matched
		} else if o.Err != nil {
			e.Error = o.Err.Error()
		}
		entries[i] = e
	}
	return Snapshot{Name: norm.NFC.String(name), Entries: entries}
}

// MarshalCanonical serializes the snapshot as indented JSON with a trailing
// newline. Field order is fixed by the struct layout, so equal snapshots
// always produce equal bytes.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
