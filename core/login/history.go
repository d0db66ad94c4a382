package login

import (
	"encoding/json"

	"github.com/Youngger9765/duotopia-sub010/core"
)

// HistoryKey is the single storage entry holding the remembered teachers.
const HistoryKey = "login:teacher-history"

// historyLimit caps the remembered teachers; the oldest entry beyond it is evicted.
const historyLimit = 5

// History is a bounded, most-recently-used list of previously validated
// teachers kept in client-side durable storage. Storage failures are
// swallowed: the login flow must stay usable without persistence.
type History struct {
	kv  core.KeyValueStore
	key string
}

func NewHistory(kv core.KeyValueStore) *History {
	return &History{kv: kv, key: HistoryKey}
}

// Load returns the remembered teachers, most recent first.
// Missing, malformed or unreadable storage yields an empty list.
func (h *History) Load() []TeacherIdentity {
	if h == nil || h.kv == nil {
		return nil
	}
	raw, err := h.kv.Get(h.key)
	if err != nil {
		return nil
	}
	var entries []TeacherIdentity
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	if len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}
	return entries
}

// Record prepends the teacher with a fresh timestamp, dropping any previous
// entry with the same email (exact match) and truncating to the cap.
// The resulting list is persisted on a best-effort basis and returned.
func (h *History) Record(t TeacherIdentity) []TeacherIdentity {
	if t.LastUsed.IsZero() {
		t.LastUsed = nowFunc().UTC()
	}

	out := make([]TeacherIdentity, 0, historyLimit)
	out = append(out, t)
	for _, e := range h.Load() {
		if e.Email == t.Email {
			continue
		}
		out = append(out, e)
		if len(out) == historyLimit {
			break
		}
	}

	if h != nil && h.kv != nil {
		if raw, err := json.Marshal(out); err == nil {
			_ = h.kv.Set(h.key, raw)
		}
	}
	return out
}
