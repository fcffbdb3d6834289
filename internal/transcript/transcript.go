// Package transcript holds the ordered chat log shown next to the editor.
//
// A Transcript is not safe for concurrent use. It is owned by the core
// service, which serializes every mutation through its event loop.
package transcript

import (
	"time"

	"github.com/Rorical/CodeAssist/internal/models"
)

// ClearedNotice is the system message left behind by Clear.
const ClearedNotice = "Chat cleared. Write some code and pick an action to get AI assistance."

type Transcript struct {
	messages []models.Message
	lastID   int64
	now      func() time.Time
}

func New() *Transcript {
	return NewWithClock(time.Now)
}

// NewWithClock creates a transcript stamping messages with the given clock.
func NewWithClock(now func() time.Time) *Transcript {
	return &Transcript{
		messages: make([]models.Message, 0),
		now:      now,
	}
}

// nextID derives the id from the millisecond clock and falls back to
// lastID+1 whenever the clock has not moved past the previous id.
func (t *Transcript) nextID(ts time.Time) int64 {
	id := ts.UnixMilli()
	if id <= t.lastID {
		id = t.lastID + 1
	}
	t.lastID = id
	return id
}

// Append stores msg with a fresh id and returns the stored copy. A zero
// Timestamp is filled from the clock; any caller supplied id is replaced.
func (t *Transcript) Append(msg models.Message) models.Message {
	ts := t.now()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = ts
	}
	msg.ID = t.nextID(ts)
	if !msg.HasCode {
		msg.ExtractedCode = ""
	}
	t.messages = append(t.messages, msg)
	return msg
}

func (t *Transcript) AppendSystem(content string) models.Message {
	return t.Append(models.Message{Role: models.RoleSystem, Content: content})
}

// Clear replaces the whole log with a single ClearedNotice system message.
// Ids keep increasing across clears.
func (t *Transcript) Clear() {
	ts := t.now()
	notice := models.Message{
		ID:        t.nextID(ts),
		Role:      models.RoleSystem,
		Content:   ClearedNotice,
		Timestamp: ts,
	}
	t.messages = []models.Message{notice}
}

// All returns a copy of the log in append order.
func (t *Transcript) All() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

func (t *Transcript) Find(id int64) (models.Message, bool) {
	for _, m := range t.messages {
		if m.ID == id {
			return m, true
		}
	}
	return models.Message{}, false
}

// LatestWithCode returns the newest message that carries extracted code.
func (t *Transcript) LatestWithCode() (models.Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].HasCode {
			return t.messages[i], true
		}
	}
	return models.Message{}, false
}
