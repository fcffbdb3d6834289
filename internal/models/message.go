package models

import (
	"fmt"
	"time"
)

// PlaceholderCode is the editor content shown before the user types anything.
// A buffer equal to it counts as "no code entered yet".
const PlaceholderCode = "// Write your code here...\n"

type Role int

const (
	RoleUser Role = iota
	RoleAI
	RoleSystem
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAI:
		return "ai"
	case RoleSystem:
		return "system"
	}
	return "unknown"
}

// Action is the analysis intent sent to the backend.
type Action string

const (
	ActionExplain  Action = "explain"
	ActionFindBugs Action = "find_bugs"
	ActionImprove  Action = "improve"
)

// Actions lists the analysis actions in the order they appear in the UI.
var Actions = []Action{ActionExplain, ActionFindBugs, ActionImprove}

func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q (want explain, find_bugs or improve)", s)
}

func (a Action) Valid() bool {
	_, err := ParseAction(string(a))
	return err == nil
}

func (a Action) Label() string {
	switch a {
	case ActionExplain:
		return "Explain Code"
	case ActionFindBugs:
		return "Find Bugs"
	case ActionImprove:
		return "Improve Code"
	}
	return string(a)
}

// ReturnsCode reports whether replies to this action may carry code meant
// to replace the editor buffer.
func (a Action) ReturnsCode() bool {
	return a == ActionFindBugs || a == ActionImprove
}

// Message is one transcript entry. Messages are never mutated once appended.
type Message struct {
	ID        int64
	Role      Role
	Content   string
	Action    Action // empty for messages not tied to an analysis round
	Language  string // language of the round, set on ai replies
	Timestamp time.Time

	// ExtractedCode is set only when HasCode is true.
	ExtractedCode string
	HasCode       bool
}

type ConnectionState int

const (
	ConnectionUnknown ConnectionState = iota
	ConnectionConnected
	ConnectionDisconnected
)

func (c ConnectionState) String() string {
	switch c {
	case ConnectionConnected:
		return "connected"
	case ConnectionDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// RoundPhase tracks a single analysis round.
type RoundPhase int

const (
	PhaseIdle RoundPhase = iota
	PhaseDispatching
	PhaseInterpreting
)

func (p RoundPhase) String() string {
	switch p {
	case PhaseDispatching:
		return "dispatching"
	case PhaseInterpreting:
		return "interpreting"
	}
	return "idle"
}
