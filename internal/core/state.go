package core

import (
	"errors"
	"sync"

	"github.com/Rorical/CodeAssist/internal/extract"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/transcript"
)

var (
	ErrRoundOpen    = errors.New("an analysis round is already running")
	ErrDisconnected = errors.New("backend is disconnected")
)

// SessionState is the coordinator's view of one session: the transcript,
// backend reachability and the phase of the current round.
type SessionState struct {
	mu         sync.RWMutex
	transcript *transcript.Transcript
	connection models.ConnectionState
	phase      models.RoundPhase
	lastError  error
}

func NewSessionState() *SessionState {
	return NewSessionStateWithTranscript(transcript.New())
}

func NewSessionStateWithTranscript(t *transcript.Transcript) *SessionState {
	return &SessionState{
		transcript: t,
		connection: models.ConnectionUnknown,
		phase:      models.PhaseIdle,
	}
}

// Snapshot is a consistent copy of the state at one instant.
type Snapshot struct {
	Messages   []models.Message
	Connection models.ConnectionState
	Phase      models.RoundPhase
	Error      error
}

func (s *SessionState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Messages:   s.transcript.All(),
		Connection: s.connection,
		Phase:      s.phase,
		Error:      s.lastError,
	}
}

func (s *SessionState) Connection() models.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connection
}

func (s *SessionState) Phase() models.RoundPhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// CanAnalyze is true when no round is open and the backend is not known
// to be down.
func (s *SessionState) CanAnalyze() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canAnalyzeLocked() == nil
}

func (s *SessionState) canAnalyzeLocked() error {
	if s.phase != models.PhaseIdle {
		return ErrRoundOpen
	}
	if s.connection == models.ConnectionDisconnected {
		return ErrDisconnected
	}
	return nil
}

// SetConnection records a probe result. It returns the previous state.
func (s *SessionState) SetConnection(state models.ConnectionState) models.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.connection
	s.connection = state
	return prev
}

func (s *SessionState) AddSystemMessage(content string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.AppendSystem(content)
}

// BeginRound moves Idle -> Dispatching and logs the user's request.
func (s *SessionState) BeginRound(action models.Action, language string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canAnalyzeLocked(); err != nil {
		return models.Message{}, err
	}
	s.phase = models.PhaseDispatching
	s.lastError = nil
	return s.transcript.Append(models.Message{
		Role:    models.RoleUser,
		Content: action.Label() + " (" + language + ")",
		Action:  action,
	}), nil
}

// BeginInterpreting moves Dispatching -> Interpreting after a successful
// reply. A successful reply also proves the backend is reachable.
func (s *SessionState) BeginInterpreting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = models.PhaseInterpreting
	s.connection = models.ConnectionConnected
}

// FinishWithReply appends the ai message and closes the round.
func (s *SessionState) FinishWithReply(content string, res extract.Result) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.transcript.Append(models.Message{
		Role:          models.RoleAI,
		Content:       content,
		Action:        res.Action,
		Language:      res.Language,
		ExtractedCode: res.Code,
		HasCode:       res.HasCode,
	})
	s.phase = models.PhaseIdle
	return msg
}

// FinishWithError appends a system message for err and closes the round.
// disconnected flips the connection state; otherwise it is left alone.
func (s *SessionState) FinishWithError(err error, notice string, disconnected bool) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.transcript.AppendSystem(notice)
	s.lastError = err
	if disconnected {
		s.connection = models.ConnectionDisconnected
	}
	s.phase = models.PhaseIdle
	return msg
}

// Clear resets the transcript. An open round keeps running; its reply is
// appended to the fresh transcript.
func (s *SessionState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Clear()
	s.lastError = nil
}

func (s *SessionState) Find(id int64) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.Find(id)
}

func (s *SessionState) LatestWithCode() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.LatestWithCode()
}
