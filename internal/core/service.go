// Package core runs the analysis coordinator: a single event loop that owns
// the session state, turns UI events into analysis rounds and pushes state
// snapshots back to the UI.
package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/analyzer"
	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/extract"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/storage"
)

const (
	WelcomeMessage  = "Welcome to CodeAssist! Write some code in the editor and pick an action: Ctrl+E explain, Ctrl+B find bugs, Ctrl+R improve."
	AppliedNotice   = "Code applied to editor."
	NoCodeNotice    = "No extracted code to apply."
	UnreachableText = "Backend is unreachable. Actions are disabled until it responds again (F5 to retry)."
	RestoredText    = "Backend connection restored."
)

// PreferenceSaver persists the buffer, language and theme.
type PreferenceSaver interface {
	Save(p storage.Preferences) error
}

// Options tune an AssistantService. The zero value is usable.
type Options struct {
	Logger *zap.Logger

	// Preferences receives PreferencesEvent snapshots. Nil drops them.
	Preferences PreferenceSaver

	// ReprobeInterval re-checks liveness while disconnected. Zero disables.
	ReprobeInterval time.Duration

	// State replaces the default session state, mainly for tests.
	State *SessionState
}

// outcome is the result of a worker goroutine, handled on the loop.
type outcome interface{ outcome() }

type analysisOutcome struct {
	req  analyzer.AnalysisRequest
	resp *analyzer.AnalysisResponse
	err  error
}

func (analysisOutcome) outcome() {}

type probeOutcome struct {
	err error
}

func (probeOutcome) outcome() {}

// AssistantService is the coordinator. Every state mutation happens on its
// event loop goroutine; network calls run on workers that post their
// outcome back to the loop.
type AssistantService struct {
	dispatcher analyzer.Dispatcher
	state      *SessionState
	eventBus   *eventbus.EventBus
	prefs      PreferenceSaver
	logger     *zap.Logger
	reprobe    time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	outcomes chan outcome
	wg       sync.WaitGroup
	stopOnce sync.Once

	// loop-owned
	probing bool
}

func NewAssistantService(dispatcher analyzer.Dispatcher, eb *eventbus.EventBus, opts Options) *AssistantService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	state := opts.State
	if state == nil {
		state = NewSessionState()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &AssistantService{
		dispatcher: dispatcher,
		state:      state,
		eventBus:   eb,
		prefs:      opts.Preferences,
		logger:     logger.Named("core"),
		reprobe:    opts.ReprobeInterval,
		ctx:        ctx,
		cancel:     cancel,
		outcomes:   make(chan outcome, 1),
	}
	s.state.AddSystemMessage(WelcomeMessage)
	return s
}

// Start pushes the initial state, fires the first liveness probe and runs
// the event loop in a goroutine.
func (s *AssistantService) Start() {
	s.pushStateToUI()
	s.startProbe()

	s.wg.Add(1)
	go s.eventLoop()
}

// Stop cancels the loop and in-flight requests and waits for every
// goroutine to exit. It is safe to call more than once.
func (s *AssistantService) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

// State exposes the session state for read-only inspection.
func (s *AssistantService) State() *SessionState {
	return s.state
}

func (s *AssistantService) eventLoop() {
	defer s.wg.Done()

	var tick <-chan time.Time
	if s.reprobe > 0 {
		ticker := time.NewTicker(s.reprobe)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.eventBus.UIToCore():
			if !ok {
				return
			}
			s.handleUIEvent(event)
		case out := <-s.outcomes:
			s.handleOutcome(out)
		case <-tick:
			if s.state.Connection() == models.ConnectionDisconnected {
				s.startProbe()
			}
		}
	}
}

func (s *AssistantService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.AnalyzeEvent:
		s.startRound(e)
	case eventbus.ClearChatEvent:
		s.state.Clear()
		s.pushStateToUI()
	case eventbus.ApplyCodeEvent:
		s.applyCode(e.MessageID)
	case eventbus.ProbeEvent:
		s.startProbe()
	case eventbus.NoticeEvent:
		s.state.AddSystemMessage(e.Content)
		s.pushStateToUI()
	case eventbus.PreferencesEvent:
		s.savePreferences(e.Preferences)
	default:
		s.logger.Warn("unhandled ui event", zap.Any("event", event))
	}
}

func (s *AssistantService) startRound(e eventbus.AnalyzeEvent) {
	req := analyzer.NewRequest(e.Action, e.Code, e.Language)
	if err := analyzer.Validate(req); err != nil {
		s.logger.Debug("analysis rejected locally", zap.Error(err))
		s.state.AddSystemMessage(err.Error())
		s.pushStateToUI()
		return
	}

	if _, err := s.state.BeginRound(e.Action, e.Language); err != nil {
		// The UI gates on the same conditions, so this is a stray key press.
		s.logger.Info("analysis dropped", zap.String("action", string(e.Action)), zap.Error(err))
		return
	}
	s.pushStateToUI()

	s.logger.Info("round dispatched",
		zap.String("action", string(req.Action)),
		zap.String("language", req.Language),
		zap.Int("code_bytes", len(req.Code)))

	s.spawn(func(ctx context.Context) outcome {
		resp, err := s.dispatcher.Analyze(ctx, req)
		return analysisOutcome{req: req, resp: resp, err: err}
	})
}

func (s *AssistantService) startProbe() {
	if s.probing {
		return
	}
	s.probing = true
	s.spawn(func(ctx context.Context) outcome {
		return probeOutcome{err: s.dispatcher.Probe(ctx)}
	})
}

// spawn runs work on a worker goroutine and hands its outcome to the loop.
func (s *AssistantService) spawn(work func(ctx context.Context) outcome) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		out := work(s.ctx)
		select {
		case s.outcomes <- out:
		case <-s.ctx.Done():
		}
	}()
}

func (s *AssistantService) handleOutcome(out outcome) {
	switch o := out.(type) {
	case analysisOutcome:
		s.finishRound(o)
	case probeOutcome:
		s.probing = false
		s.finishProbe(o.err)
	}
}

func (s *AssistantService) finishRound(o analysisOutcome) {
	if o.err != nil {
		var connErr *analyzer.ConnectionError
		var backendErr *analyzer.BackendError
		switch {
		case errors.As(o.err, &connErr):
			s.logger.Warn("round failed: backend unreachable", zap.Error(o.err))
			s.state.FinishWithError(o.err, "Error: "+connErr.Message, true)
		case errors.As(o.err, &backendErr):
			s.logger.Warn("round failed: backend error",
				zap.Int("status", backendErr.StatusCode),
				zap.String("detail", backendErr.Message))
			s.state.FinishWithError(o.err, "Error: "+backendErr.Message, false)
		default:
			s.logger.Error("round failed", zap.Error(o.err))
			s.state.FinishWithError(o.err, "Error: "+o.err.Error(), false)
		}
		s.pushStateToUI()
		return
	}

	s.state.BeginInterpreting()
	s.pushStateToUI()

	res := extract.Interpret(o.req.Action, o.resp.Response, o.req.Language)
	msg := s.state.FinishWithReply(o.resp.Response, res)
	s.logger.Info("round finished",
		zap.String("action", string(o.req.Action)),
		zap.Int64("message_id", msg.ID),
		zap.Bool("has_code", msg.HasCode))
	s.pushStateToUI()
}

func (s *AssistantService) finishProbe(err error) {
	next := models.ConnectionConnected
	if err != nil {
		next = models.ConnectionDisconnected
	}
	prev := s.state.SetConnection(next)
	if prev == next {
		s.pushStateToUI()
		return
	}

	s.logger.Info("backend connection changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.Error(err))
	switch {
	case next == models.ConnectionDisconnected:
		s.state.AddSystemMessage(UnreachableText)
	case prev == models.ConnectionDisconnected:
		s.state.AddSystemMessage(RestoredText)
	}
	s.pushStateToUI()
}

// applyCode answers an ApplyCodeEvent with the stored extracted code.
// id 0 selects the newest message that has code.
func (s *AssistantService) applyCode(id int64) {
	var (
		msg models.Message
		ok  bool
	)
	if id == 0 {
		msg, ok = s.state.LatestWithCode()
	} else {
		msg, ok = s.state.Find(id)
	}
	if !ok || !msg.HasCode {
		s.state.AddSystemMessage(NoCodeNotice)
		s.pushStateToUI()
		return
	}

	if err := s.eventBus.SendToUI(eventbus.EditorReplaceEvent{Code: msg.ExtractedCode}); err != nil {
		s.logger.Error("failed to send editor replacement", zap.Error(err))
		return
	}
	s.state.AddSystemMessage(AppliedNotice)
	s.pushStateToUI()
}

func (s *AssistantService) savePreferences(p storage.Preferences) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Save(p); err != nil {
		s.logger.Warn("failed to save preferences", zap.Error(err))
	}
}

func (s *AssistantService) pushStateToUI() {
	snap := s.state.Snapshot()
	if err := s.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Messages:   snap.Messages,
		Connection: snap.Connection,
		Phase:      snap.Phase,
		Error:      snap.Error,
	}); err != nil {
		s.logger.Warn("failed to send state to ui", zap.Error(err))
	}
}
