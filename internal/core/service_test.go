package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Rorical/CodeAssist/internal/analyzer"
	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/storage"
	"github.com/Rorical/CodeAssist/internal/transcript"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeDispatcher struct {
	mu           sync.Mutex
	analyze      func(ctx context.Context, req analyzer.AnalysisRequest) (*analyzer.AnalysisResponse, error)
	probe        func(ctx context.Context) error
	analyzeCalls int
	probeCalls   int
}

func (f *fakeDispatcher) Analyze(ctx context.Context, req analyzer.AnalysisRequest) (*analyzer.AnalysisResponse, error) {
	f.mu.Lock()
	f.analyzeCalls++
	fn := f.analyze
	f.mu.Unlock()
	if fn == nil {
		return &analyzer.AnalysisResponse{Success: true, Response: "ok", Action: string(req.Action), Language: req.Language}, nil
	}
	return fn(ctx, req)
}

func (f *fakeDispatcher) Probe(ctx context.Context) error {
	f.mu.Lock()
	f.probeCalls++
	fn := f.probe
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (f *fakeDispatcher) calls() (analyze, probe int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeCalls, f.probeCalls
}

func reply(text string) func(context.Context, analyzer.AnalysisRequest) (*analyzer.AnalysisResponse, error) {
	return func(_ context.Context, req analyzer.AnalysisRequest) (*analyzer.AnalysisResponse, error) {
		return &analyzer.AnalysisResponse{Success: true, Response: text, Action: string(req.Action), Language: req.Language}, nil
	}
}

type harness struct {
	t    *testing.T
	svc  *AssistantService
	bus  *eventbus.EventBus
	disp *fakeDispatcher

	mu     sync.Mutex
	events []eventbus.CoreEvent
	done   chan struct{}
}

func newHarness(t *testing.T, disp *fakeDispatcher, opts Options) *harness {
	t.Helper()
	h := &harness{t: t, bus: eventbus.NewEventBus(), disp: disp, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		for ev := range h.bus.CoreToUI() {
			h.mu.Lock()
			h.events = append(h.events, ev)
			h.mu.Unlock()
		}
	}()

	h.svc = NewAssistantService(disp, h.bus, opts)
	h.svc.Start()
	t.Cleanup(func() {
		h.svc.Stop()
		h.bus.Close()
		<-h.done
	})
	return h
}

func (h *harness) send(ev eventbus.UIEvent) {
	h.t.Helper()
	require.NoError(h.t, h.bus.SendToCore(ev))
}

func (h *harness) snapshot() Snapshot {
	return h.svc.State().Snapshot()
}

func (h *harness) waitConnection(want models.ConnectionState) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return h.snapshot().Connection == want
	}, waitFor, tick, "connection never became %s", want)
}

func (h *harness) waitIdleWith(n int) Snapshot {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		s := h.snapshot()
		return s.Phase == models.PhaseIdle && len(s.Messages) >= n
	}, waitFor, tick)
	return h.snapshot()
}

// barrier waits until every event sent so far has been handled.
func (h *harness) barrier() {
	h.t.Helper()
	marker := "barrier " + time.Now().String()
	h.send(eventbus.NoticeEvent{Content: marker})
	require.Eventually(h.t, func() bool {
		msgs := h.snapshot().Messages
		return len(msgs) > 0 && msgs[len(msgs)-1].Content == marker
	}, waitFor, tick)
}

func (h *harness) editorReplacements() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, ev := range h.events {
		if r, ok := ev.(eventbus.EditorReplaceEvent); ok {
			out = append(out, r.Code)
		}
	}
	return out
}

func TestStart_WelcomeAndProbe(t *testing.T) {
	h := newHarness(t, &fakeDispatcher{}, Options{})
	h.waitConnection(models.ConnectionConnected)

	msgs := h.snapshot().Messages
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, WelcomeMessage, msgs[0].Content)
}

func TestImproveRound_ExtractsMatchingBlock(t *testing.T) {
	disp := &fakeDispatcher{analyze: reply("Here is a fix:\n```python\ndef add(a, b):\n    return a + b\n```\n")}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionImprove, Code: "def add(a,b): return a-b", Language: "python"})
	snap := h.waitIdleWith(3)

	require.Len(t, snap.Messages, 3)
	user, ai := snap.Messages[1], snap.Messages[2]
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "Improve Code (python)", user.Content)
	assert.Equal(t, models.RoleAI, ai.Role)
	assert.True(t, ai.HasCode)
	assert.Equal(t, "def add(a, b):\n    return a + b", ai.ExtractedCode)
	assert.Equal(t, models.ActionImprove, ai.Action)
	assert.Less(t, user.ID, ai.ID)
	assert.Equal(t, models.ConnectionConnected, snap.Connection)
	assert.NoError(t, snap.Error)
}

func TestExplainRound_NeverExtracts(t *testing.T) {
	disp := &fakeDispatcher{analyze: reply("It prints:\n```js\nconsole.log(1)\n```")}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionExplain, Code: "console.log(1)", Language: "javascript"})
	snap := h.waitIdleWith(3)

	ai := snap.Messages[2]
	assert.False(t, ai.HasCode)
	assert.Empty(t, ai.ExtractedCode)

	h.send(eventbus.ApplyCodeEvent{})
	h.barrier()
	assert.Empty(t, h.editorReplacements())
	msgs := h.snapshot().Messages
	assert.Equal(t, NoCodeNotice, msgs[len(msgs)-2].Content)
}

func TestProbeFailure_DisablesActions(t *testing.T) {
	disp := &fakeDispatcher{probe: func(context.Context) error {
		return &analyzer.ConnectionError{Message: "cannot connect", Cause: errors.New("connection refused")}
	}}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionDisconnected)

	assert.False(t, h.svc.State().CanAnalyze())
	msgs := h.snapshot().Messages
	assert.Equal(t, UnreachableText, msgs[len(msgs)-1].Content)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionExplain, Code: "x := 1", Language: "javascript"})
	h.barrier()

	analyzeCalls, _ := disp.calls()
	assert.Zero(t, analyzeCalls)
	for _, m := range h.snapshot().Messages {
		assert.NotEqual(t, models.RoleUser, m.Role)
	}
}

func TestBackendError_LeavesConnectionUnchanged(t *testing.T) {
	disp := &fakeDispatcher{analyze: func(context.Context, analyzer.AnalysisRequest) (*analyzer.AnalysisResponse, error) {
		return nil, &analyzer.BackendError{StatusCode: 500, Message: "model unavailable"}
	}}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionFindBugs, Code: "int x;", Language: "cpp"})
	snap := h.waitIdleWith(3)

	last := snap.Messages[len(snap.Messages)-1]
	assert.Equal(t, models.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "model unavailable")
	assert.Equal(t, models.ConnectionConnected, snap.Connection)
	assert.True(t, analyzer.IsBackend(snap.Error))
	assert.True(t, h.svc.State().CanAnalyze())
}

func TestConnectionError_FlipsToDisconnected(t *testing.T) {
	disp := &fakeDispatcher{analyze: func(context.Context, analyzer.AnalysisRequest) (*analyzer.AnalysisResponse, error) {
		return nil, &analyzer.ConnectionError{Message: "request timed out", Cause: context.DeadlineExceeded}
	}}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionImprove, Code: "print(1)", Language: "python"})
	snap := h.waitIdleWith(3)

	assert.Equal(t, models.ConnectionDisconnected, snap.Connection)
	assert.Equal(t, "Error: request timed out", snap.Messages[len(snap.Messages)-1].Content)
	assert.False(t, h.svc.State().CanAnalyze())
}

func TestValidation_NeverDispatches(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"blank", "  \n\t", analyzer.ErrEmptyCode.Reason},
		{"placeholder", models.PlaceholderCode, analyzer.ErrPlaceholderCode.Reason},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disp := &fakeDispatcher{}
			h := newHarness(t, disp, Options{})
			h.waitConnection(models.ConnectionConnected)

			h.send(eventbus.AnalyzeEvent{Action: models.ActionExplain, Code: tt.code, Language: "javascript"})
			require.Eventually(t, func() bool { return len(h.snapshot().Messages) == 2 }, waitFor, tick)

			snap := h.snapshot()
			assert.Equal(t, models.RoleSystem, snap.Messages[1].Role)
			assert.Equal(t, tt.want, snap.Messages[1].Content)
			assert.Equal(t, models.PhaseIdle, snap.Phase)
			analyzeCalls, _ := disp.calls()
			assert.Zero(t, analyzeCalls)
		})
	}
}

func TestOverlappingRoundIsDropped(t *testing.T) {
	release := make(chan struct{})
	disp := &fakeDispatcher{analyze: func(ctx context.Context, req analyzer.AnalysisRequest) (*analyzer.AnalysisResponse, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &analyzer.AnalysisResponse{Success: true, Response: "done"}, nil
	}}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionExplain, Code: "a()", Language: "javascript"})
	require.Eventually(t, func() bool { return h.snapshot().Phase == models.PhaseDispatching }, waitFor, tick)
	assert.False(t, h.svc.State().CanAnalyze())

	h.send(eventbus.AnalyzeEvent{Action: models.ActionImprove, Code: "b()", Language: "javascript"})
	h.barrier()
	close(release)

	snap := h.waitIdleWith(4)
	analyzeCalls, _ := disp.calls()
	assert.Equal(t, 1, analyzeCalls)

	var users int
	for _, m := range snap.Messages {
		if m.Role == models.RoleUser {
			users++
		}
	}
	assert.Equal(t, 1, users)
}

func TestApplyCode(t *testing.T) {
	disp := &fakeDispatcher{analyze: reply("```ts\nconst x: number = 1;\n```")}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionFindBugs, Code: "const x = '1'", Language: "typescript"})
	snap := h.waitIdleWith(3)
	aiID := snap.Messages[2].ID

	h.send(eventbus.ApplyCodeEvent{MessageID: aiID})
	require.Eventually(t, func() bool { return len(h.editorReplacements()) == 1 }, waitFor, tick)
	assert.Equal(t, "const x: number = 1;", h.editorReplacements()[0])

	h.barrier()
	msgs := h.snapshot().Messages
	assert.Equal(t, AppliedNotice, msgs[len(msgs)-2].Content)

	h.send(eventbus.ApplyCodeEvent{})
	require.Eventually(t, func() bool { return len(h.editorReplacements()) == 2 }, waitFor, tick)

	h.send(eventbus.ApplyCodeEvent{MessageID: 42})
	h.barrier()
	assert.Len(t, h.editorReplacements(), 2)
}

func TestClearChat(t *testing.T) {
	h := newHarness(t, &fakeDispatcher{}, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionExplain, Code: "x", Language: "javascript"})
	before := h.waitIdleWith(3)

	h.send(eventbus.ClearChatEvent{})
	require.Eventually(t, func() bool {
		msgs := h.snapshot().Messages
		return len(msgs) == 1 && msgs[0].Content == transcript.ClearedNotice
	}, waitFor, tick)

	after := h.snapshot().Messages[0]
	assert.Equal(t, models.RoleSystem, after.Role)
	assert.Greater(t, after.ID, before.Messages[len(before.Messages)-1].ID)
}

func TestReprobeRestoresConnection(t *testing.T) {
	var mu sync.Mutex
	healthy := false
	disp := &fakeDispatcher{probe: func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		if !healthy {
			return &analyzer.ConnectionError{Message: "cannot connect"}
		}
		return nil
	}}
	h := newHarness(t, disp, Options{ReprobeInterval: 10 * time.Millisecond})
	h.waitConnection(models.ConnectionDisconnected)

	mu.Lock()
	healthy = true
	mu.Unlock()

	h.waitConnection(models.ConnectionConnected)
	require.Eventually(t, func() bool {
		msgs := h.snapshot().Messages
		return msgs[len(msgs)-1].Content == RestoredText
	}, waitFor, tick)
	assert.True(t, h.svc.State().CanAnalyze())
}

func TestManualProbe(t *testing.T) {
	disp := &fakeDispatcher{}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.ProbeEvent{})
	require.Eventually(t, func() bool {
		_, probes := disp.calls()
		return probes == 2
	}, waitFor, tick)
}

type recordingSaver struct {
	mu    sync.Mutex
	saved []storage.Preferences
}

func (r *recordingSaver) Save(p storage.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, p)
	return nil
}

func (r *recordingSaver) all() []storage.Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]storage.Preferences(nil), r.saved...)
}

func TestPreferencesAreSaved(t *testing.T) {
	saver := &recordingSaver{}
	h := newHarness(t, &fakeDispatcher{}, Options{Preferences: saver})

	prefs := storage.Preferences{Code: "x = 1", Language: "python", ThemeMode: "light", ThemeColor: "green"}
	h.send(eventbus.PreferencesEvent{Preferences: prefs})

	require.Eventually(t, func() bool { return len(saver.all()) == 1 }, waitFor, tick)
	assert.Equal(t, prefs, saver.all()[0])
}

func TestStop_CancelsInFlightRound(t *testing.T) {
	started := make(chan struct{})
	disp := &fakeDispatcher{analyze: func(ctx context.Context, req analyzer.AnalysisRequest) (*analyzer.AnalysisResponse, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	h := newHarness(t, disp, Options{})
	h.waitConnection(models.ConnectionConnected)

	h.send(eventbus.AnalyzeEvent{Action: models.ActionImprove, Code: "y", Language: "javascript"})
	<-started

	stopped := make(chan struct{})
	go func() {
		h.svc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(waitFor):
		t.Fatal("Stop did not return while a request was in flight")
	}
}
