package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	mmerrors "github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

type fakeGenerator struct {
	mu       sync.Mutex
	err      error
	gate     chan struct{}
	entered  chan struct{}
	history  []genai.Turn
	modifier string
}

func (f *fakeGenerator) wait() {
	if f.entered != nil {
		close(f.entered)
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeGenerator) GenerateTextResponse(_ context.Context, history []genai.Turn, prompt, modifier string, _ *genai.Image) (string, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history, f.modifier = history, modifier
	if f.err != nil {
		return "", f.err
	}
	return "reply to " + prompt, nil
}

func (f *fakeGenerator) GenerateImage(context.Context, string) (*genai.Image, error) {
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return &genai.Image{MIMEType: "image/png", Data: []byte{1, 2, 3}}, nil
}

func (f *fakeGenerator) GenerateMindMapData(_ context.Context, topic string) (*mindmap.Node, error) {
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return mindmap.New(topic, mindmap.New("a"), mindmap.New("b")), nil
}

func (f *fakeGenerator) TokensUsed() int64 { return 7 }

var fixed = time.UnixMilli(1700000000000)

func newTestSession(g *fakeGenerator) *Session {
	return NewSession(g, WithClock(func() time.Time { return fixed }))
}

func TestNewSessionWelcome(t *testing.T) {
	s := newTestSession(&fakeGenerator{})
	h := s.History()
	if len(h) != 1 || h[0].ID != "welcome" || h[0].Role != RoleModel {
		t.Fatalf("history = %+v", h)
	}
	if txt, ok := h[0].Content.(Text); !ok || txt.Body != WelcomeText {
		t.Errorf("welcome content = %#v", h[0].Content)
	}
}

func TestSendDispatch(t *testing.T) {
	tests := []struct {
		mode Mode
		kind string
	}{
		{ModeStudy, "TEXT"},
		{ModeResearch, "TEXT"},
		{ModeSummary, "TEXT"},
		{ModeVisual, "IMAGE"},
		{ModeMindMap, "MINDMAP"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			s := newTestSession(&fakeGenerator{})
			reply, err := s.Send(context.Background(), tt.mode, "pipes", nil)
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if reply.Kind() != tt.kind || reply.Role != RoleModel {
				t.Errorf("reply = %s/%s, want model/%s", reply.Role, reply.Kind(), tt.kind)
			}
			h := s.History()
			if len(h) != 3 {
				t.Fatalf("history length = %d, want 3", len(h))
			}
			if h[1].Role != RoleUser || Describe(h[1]) != "pipes" {
				t.Errorf("user turn = %+v", h[1])
			}
			if h[2].ID != reply.ID || reply.ID == "" {
				t.Errorf("reply id = %q, history id = %q", reply.ID, h[2].ID)
			}
		})
	}
}

func TestSendTextUsesModifierAndHistory(t *testing.T) {
	g := &fakeGenerator{}
	s := newTestSession(g)
	if _, err := s.Send(context.Background(), ModeVisual, "draw", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Send(context.Background(), ModeSummary, "summarize", nil); err != nil {
		t.Fatal(err)
	}
	if g.modifier != ModeSummary.Config().Modifier {
		t.Errorf("modifier = %q", g.modifier)
	}
	// welcome, "draw"; the image reply and the current prompt are excluded
	if len(g.history) != 2 || g.history[0].Role != genai.RoleModel || g.history[1].Text != "draw" {
		t.Errorf("history = %+v", g.history)
	}
}

func TestSendFailure(t *testing.T) {
	cause := mmerrors.Wrap(mmerrors.ErrCodeGeneration, errors.New("503"), "generate text")
	s := newTestSession(&fakeGenerator{err: cause})

	reply, err := s.Send(context.Background(), ModeStudy, "hi", nil)
	if err != nil {
		t.Fatalf("Send() error = %v, failures belong in the reply", err)
	}
	f, ok := reply.Content.(Failure)
	if !ok {
		t.Fatalf("reply content = %T, want Failure", reply.Content)
	}
	if f.Text != ErrorText || !mmerrors.Is(f.Err, mmerrors.ErrCodeGeneration) {
		t.Errorf("failure = %+v", f)
	}
	if s.Busy() {
		t.Error("session busy after failure")
	}
	if _, err := s.Send(context.Background(), ModeStudy, "again", nil); err != nil {
		t.Errorf("retry after failure error = %v", err)
	}
}

func TestSendRejects(t *testing.T) {
	s := newTestSession(&fakeGenerator{})
	if _, err := s.Send(context.Background(), ModeStudy, "   ", nil); !mmerrors.Is(err, mmerrors.ErrCodeInvalidInput) {
		t.Errorf("empty prompt error = %v", err)
	}
	if _, err := s.Send(context.Background(), Mode("POETRY"), "x", nil); !mmerrors.Is(err, mmerrors.ErrCodeInvalidMode) {
		t.Errorf("bad mode error = %v", err)
	}
	if len(s.History()) != 1 {
		t.Error("rejected sends changed the transcript")
	}
}

func TestSendWhileBusy(t *testing.T) {
	g := &fakeGenerator{gate: make(chan struct{}), entered: make(chan struct{})}
	s := newTestSession(g)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), ModeStudy, "first", nil)
		done <- err
	}()
	<-g.entered

	if _, err := s.Send(context.Background(), ModeStudy, "second", nil); !mmerrors.Is(err, mmerrors.ErrCodeBusy) {
		t.Errorf("concurrent Send() error = %v, want BUSY", err)
	}
	close(g.gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if n := len(s.History()); n != 3 {
		t.Errorf("history length = %d, want 3", n)
	}
}

func TestReset(t *testing.T) {
	s := newTestSession(&fakeGenerator{})
	s.Send(context.Background(), ModeStudy, "hi", nil)
	s.Reset()
	if h := s.History(); len(h) != 1 || h[0].ID != "welcome" {
		t.Errorf("history after Reset = %+v", h)
	}
	if s.TokensUsed() != 7 {
		t.Errorf("TokensUsed() = %d", s.TokensUsed())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeStudy, false},
		{"study", ModeStudy, false},
		{" MindMap ", ModeMindMap, false},
		{"visual", ModeVisual, false},
		{"poetry", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if len(Modes()) != 5 {
		t.Errorf("Modes() = %v", Modes())
	}
	if ModeMindMap.String() != "🧠 خريطة ذهنية" {
		t.Errorf("String() = %q", ModeMindMap.String())
	}
}

func TestMessageJSON(t *testing.T) {
	tree := mindmap.New("root", mindmap.New("leaf"))
	tests := []struct {
		name    string
		content Content
		typ     string
		check   func(map[string]any) bool
	}{
		{"text", Text{Body: "hi"}, "TEXT", func(m map[string]any) bool { return m["content"] == "hi" }},
		{"image", Image{Image: &genai.Image{MIMEType: "image/png", Data: []byte{1}}}, "IMAGE",
			func(m map[string]any) bool { return strings.HasPrefix(m["content"].(string), "data:image/png;base64,") }},
		{"mindmap", MindMap{Caption: MindMapCaption("root"), Tree: tree}, "MINDMAP",
			func(m map[string]any) bool { return m["mindMapData"].(map[string]any)["name"] == "root" }},
		{"failure", Failure{Text: ErrorText, Err: errors.New("x")}, "ERROR", func(m map[string]any) bool { return m["content"] == ErrorText }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(NewMessage(RoleModel, tt.content, fixed))
			if err != nil {
				t.Fatal(err)
			}
			var m map[string]any
			if err := json.Unmarshal(raw, &m); err != nil {
				t.Fatal(err)
			}
			if m["type"] != tt.typ || m["role"] != "model" || m["timestamp"].(float64) != 1700000000000 {
				t.Errorf("json = %s", raw)
			}
			if !tt.check(m) {
				t.Errorf("content check failed: %s", raw)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tree := mindmap.New("root", mindmap.New("a"), mindmap.New("b"))
	tests := []struct {
		content Content
		want    string
	}{
		{Text{Body: "hello"}, "hello"},
		{Image{Image: &genai.Image{MIMEType: "image/png", Data: make([]byte, 10)}}, "[image image/png, 10 bytes]"},
		{MindMap{Caption: "cap", Tree: tree}, "cap [3 nodes]"},
		{Failure{Text: ErrorText}, ErrorText},
	}
	for _, tt := range tests {
		if got := Describe(Message{Content: tt.content}); got != tt.want {
			t.Errorf("Describe(%T) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
