package chat

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

// Generator produces replies. *genai.Client implements it.
type Generator interface {
	GenerateTextResponse(ctx context.Context, history []genai.Turn, prompt, modifier string, image *genai.Image) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*genai.Image, error)
	GenerateMindMapData(ctx context.Context, topic string) (*mindmap.Node, error)
	TokensUsed() int64
}

// Session is one in-memory conversation.
type Session struct {
	gen    Generator
	logger *log.Logger
	now    func() time.Time

	mu       sync.Mutex
	messages []Message
	busy     atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for failed requests.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession starts a conversation holding only the welcome message.
func NewSession(gen Generator, opts ...Option) *Session {
	s := &Session{gen: gen, logger: log.New(io.Discard), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.messages = []Message{welcome(s.now())}
	return s
}

func welcome(at time.Time) Message {
	m := NewMessage(RoleModel, Text{Body: WelcomeText}, at)
	m.ID = "welcome"
	return m
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool { return s.busy.Load() }

// History returns a copy of the transcript.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// TokensUsed is the generator's running token count.
func (s *Session) TokensUsed() int64 { return s.gen.TokensUsed() }

// Reset drops the transcript back to the welcome message.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []Message{welcome(s.now())}
}

// Send handles one user prompt in the given mode and returns the reply that
// was appended. Generation failures are not returned as errors: the reply is
// a Failure carrying the cause. Send returns an error only for empty prompts,
// unknown modes, or when another request is in flight.
func (s *Session) Send(ctx context.Context, mode Mode, prompt string, attachment *genai.Image) (Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return Message{}, errors.New(errors.ErrCodeInvalidInput, "prompt cannot be empty")
	}
	if !mode.Valid() {
		return Message{}, errors.New(errors.ErrCodeInvalidMode, "unknown mode %q", mode)
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Message{}, errors.New(errors.ErrCodeBusy, "a request is already in progress")
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	history := Turns(s.messages)
	s.messages = append(s.messages, NewMessage(RoleUser, Text{Body: prompt}, s.now()))
	s.mu.Unlock()

	content, err := s.dispatch(ctx, mode, prompt, history, attachment)
	if err != nil {
		s.logger.Error("request failed", "mode", mode, "err", err)
		content = Failure{Text: ErrorText, Err: err}
	}
	reply := NewMessage(RoleModel, content, s.now())

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.mu.Unlock()
	return reply, nil
}

func (s *Session) dispatch(ctx context.Context, mode Mode, prompt string, history []genai.Turn, attachment *genai.Image) (Content, error) {
	switch mode {
	case ModeVisual:
		img, err := s.gen.GenerateImage(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return Image{Image: img}, nil
	case ModeMindMap:
		tree, err := s.gen.GenerateMindMapData(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return MindMap{Caption: MindMapCaption(prompt), Tree: tree}, nil
	default:
		text, err := s.gen.GenerateTextResponse(ctx, history, prompt, mode.Config().Modifier, attachment)
		if err != nil {
			return nil, err
		}
		return Text{Body: text}, nil
	}
}
