// ABOUTME: Streaming chat session: transcript, typing indicator, fragment folding
// ABOUTME: Each Send owns one assistant placeholder and grows it monotonically

package assistant

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lavriel789-crypto/luxriel/internal/broadcast"
)

// Generator produces reply fragments for one user turn. A non-nil error
// ends the stream.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userText string, image *Image) iter.Seq2[string, error]
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, systemPrompt, userText string, image *Image) iter.Seq2[string, error]

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, userText string, image *Image) iter.Seq2[string, error] {
	return f(ctx, systemPrompt, userText, image)
}

// State is the session's streaming state.
type State int

const (
	StateIdle State = iota
	StateAwaitingFirstResponse
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirstResponse:
		return "awaiting_first_response"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// EventType names a session event.
type EventType string

const (
	EventMessage EventType = "message" // a message was appended
	EventUpdate  EventType = "update"  // a message's text or streaming flag changed
	EventTyping  EventType = "typing"  // the typing indicator flipped
	EventDone    EventType = "done"    // a reply stream ended
)

// Event is delivered to session subscribers. Message is a copy.
type Event struct {
	Type    EventType `json:"type"`
	Message *Message  `json:"message,omitempty"`
	Typing  bool      `json:"typing"`
}

const eventsTopic = "session"

// Options configures sessions and hubs.
type Options struct {
	// SystemPrompt overrides the embedded persona.
	SystemPrompt string
	// IdleTimeout bounds how long a hub keeps an unused session.
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

// Session is one visitor's conversation.
type Session struct {
	id     string
	gen    Generator
	prompt string

	mu        sync.Mutex
	messages  []Message
	started   bool
	attached  *Image
	awaiting  int // sends still waiting for their first fragment
	streaming int // sends receiving fragments
	typing    bool

	events *broadcast.Broadcaster[Event]
	logger *slog.Logger
}

// NewSession creates an empty session driven by gen.
func NewSession(id string, gen Generator, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = SystemPrompt
	}
	return &Session{
		id:     id,
		gen:    gen,
		prompt: prompt,
		events: broadcast.New[Event](logger),
		logger: logger.With("component", "assistant", "session_id", id),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Attach stages an image for the next Send. A later Attach replaces it.
func (s *Session) Attach(img *Image) {
	s.mu.Lock()
	s.attached = img
	s.mu.Unlock()
}

// Attached reports whether an image is staged.
func (s *Session) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached != nil
}

// Send submits one user turn and streams the reply into the transcript.
// It blocks until the generator finishes or ctx ends. Generator failures
// become an apology in the reply and are not returned; the only error is
// ctx's when the stream was cancelled.
func (s *Session) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	img := s.attached
	if trimmed == "" && img == nil {
		if !s.started {
			s.started = true
			s.appendLocked(RoleAssistant, WelcomeMessage, "", false)
		}
		s.mu.Unlock()
		return nil
	}

	s.started = true
	s.attached = nil
	userText := trimmed
	preview := ""
	if img != nil {
		preview = img.DataURI()
		if userText == "" {
			userText = ImageCaption
		}
	}
	s.appendLocked(RoleUser, userText, preview, false)
	replyID := s.appendLocked(RoleAssistant, "", "", true)
	s.awaiting++
	s.syncTypingLocked()
	s.mu.Unlock()

	s.logger.Debug("send", "reply_id", replyID, "has_image", img != nil)

	var total strings.Builder
	receiving := false
	var genErr error
	for frag, err := range s.gen.Generate(ctx, s.prompt, userText, img) {
		if err != nil {
			genErr = err
			break
		}
		if frag == "" {
			continue
		}
		total.WriteString(frag)
		s.applyFragment(replyID, total.String(), !receiving)
		receiving = true
	}

	if genErr != nil && ctx.Err() == nil {
		s.logger.Warn("generator failed", "reply_id", replyID, "error", genErr)
		total.WriteString(Apology(genErr))
		s.applyFragment(replyID, total.String(), !receiving)
		receiving = true
	}

	s.finish(replyID, receiving)
	return ctx.Err()
}

// appendLocked adds a message and announces it. Caller holds s.mu.
func (s *Session) appendLocked(role Role, text, image string, streaming bool) string {
	msg := Message{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		Image:     image,
		Streaming: streaming,
		CreatedAt: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	s.publishLocked(EventMessage, &msg)
	return msg.ID
}

// applyFragment replaces the reply text with the running total.
func (s *Session) applyFragment(replyID, text string, first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if first {
		s.awaiting--
		s.streaming++
		s.syncTypingLocked()
	}
	if msg := s.findLocked(replyID); msg != nil {
		msg.Text = text
		cp := *msg
		s.publishLocked(EventUpdate, &cp)
	}
}

// finish closes the reply stream. receiving is false when no fragment
// ever arrived, in which case the placeholder stays as it was.
func (s *Session) finish(replyID string, receiving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if receiving {
		s.streaming--
	} else {
		s.awaiting--
	}
	if msg := s.findLocked(replyID); msg != nil {
		msg.Streaming = false
		cp := *msg
		s.publishLocked(EventUpdate, &cp)
		s.publishLocked(EventDone, &cp)
	}
	s.syncTypingLocked()
}

func (s *Session) findLocked(id string) *Message {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ID == id {
			return &s.messages[i]
		}
	}
	return nil
}

// syncTypingLocked shows the indicator while any send awaits its first
// fragment.
func (s *Session) syncTypingLocked() {
	typing := s.awaiting > 0
	if typing == s.typing {
		return
	}
	s.typing = typing
	s.events.Publish(eventsTopic, Event{Type: EventTyping, Typing: typing})
}

func (s *Session) publishLocked(t EventType, msg *Message) {
	s.events.Publish(eventsTopic, Event{Type: t, Message: msg, Typing: s.typing})
}

// Transcript returns a copy of every message in order.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Typing reports whether the typing indicator is shown.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Started reports whether the widget has shown anything yet.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// State reports the session state. Any send still waiting for its first
// fragment wins over one that is already streaming.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.awaiting > 0:
		return StateAwaitingFirstResponse
	case s.streaming > 0:
		return StateStreaming
	default:
		return StateIdle
	}
}

// Subscribe returns a channel of session events until ctx ends.
func (s *Session) Subscribe(ctx context.Context) (<-chan Event, string) {
	return s.events.Subscribe(ctx, eventsTopic)
}

// Unsubscribe removes a subscription.
func (s *Session) Unsubscribe(id string) {
	s.events.Unsubscribe(eventsTopic, id)
}

// Close ends every subscription.
func (s *Session) Close() {
	s.events.Close()
}
