package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

// Role of a message author.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Fixed texts shown to the user.
const (
	WelcomeText = "مرحباً بك في **Unix Blacksteel**.\nأنا مساعدك الذكي المتقدم للبحث والدراسة.\nكيف يمكنني مساعدتك اليوم؟"
	ErrorText   = "حدث خطأ أثناء الاتصال بالخادم. يرجى المحاولة مرة أخرى."
)

// MindMapCaption is the text shown above a generated mind map.
func MindMapCaption(topic string) string {
	return "تم إنشاء خريطة ذهنية لـ: " + topic
}

// Content is the payload of a message. The implementations in this package
// are the only ones.
type Content interface {
	kind() string
}

// Text is Markdown text.
type Text struct {
	Body string
}

// Image is a generated image.
type Image struct {
	Image *genai.Image
}

// MindMap is a generated tree with its caption.
type MindMap struct {
	Caption string
	Tree    *mindmap.Node
}

// Failure replaces a reply that could not be generated.
type Failure struct {
	Text string
	Err  error
}

func (Text) kind() string    { return "TEXT" }
func (Image) kind() string   { return "IMAGE" }
func (MindMap) kind() string { return "MINDMAP" }
func (Failure) kind() string { return "ERROR" }

// Message is one transcript entry.
type Message struct {
	ID        string
	Role      Role
	Timestamp time.Time
	Content   Content
}

// NewMessage stamps content with a fresh ID and the given time.
func NewMessage(role Role, c Content, at time.Time) Message {
	return Message{ID: uuid.NewString(), Role: role, Timestamp: at, Content: c}
}

// Kind is TEXT, IMAGE, MINDMAP or ERROR.
func (m Message) Kind() string {
	if m.Content == nil {
		return ""
	}
	return m.Content.kind()
}

type messageJSON struct {
	ID          string        `json:"id"`
	Role        Role          `json:"role"`
	Type        string        `json:"type"`
	Content     string        `json:"content"`
	MindMapData *mindmap.Node `json:"mindMapData,omitempty"`
	Timestamp   int64         `json:"timestamp"`
}

// MarshalJSON flattens the content: images become data URLs and mind maps
// carry their tree in mindMapData.
func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{ID: m.ID, Role: m.Role, Type: m.Kind(), Timestamp: m.Timestamp.UnixMilli()}
	switch c := m.Content.(type) {
	case Text:
		out.Content = c.Body
	case Image:
		if c.Image != nil {
			out.Content = c.Image.DataURL()
		}
	case MindMap:
		out.Content = c.Caption
		out.MindMapData = c.Tree
	case Failure:
		out.Content = c.Text
	}
	return json.Marshal(out)
}

// Describe renders a one-line plain summary of a message.
func Describe(m Message) string {
	switch c := m.Content.(type) {
	case Text:
		return c.Body
	case Image:
		if c.Image == nil {
			return "[image]"
		}
		return fmt.Sprintf("[image %s, %d bytes]", c.Image.MIMEType, len(c.Image.Data))
	case MindMap:
		return fmt.Sprintf("%s [%d nodes]", c.Caption, mindmap.Count(c.Tree))
	case Failure:
		return c.Text
	default:
		return ""
	}
}

// Turns converts the text messages of a transcript into generation history.
// Images, mind maps and failures are not sent back to the model.
func Turns(msgs []Message) []genai.Turn {
	turns := make([]genai.Turn, 0, len(msgs))
	for _, m := range msgs {
		if t, ok := m.Content.(Text); ok {
			turns = append(turns, genai.Turn{Role: string(m.Role), Text: t.Body})
		}
	}
	return turns
}
