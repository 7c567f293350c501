package frontend

import (
	"context"
	"strings"

	"cocreate/pkg/models"
	"cocreate/pkg/utils"
)

// QuoteLen is how many runes of a parent message a reply quotes.
const QuoteLen = 60

// Thread is the conversation of one trouble.
type Thread struct {
	Deps

	TroubleID int64
	Messages  []models.Message
	Draft     string
	// ReplyTarget is the message being replied to, or nil.
	ReplyTarget *models.Message
	// Demo is set when Messages holds the demo conversation.
	Demo bool
}

func NewThread(d Deps) *Thread { return &Thread{Deps: d} }

// Load fetches the messages of troubleID, or of the selected trouble when
// troubleID is zero. The server order is kept.
func (t *Thread) Load(ctx context.Context, troubleID int64) error {
	t.Messages, t.Demo = nil, false
	if troubleID == 0 {
		s, err := t.state()
		if err != nil {
			t.fail("Could not load messages", err)
			return err
		}
		if s.Trouble == nil {
			t.TroubleID = 0
			t.fail("No trouble selected", ErrNoTroubleSelected)
			return ErrNoTroubleSelected
		}
		troubleID = s.Trouble.ID
	}
	t.TroubleID = troubleID

	list, err := t.fetch(ctx, troubleID)
	if err != nil {
		logFailure("messages_load_failed", err, "trouble_id", troubleID)
		t.fail("Could not load messages", err)
		if t.Policy.DemoConversation {
			t.useDemo()
			return nil
		}
		return err
	}
	if len(list.Messages) == 0 {
		if t.Policy.DemoConversation {
			t.useDemo()
		}
		return nil
	}
	t.Messages = list.Messages
	return nil
}

func (t *Thread) fetch(ctx context.Context, troubleID int64) (models.MessageList, error) {
	if _, err := t.authed(); err != nil {
		return models.MessageList{}, err
	}
	return t.Client.Messages(ctx, troubleID)
}

func (t *Thread) useDemo() {
	t.Messages = DemoConversation(t.TroubleID, t.now())
	t.Demo = true
}

func (t *Thread) SetDraft(s string) { t.Draft = s }

// ReplyTo makes m the parent of the next message.
func (t *Thread) ReplyTo(m models.Message) {
	m2 := m
	t.ReplyTarget = &m2
}

func (t *Thread) CancelReply() { t.ReplyTarget = nil }

// Send posts the draft as a reply to ReplyTarget, if set.
func (t *Thread) Send(ctx context.Context) (*models.Message, error) {
	var parent int64
	if t.ReplyTarget != nil {
		parent = t.ReplyTarget.ID
	}
	return t.SendText(ctx, t.Draft, parent)
}

// SendText posts text, optionally as a reply to replyToID. Blank text is a
// no-op returning nil, nil. On success the stored message is appended; on
// failure under DevPlaceholders a local placeholder is appended and returned
// along with the error.
func (t *Thread) SendText(ctx context.Context, text string, replyToID int64) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if t.TroubleID == 0 {
		t.fail("Could not send message", ErrNoTroubleSelected)
		return nil, ErrNoTroubleSelected
	}
	req := models.NewMessage{TroubleID: t.TroubleID, Content: text, ParentMessageID: replyToID}

	s, err := t.authed()
	var m models.Message
	if err == nil {
		m, err = t.Client.SendMessage(ctx, req)
	}
	if err != nil {
		logFailure("message_send_failed", err, "trouble_id", t.TroubleID)
		t.fail("Could not send message", err)
		if !t.Policy.DevPlaceholders {
			return nil, err
		}
		ph := models.Message{
			ID:              t.now().UnixMilli(),
			TroubleID:       t.TroubleID,
			SenderUserID:    s.Auth.UserID,
			SenderName:      s.Auth.UserName,
			Content:         text,
			SentAt:          t.now(),
			ParentMessageID: replyToID,
			Placeholder:     true,
		}
		if t.Demo {
			t.Messages, t.Demo = nil, false
		}
		t.Messages = append(t.Messages, ph)
		t.Draft = ""
		t.ReplyTarget = nil
		return &ph, err
	}

	if t.Demo {
		t.Messages, t.Demo = nil, false
	}
	t.Messages = append(t.Messages, m)
	t.Draft = ""
	t.ReplyTarget = nil
	t.notify("Message sent", "")
	return &m, nil
}

// ResolveParent returns the loaded message with id parentID, or nil.
func (t *Thread) ResolveParent(parentID int64) *models.Message {
	if parentID == 0 {
		return nil
	}
	for i := range t.Messages {
		if t.Messages[i].ID == parentID {
			return &t.Messages[i]
		}
	}
	return nil
}

// QuotePreview returns the truncated content of m's parent, or "" when m
// is not a reply or the parent is not loaded.
func (t *Thread) QuotePreview(m models.Message) string {
	p := t.ResolveParent(m.ParentMessageID)
	if p == nil {
		return ""
	}
	return utils.Truncate(p.Content, QuoteLen)
}

// IsOwn reports whether m was sent by the logged-in user.
func (t *Thread) IsOwn(m models.Message) bool {
	s, err := t.state()
	if err != nil || s.Auth.UserID == 0 {
		return false
	}
	return m.SenderUserID == s.Auth.UserID
}
