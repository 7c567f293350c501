package models

import "time"

// Message is one entry of a trouble's conversation. ParentMessageID is zero
// for top-level messages. Placeholder marks messages synthesized locally by a
// client after a failed send; the server never stores or returns them.
type Message struct {
	ID              int64     `json:"message_id"`
	TroubleID       int64     `json:"trouble_id"`
	SenderUserID    int64     `json:"sender_user_id"`
	SenderName      string    `json:"sender_name"`
	Content         string    `json:"content"`
	SentAt          time.Time `json:"sent_at"`
	ParentMessageID int64     `json:"parent_message_id,omitempty"`
	Placeholder     bool      `json:"-"`
}

type MessageList struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

// NewMessage is the request body for posting a message.
type NewMessage struct {
	TroubleID       int64  `json:"trouble_id"`
	Content         string `json:"content"`
	ParentMessageID int64  `json:"parent_message_id,omitempty"`
}
