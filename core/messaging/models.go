package messaging

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/sprakportal/backend/core"
)

// Message is one private thread root between a student and the admin team.
type Message struct {
	ID          int       `json:"id"`
	SenderID    int       `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	SenderRole  string    `json:"sender_role"`
	RecipientID int       `json:"recipient_id,omitempty"` // 0 when addressed to the admin team
	Subject     string    `json:"subject"`
	Content     string    `json:"content"`
	Replies     []Reply   `json:"replies"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Reply struct {
	ID         int       `json:"id"`
	MessageID  int       `json:"message_id"`
	SenderID   int       `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type NewMessage struct {
	RecipientID int    `json:"recipient_id"`
	Subject     string `json:"subject" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

func (nm *NewMessage) Validate(svc *Service) error {
	nm.Subject = core.CleanString(nm.Subject)
	nm.Content = core.CleanString(nm.Content)
	return svc.validate.Struct(nm)
}

type NewReply struct {
	Content string `json:"content" validate:"required"`
}

func (nr *NewReply) Validate(svc *Service) error {
	nr.Content = core.CleanString(nr.Content)
	return svc.validate.Struct(nr)
}

// GlobalMessage is broadcast by an admin and lands as one notification per
// active student.
type GlobalMessage struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	Link    string `json:"link"`
}

func (gm *GlobalMessage) Validate(svc *Service) error {
	gm.Title = core.CleanString(gm.Title)
	gm.Message = core.CleanString(gm.Message)
	return svc.validate.Struct(gm)
}

// Notification read states; the wire format keeps the original's 0/1 flag.
const (
	Unread = 0
	Read   = 1
)

type Notification struct {
	ID        int         `json:"id"`
	UserID    int         `json:"-"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Link      null.String `json:"link,omitempty"`
	IsRead    int         `json:"is_read"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}
