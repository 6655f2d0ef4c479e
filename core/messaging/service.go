package messaging

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/sprakportal/backend/core/listquery"
	"github.com/sprakportal/backend/core/user"
)

var (
	ErrMessageNotFound      = errors.New("message not found")
	ErrReplyNotFound        = errors.New("reply not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, m Message) (Message, error)
		// QueryAllMessages returns thread roots with replies attached.
		QueryAllMessages(ctx context.Context) ([]Message, error)
		GetMessageByID(ctx context.Context, id int) (Message, error)
		DeleteMessagesByID(ctx context.Context, ids ...int) error

		CreateReply(ctx context.Context, r Reply) (Reply, error)
		DeleteRepliesByID(ctx context.Context, ids ...int) error

		CreateNotifications(ctx context.Context, ns ...Notification) error
		QueryNotificationsByUser(ctx context.Context, userID int) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id int) (Notification, error)
		MarkNotificationRead(ctx context.Context, id int) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// MessageFields wires Message into the list query pipeline; the sender_role
// filter backs the admin inbox's student/admin toggle.
func MessageFields() listquery.Fields[Message] {
	return listquery.Fields[Message]{
		Search: []func(Message) string{
			func(m Message) string { return m.Subject },
			func(m Message) string { return m.Content },
			func(m Message) string { return m.SenderName },
		},
		Filter: map[string]func(Message) string{
			"sender_role": func(m Message) string { return m.SenderRole },
		},
		Text: func(m Message) string { return m.Subject },
		Time: func(m Message) time.Time { return m.CreatedAt },
		ID:   func(m Message) int { return m.ID },
	}
}

// NotificationFields wires Notification into the list query pipeline.
func NotificationFields() listquery.Fields[Notification] {
	return listquery.Fields[Notification]{
		Search: []func(Notification) string{
			func(n Notification) string { return n.Title },
			func(n Notification) string { return n.Message },
		},
		Filter: map[string]func(Notification) string{
			"is_read": func(n Notification) string { return strconv.Itoa(n.IsRead) },
		},
		Text: func(n Notification) string { return n.Title },
		Time: func(n Notification) time.Time { return n.CreatedAt },
		ID:   func(n Notification) int { return n.ID },
	}
}

func (svc *Service) Send(ctx context.Context, sender user.User, nm NewMessage) (Message, error) {
	msg, err := svc.repo.CreateMessage(ctx, Message{
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		SenderRole:  sender.Role,
		RecipientID: nm.RecipientID,
		Subject:     nm.Subject,
		Content:     nm.Content,
		Replies:     []Reply{},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}

	// private admin messages show up in the student's notification list
	if sender.IsAdmin() && nm.RecipientID != 0 {
		err = svc.repo.CreateNotifications(ctx, Notification{
			UserID:    nm.RecipientID,
			Title:     "Nytt meddelande",
			Message:   nm.Subject,
			Link:      null.StringFrom("/messages/" + strconv.Itoa(msg.ID)),
			CreatedAt: msg.CreatedAt,
		})
		if err != nil {
			return Message{}, errors.Wrap(err, "notifying recipient")
		}
	}
	return msg, nil
}

// QueryInbox lists the threads a user may see: everything for admins, own
// threads (sent or received) for students.
func (svc *Service) QueryInbox(ctx context.Context, viewer user.User, params listquery.Params) (listquery.Result[Message], error) {
	msgs, err := svc.repo.QueryAllMessages(ctx)
	if err != nil {
		return listquery.Result[Message]{}, err
	}
	if !viewer.IsAdmin() {
		kept := msgs[:0]
		for _, m := range msgs {
			if m.SenderID == viewer.ID || m.RecipientID == viewer.ID {
				kept = append(kept, m)
			}
		}
		msgs = kept
	}
	return listquery.Apply(msgs, params, MessageFields()), nil
}

// GetThread returns a message with replies; students may only read their own.
func (svc *Service) GetThread(ctx context.Context, viewer user.User, id int) (Message, error) {
	msg, err := svc.repo.GetMessageByID(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if !viewer.IsAdmin() && msg.SenderID != viewer.ID && msg.RecipientID != viewer.ID {
		return Message{}, ErrMessageNotFound
	}
	return msg, nil
}

func (svc *Service) Reply(ctx context.Context, viewer user.User, messageID int, nr NewReply) (Reply, error) {
	if _, err := svc.GetThread(ctx, viewer, messageID); err != nil {
		return Reply{}, err
	}
	return svc.repo.CreateReply(ctx, Reply{
		MessageID:  messageID,
		SenderID:   viewer.ID,
		SenderName: viewer.Name,
		SenderRole: viewer.Role,
		Content:    nr.Content,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) DeleteMessages(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteMessagesByID(ctx, ids...)
}

func (svc *Service) DeleteReplies(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteRepliesByID(ctx, ids...)
}

// SendGlobal fans an announcement out as one notification per recipient.
func (svc *Service) SendGlobal(ctx context.Context, gm GlobalMessage, recipients []user.User) (int, error) {
	now := time.Now().UTC()
	ns := make([]Notification, 0, len(recipients))
	for _, usr := range recipients {
		if !usr.IsActive {
			continue
		}
		n := Notification{
			UserID:    usr.ID,
			Title:     gm.Title,
			Message:   gm.Message,
			CreatedAt: now,
		}
		if gm.Link != "" {
			n.Link = null.StringFrom(gm.Link)
		}
		ns = append(ns, n)
	}
	if len(ns) == 0 {
		return 0, nil
	}
	if err := svc.repo.CreateNotifications(ctx, ns...); err != nil {
		return 0, err
	}
	return len(ns), nil
}

// Notifications

func (svc *Service) QueryNotifications(ctx context.Context, userID int, params listquery.Params) (listquery.Result[Notification], error) {
	ns, err := svc.repo.QueryNotificationsByUser(ctx, userID)
	if err != nil {
		return listquery.Result[Notification]{}, err
	}
	return listquery.Apply(ns, params, NotificationFields()), nil
}

func (svc *Service) GetNotification(ctx context.Context, userID, id int) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		return Notification{}, ErrNotificationNotFound
	}
	return n, nil
}

// MarkRead flips the read flag only after ownership is confirmed; the unread
// set shrinks on the next fetch, never optimistically.
func (svc *Service) MarkRead(ctx context.Context, userID, id int) (Notification, error) {
	n, err := svc.GetNotification(ctx, userID, id)
	if err != nil {
		return Notification{}, err
	}
	if n.IsRead == Read {
		return n, nil
	}
	if err := svc.repo.MarkNotificationRead(ctx, id); err != nil {
		return Notification{}, err
	}
	n.IsRead = Read
	return n, nil
}
