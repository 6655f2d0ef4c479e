package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/sprakportal/backend/core/messaging"
)

type messagingRepository struct {
	db *sqlx.DB
}

func NewMessagingRepository(db *sqlx.DB) messaging.Repository {
	return &messagingRepository{db: db}
}

const messageColumns = `id, sender_id, sender_name, sender_role, recipient_id, subject, content, created_at`

func (repo *messagingRepository) attachReplies(ctx context.Context, msgs []messaging.Message) error {
	byID := make(map[int]int, len(msgs)) // message ID -> index
	ids := make([]int, 0, len(msgs))
	for i := range msgs {
		msgs[i].Replies = []messaging.Reply{}
		byID[msgs[i].ID] = i
		ids = append(ids, msgs[i].ID)
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, message_id, sender_id, sender_name, sender_role, content, created_at
		 FROM reply WHERE message_id = ANY($1) ORDER BY id`, intArray(ids))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r messaging.Reply
		if err = rows.Scan(&r.ID, &r.MessageID, &r.SenderID, &r.SenderName, &r.SenderRole, &r.Content, &r.CreatedAt); err != nil {
			return err
		}
		idx := byID[r.MessageID]
		msgs[idx].Replies = append(msgs[idx].Replies, r)
	}
	return rows.Err()
}

func (repo *messagingRepository) CreateMessage(ctx context.Context, m messaging.Message) (messaging.Message, error) {
	query := `
		INSERT INTO message (sender_id, sender_name, sender_role, recipient_id, subject, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		m.SenderID, m.SenderName, m.SenderRole, m.RecipientID, m.Subject, m.Content, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return messaging.Message{}, err
	}
	m.Replies = []messaging.Reply{}
	return m, nil
}

func (repo *messagingRepository) QueryAllMessages(ctx context.Context) ([]messaging.Message, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT `+messageColumns+` FROM message ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []messaging.Message
	for rows.Next() {
		var m messaging.Message
		if err = rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.SenderRole, &m.RecipientID, &m.Subject, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if err = repo.attachReplies(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (repo *messagingRepository) GetMessageByID(ctx context.Context, id int) (messaging.Message, error) {
	var m messaging.Message
	err := repo.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM message WHERE id = $1`, id).
		Scan(&m.ID, &m.SenderID, &m.SenderName, &m.SenderRole, &m.RecipientID, &m.Subject, &m.Content, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return messaging.Message{}, messaging.ErrMessageNotFound
	}
	if err != nil {
		return messaging.Message{}, err
	}
	msgs := []messaging.Message{m}
	if err = repo.attachReplies(ctx, msgs); err != nil {
		return messaging.Message{}, err
	}
	return msgs[0], nil
}

func (repo *messagingRepository) DeleteMessagesByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM message WHERE id = ANY($1)`, intArray(ids))
	return err
}

func (repo *messagingRepository) CreateReply(ctx context.Context, r messaging.Reply) (messaging.Reply, error) {
	query := `
		INSERT INTO reply (message_id, sender_id, sender_name, sender_role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		r.MessageID, r.SenderID, r.SenderName, r.SenderRole, r.Content, r.CreatedAt,
	).Scan(&r.ID)
	return r, err
}

func (repo *messagingRepository) DeleteRepliesByID(ctx context.Context, ids ...int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM reply WHERE id = ANY($1)`, intArray(ids))
	return err
}

func (repo *messagingRepository) CreateNotifications(ctx context.Context, ns ...messaging.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO notification (user_id, title, message, link, is_read, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	for _, n := range ns {
		if _, err = tx.ExecContext(ctx, query, n.UserID, n.Title, n.Message, n.Link, n.IsRead, n.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (repo *messagingRepository) QueryNotificationsByUser(ctx context.Context, userID int) ([]messaging.Notification, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, link, is_read, created_at FROM notification WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ns []messaging.Notification
	for rows.Next() {
		var n messaging.Notification
		if err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

func (repo *messagingRepository) GetNotificationByID(ctx context.Context, id int) (messaging.Notification, error) {
	var n messaging.Notification
	err := repo.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, message, link, is_read, created_at FROM notification WHERE id = $1`, id).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return messaging.Notification{}, messaging.ErrNotificationNotFound
	}
	return n, err
}

func (repo *messagingRepository) MarkNotificationRead(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE notification SET is_read = 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return messaging.ErrNotificationNotFound
	}
	return nil
}
