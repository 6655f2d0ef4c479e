package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/sprakportal/backend/core/messaging"
)

type messagingTable struct {
	mutex           sync.RWMutex
	messageSeq      sequence
	replySeq        sequence
	notificationSeq sequence
	messages        map[int]*messaging.Message
	replies         map[int]*messaging.Reply
	notifications   map[int]*messaging.Notification
}

func newMessagingTable() *messagingTable {
	return &messagingTable{
		messages:      make(map[int]*messaging.Message),
		replies:       make(map[int]*messaging.Reply),
		notifications: make(map[int]*messaging.Notification),
	}
}

type messagingRepository struct {
	db *messagingTable
}

func NewMessagingRepository(db *DB) messaging.Repository {
	return &messagingRepository{db: db.messaging}
}

// attach fills in the thread's replies; callers hold at least a read lock.
func (repo *messagingRepository) attach(m messaging.Message) messaging.Message {
	m.Replies = []messaging.Reply{}
	for _, r := range repo.db.replies {
		if r.MessageID == m.ID {
			m.Replies = append(m.Replies, *r)
		}
	}
	sort.Slice(m.Replies, func(i, j int) bool { return m.Replies[i].ID < m.Replies[j].ID })
	return m
}

func (repo *messagingRepository) CreateMessage(ctx context.Context, m messaging.Message) (messaging.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m.ID = repo.db.messageSeq.next()
	repo.db.messages[m.ID] = &m
	return repo.attach(m), nil
}

func (repo *messagingRepository) QueryAllMessages(ctx context.Context) ([]messaging.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	msgs := make([]messaging.Message, 0, len(repo.db.messages))
	for _, m := range repo.db.messages {
		msgs = append(msgs, repo.attach(*m))
	}
	return msgs, nil
}

func (repo *messagingRepository) GetMessageByID(ctx context.Context, id int) (messaging.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.messages[id]; ok {
		return repo.attach(*m), nil
	}
	return messaging.Message{}, messaging.ErrMessageNotFound
}

func (repo *messagingRepository) DeleteMessagesByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.messages, id)
		for rid, r := range repo.db.replies {
			if r.MessageID == id {
				delete(repo.db.replies, rid)
			}
		}
	}
	return nil
}

func (repo *messagingRepository) CreateReply(ctx context.Context, r messaging.Reply) (messaging.Reply, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.messages[r.MessageID]; !ok {
		return messaging.Reply{}, messaging.ErrMessageNotFound
	}
	r.ID = repo.db.replySeq.next()
	repo.db.replies[r.ID] = &r
	return r, nil
}

func (repo *messagingRepository) DeleteRepliesByID(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.replies, id)
	}
	return nil
}

func (repo *messagingRepository) CreateNotifications(ctx context.Context, ns ...messaging.Notification) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, n := range ns {
		n := n
		n.ID = repo.db.notificationSeq.next()
		repo.db.notifications[n.ID] = &n
	}
	return nil
}

func (repo *messagingRepository) QueryNotificationsByUser(ctx context.Context, userID int) ([]messaging.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var ns []messaging.Notification
	for _, n := range repo.db.notifications {
		if n.UserID == userID {
			ns = append(ns, *n)
		}
	}
	return ns, nil
}

func (repo *messagingRepository) GetNotificationByID(ctx context.Context, id int) (messaging.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.notifications[id]; ok {
		return *n, nil
	}
	return messaging.Notification{}, messaging.ErrNotificationNotFound
}

func (repo *messagingRepository) MarkNotificationRead(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n, ok := repo.db.notifications[id]
	if !ok {
		return messaging.ErrNotificationNotFound
	}
	n.IsRead = messaging.Read
	return nil
}
