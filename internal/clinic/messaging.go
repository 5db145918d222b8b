package clinic

import (
	"fmt"

	"clinic-go/internal/model"
)

// MessageService stores, queries and mutates direct messages between users.
//
// A message's lifecycle: it is created unread, the receiver may mark it
// read, and the sender may delete it. There is no edit operation.
type MessageService struct {
	stores StoreProvider
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// NewMessageService creates a new MessageService with the provided dependencies.
func NewMessageService(stores StoreProvider, logger Logger, clock Clock, idgen IDGenerator) *MessageService {
	return &MessageService{stores: stores, logger: logger, clock: clock, idgen: idgen}
}

// Send creates a new unread message from sender to receiver.
func (s *MessageService) Send(senderID, receiverID, body string) (*model.Message, error) {
	if err := requireField("sender_id", senderID); err != nil {
		return nil, err
	}
	if err := requireField("receiver_id", receiverID); err != nil {
		return nil, err
	}
	if err := requireField("body", body); err != nil {
		return nil, err
	}

	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	m := &model.Message{
		ID:         s.idgen.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Status:     model.MessageUnread,
		CreatedAt:  s.clock.Now(),
	}
	if err := store.InsertMessage(m); err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	s.logger.Debug("message sent", "message_id", m.ID, "sender_id", senderID)
	return m, nil
}

// Conversation returns every message exchanged between the two users, in
// either direction, ascending by timestamp. A non-empty search term filters
// to messages whose body contains it as a case-insensitive substring.
// Both participant ids are required.
func (s *MessageService) Conversation(userID, otherUserID, searchTerm string) ([]*model.Message, error) {
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}
	if err := requireField("other_user_id", otherUserID); err != nil {
		return nil, err
	}

	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	msgs, err := store.ListConversation(userID, otherUserID, searchTerm)
	if err != nil {
		return nil, fmt.Errorf("listing conversation: %w", err)
	}
	return msgs, nil
}

// MarkRead transitions the message to read, but only when readerID is the
// designated receiver. Returns false when no row matched: the message does
// not exist, or the reader is not its receiver.
func (s *MessageService) MarkRead(messageID, readerID string) (bool, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return false, err
	}

	changed, err := store.MarkMessageRead(messageID, readerID)
	if err != nil {
		return false, fmt.Errorf("marking message read: %w", err)
	}
	return changed, nil
}

// Delete removes the message, but only when senderID is the original
// sender. Returns false when no row matched, so the call is safe to retry.
func (s *MessageService) Delete(messageID, senderID string) (bool, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return false, err
	}

	deleted, err := store.DeleteMessage(messageID, senderID)
	if err != nil {
		return false, fmt.Errorf("deleting message: %w", err)
	}
	if deleted {
		s.logger.Debug("message deleted", "message_id", messageID)
	}
	return deleted, nil
}

// UnreadCount returns the number of unread messages addressed to the user.
func (s *MessageService) UnreadCount(userID string) (int, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return 0, err
	}

	count, err := store.CountUnreadMessages(userID)
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return count, nil
}
