package services

import (
	"context"
	"testing"
	"time"

	"moves/models"
)

func TestConversationMarksRead(t *testing.T) {
	s, clock := setupTestService(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	send := func(from, to uint, content string) {
		t.Helper()
		clock.Advance(time.Second)
		if _, err := s.SendMessage(ctx, models.MessageInput{SenderID: from, RecipientID: to, Content: content}); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
	}
	send(alice.ID, bob.ID, "hi")
	send(bob.ID, alice.ID, "hey")
	send(alice.ID, bob.ID, "dinner?")

	conversations, err := s.Conversations(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	if conversations[0].UnreadCount != 2 || conversations[0].LastMessage.Content != "dinner?" {
		t.Errorf("unexpected conversation: %+v", conversations[0])
	}

	messages, err := s.Conversation(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("Conversation failed: %v", err)
	}
	if len(messages) != 3 || messages[0].Content != "hi" || messages[2].Content != "dinner?" {
		t.Fatalf("unexpected messages: %+v", messages)
	}
	for _, m := range messages {
		if m.RecipientID == bob.ID && !m.Read {
			t.Errorf("message %d to bob should be read", m.ID)
		}
	}

	// alice has not read bob's reply
	var unread int64
	s.db.Model(&models.Message{}).Where("recipient_id = ? AND read = ?", alice.ID, false).Count(&unread)
	if unread != 1 {
		t.Errorf("alice unread = %d, want 1", unread)
	}

	conversations, _ = s.Conversations(ctx, bob.ID)
	if conversations[0].UnreadCount != 0 {
		t.Errorf("unread after reading = %d, want 0", conversations[0].UnreadCount)
	}
}

func TestConversationsSortedByLastMessage(t *testing.T) {
	s, clock := setupTestService(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	carol := mustUser(t, s, "carol")

	for _, to := range []uint{bob.ID, carol.ID} {
		clock.Advance(time.Minute)
		if _, err := s.SendMessage(ctx, models.MessageInput{SenderID: alice.ID, RecipientID: to, Content: "ping"}); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
	}

	conversations, err := s.Conversations(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(conversations) != 2 || conversations[0].User.ID != carol.ID || conversations[1].User.ID != bob.ID {
		t.Errorf("unexpected order: %+v", conversations)
	}
}

func TestSendMessageValidation(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")

	_, err := s.SendMessage(ctx, models.MessageInput{SenderID: alice.ID, RecipientID: 999, Content: "hello"})
	assertKind(t, err, ErrNotFound)

	_, err = s.SendMessage(ctx, models.MessageInput{SenderID: 999, RecipientID: alice.ID, Content: "hello"})
	assertKind(t, err, ErrNotFound)

	_, err = s.SendMessage(ctx, models.MessageInput{SenderID: alice.ID, RecipientID: alice.ID, Content: "   "})
	assertKind(t, err, ErrInvalid)
}

func TestSendMessagePublishes(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	ch, cancel := s.Hub().Subscribe(bob.ID)
	defer cancel()

	sent, err := s.SendMessage(ctx, models.MessageInput{SenderID: alice.ID, RecipientID: bob.ID, Content: "live"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	select {
	case got := <-ch:
		if got.ID != sent.ID || got.Content != "live" {
			t.Errorf("received %+v, want message %d", got, sent.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("message was not published")
	}
}
