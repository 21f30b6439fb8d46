package services

import (
	"testing"

	"moves/models"
)

func TestHubPublish(t *testing.T) {
	hub := NewHub()

	first, cancelFirst := hub.Subscribe(7)
	second, cancelSecond := hub.Subscribe(7)
	defer cancelSecond()

	if n := hub.Subscribers(7); n != 2 {
		t.Fatalf("subscribers = %d, want 2", n)
	}

	if n := hub.Publish(models.Message{ID: 1, RecipientID: 7}); n != 2 {
		t.Errorf("delivered = %d, want 2", n)
	}
	if n := hub.Publish(models.Message{ID: 2, RecipientID: 8}); n != 0 {
		t.Errorf("delivered to wrong recipient: %d", n)
	}

	if msg := <-first; msg.ID != 1 {
		t.Errorf("first got %d, want 1", msg.ID)
	}
	if msg := <-second; msg.ID != 1 {
		t.Errorf("second got %d, want 1", msg.ID)
	}

	cancelFirst()
	cancelFirst()
	if _, ok := <-first; ok {
		t.Error("channel should be closed after cancel")
	}
	if n := hub.Subscribers(7); n != 1 {
		t.Errorf("subscribers after cancel = %d, want 1", n)
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(models.Message{ID: uint(i), RecipientID: 1})
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered = %d, want %d", len(ch), subscriberBuffer)
	}
}
