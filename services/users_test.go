package services

import (
	"context"
	"testing"

	"moves/models"
)

func TestRegister(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, models.RegisterInput{Username: " alice ", Email: "Alice@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("password should be stored hashed")
	}

	_, err = s.Register(ctx, models.RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"})
	assertKind(t, err, ErrInvalid)

	_, err = s.Register(ctx, models.RegisterInput{Username: "other", Email: "alice@example.com", Password: "secret1"})
	assertKind(t, err, ErrInvalid)
}

func TestAuthenticate(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")

	user, err := s.Authenticate(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != alice.ID {
		t.Errorf("authenticated user %d, want %d", user.ID, alice.ID)
	}

	_, err = s.Authenticate(ctx, "alice", "wrong")
	assertKind(t, err, ErrUnauthorized)

	_, err = s.Authenticate(ctx, "nobody", "secret1")
	assertKind(t, err, ErrUnauthorized)
}
