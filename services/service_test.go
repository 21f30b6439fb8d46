package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"moves/config"
	"moves/database"
	"moves/models"
)

// testClock is a settable clock shared by a service under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var testEpoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// setupTestService opens a fresh SQLite database in a temp dir and returns a
// service whose clock starts at testEpoch.
func setupTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()

	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	clock := newTestClock(testEpoch)
	return New(db, WithClock(clock.Now)), clock
}

func mustUser(t *testing.T, s *Service, username string) *models.User {
	t.Helper()
	user, err := s.Register(context.Background(), models.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return user
}

func mustGroup(t *testing.T, s *Service, name string, owner uint) *models.Group {
	t.Helper()
	group, err := s.CreateGroup(context.Background(), models.GroupInput{Name: name, CreatedBy: owner}, Actor{UserID: owner})
	if err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	return group
}

func mustMove(t *testing.T, s *Service, groupID, creator uint, name string) *models.MoveResponse {
	t.Helper()
	move, err := s.CreateMove(context.Background(), groupID, models.MoveInput{Name: name, CreatedBy: creator}, Actor{UserID: creator})
	if err != nil {
		t.Fatalf("CreateMove(%s) failed: %v", name, err)
	}
	return move
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }

// assertKind fails unless err is a *Error of the given kind.
func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v (%s)", kind, se.Kind, se.Message)
	}
}
