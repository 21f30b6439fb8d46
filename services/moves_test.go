package services

import (
	"context"
	"testing"
	"time"

	"moves/models"
)

func TestComputeTiming(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	move := models.Move{CreatedAt: created}
	group := models.Group{VoteDeadlineHours: 2}

	tests := []struct {
		name      string
		now       time.Time
		remaining time.Duration
		expired   bool
	}{
		{"at creation", created, 2 * time.Hour, false},
		{"half way", created.Add(time.Hour), time.Hour, false},
		{"exactly at deadline", created.Add(2 * time.Hour), 0, false},
		{"past deadline", created.Add(2*time.Hour + time.Second), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing := ComputeTiming(move, group, tt.now)
			if !timing.Deadline.Equal(created.Add(2 * time.Hour)) {
				t.Errorf("deadline = %v, want %v", timing.Deadline, created.Add(2*time.Hour))
			}
			if timing.TimeRemaining != tt.remaining {
				t.Errorf("remaining = %v, want %v", timing.TimeRemaining, tt.remaining)
			}
			if timing.IsExpired != tt.expired {
				t.Errorf("expired = %v, want %v", timing.IsExpired, tt.expired)
			}
		})
	}
}

func TestComputeTimingNormalizesZone(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	move := models.Move{CreatedAt: time.Date(2024, 1, 1, 5, 0, 0, 0, est)}
	group := models.Group{VoteDeadlineHours: 1}

	timing := ComputeTiming(move, group, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC))
	if timing.Deadline.Location() != time.UTC {
		t.Errorf("deadline location = %v, want UTC", timing.Deadline.Location())
	}
	if !timing.Deadline.Equal(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("deadline = %v", timing.Deadline)
	}
	if timing.TimeRemaining != 30*time.Minute {
		t.Errorf("remaining = %v, want 30m", timing.TimeRemaining)
	}
}

func TestListMovesDeadline(t *testing.T) {
	s, clock := setupTestService(t)
	ctx := context.Background()

	owner := mustUser(t, s, "alice")
	group := mustGroup(t, s, "Friday plans", owner.ID)
	created := mustMove(t, s, group.ID, owner.ID, "Bowling")

	if created.TimeRemaining != 24*3600 {
		t.Errorf("time_remaining at creation = %d, want %d", created.TimeRemaining, 24*3600)
	}

	first, err := s.ListMoves(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMoves failed: %v", err)
	}
	second, err := s.ListMoves(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMoves failed: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 move, got %d and %d", len(first), len(second))
	}

	want := testEpoch.Add(24 * time.Hour)
	if !first[0].Deadline.Equal(want) || !second[0].Deadline.Equal(want) {
		t.Errorf("deadlines = %v / %v, want %v", first[0].Deadline, second[0].Deadline, want)
	}
	if first[0].TimeRemaining != second[0].TimeRemaining {
		t.Errorf("time_remaining changed between reads at the same instant")
	}

	clock.Advance(2 * time.Hour)
	moves, err := s.ListMoves(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMoves failed: %v", err)
	}
	if moves[0].TimeRemaining != 22*3600 {
		t.Errorf("time_remaining = %d, want %d", moves[0].TimeRemaining, 22*3600)
	}

	// shortening the deadline applies to existing moves
	_, err = s.UpdateSettings(ctx, group.ID, models.SettingsInput{UserID: &owner.ID, VoteDeadlineHours: intPtr(1)}, Actor{UserID: owner.ID})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	moves, err = s.ListMoves(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMoves failed: %v", err)
	}
	if !moves[0].IsExpired || moves[0].TimeRemaining != 0 {
		t.Errorf("expected expired move with no time left, got %+v", moves[0])
	}
}

func TestListMovesOrderAndMissingGroup(t *testing.T) {
	s, clock := setupTestService(t)
	ctx := context.Background()

	owner := mustUser(t, s, "alice")
	group := mustGroup(t, s, "Weekend", owner.ID)

	mustMove(t, s, group.ID, owner.ID, "Hike")
	clock.Advance(time.Minute)
	mustMove(t, s, group.ID, owner.ID, "Brunch")

	moves, err := s.ListMoves(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMoves failed: %v", err)
	}
	if len(moves) != 2 || moves[0].Name != "Hike" || moves[1].Name != "Brunch" {
		t.Errorf("unexpected order: %+v", moves)
	}

	_, err = s.ListMoves(ctx, 999)
	assertKind(t, err, ErrNotFound)

	_, err = s.CreateMove(ctx, 999, models.MoveInput{Name: "x", CreatedBy: owner.ID}, Actor{})
	assertKind(t, err, ErrNotFound)
}

func TestUpdateMove(t *testing.T) {
	s, clock := setupTestService(t)
	ctx := context.Background()

	owner := mustUser(t, s, "alice")
	group := mustGroup(t, s, "Weekend", owner.ID)
	move := mustMove(t, s, group.ID, owner.ID, "Hike")

	clock.Advance(time.Hour)

	desc := "Bring water"
	updated, err := s.UpdateMove(ctx, move.ID, models.MoveUpdateInput{Description: &desc}, Actor{})
	if err != nil {
		t.Fatalf("UpdateMove failed: %v", err)
	}
	if updated.Name != "Hike" || updated.Description != desc {
		t.Errorf("unexpected move: %+v", updated)
	}
	if !updated.Deadline.Equal(move.Deadline) {
		t.Errorf("editing changed the deadline: %v -> %v", move.Deadline, updated.Deadline)
	}

	empty := "  "
	_, err = s.UpdateMove(ctx, move.ID, models.MoveUpdateInput{Name: &empty}, Actor{})
	assertKind(t, err, ErrInvalid)

	_, err = s.UpdateMove(ctx, 999, models.MoveUpdateInput{Description: &desc}, Actor{})
	assertKind(t, err, ErrNotFound)
}

func TestDeleteMoveRemovesVotes(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()

	owner := mustUser(t, s, "alice")
	group := mustGroup(t, s, "Weekend", owner.ID)
	move := mustMove(t, s, group.ID, owner.ID, "Hike")

	if _, err := s.ToggleVote(ctx, move.ID, owner.ID); err != nil {
		t.Fatalf("ToggleVote failed: %v", err)
	}

	if err := s.DeleteMove(ctx, move.ID, Actor{UserID: owner.ID}); err != nil {
		t.Fatalf("DeleteMove failed: %v", err)
	}

	var votes int64
	s.db.Model(&models.Vote{}).Where("move_id = ?", move.ID).Count(&votes)
	if votes != 0 {
		t.Errorf("expected votes to be removed, found %d", votes)
	}

	assertKind(t, s.DeleteMove(ctx, move.ID, Actor{}), ErrNotFound)
}
