package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"moves/metrics"
)

// Service holds the business rules for groups, moves, votes, friendships and
// messages. Every operation opens its own session from the root handle, bound
// to the caller's context, and mutations that touch several rows run in a
// single transaction.
type Service struct {
	db      *gorm.DB
	now     func() time.Time
	metrics *metrics.Metrics
	hub     *Hub

	defaultMinVotes      int
	defaultDeadlineHours int
}

type Option func(*Service)

// WithClock replaces the wall clock used for timestamps and deadlines.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithHub(h *Hub) Option {
	return func(s *Service) { s.hub = h }
}

// WithGroupDefaults sets the vote policy given to new groups.
func WithGroupDefaults(minVotes, deadlineHours int) Option {
	return func(s *Service) {
		s.defaultMinVotes = minVotes
		s.defaultDeadlineHours = deadlineHours
	}
}

func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:                   db,
		now:                  time.Now,
		metrics:              metrics.New(),
		hub:                  NewHub(),
		defaultMinVotes:      3,
		defaultDeadlineHours: 24,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the live message fan-out used by the websocket endpoint.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Now returns the current instant in UTC.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

func (s *Service) session(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}
