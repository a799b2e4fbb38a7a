package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/techhub-commerce/admin-gateway/internal/drafts"
	"github.com/techhub-commerce/admin-gateway/internal/staging"
	"github.com/techhub-commerce/admin-gateway/internal/submission"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
)

// Session is one admin's product-draft editing workspace: the draft form, its
// staged image set, and the orchestrator that submits them. The session mutex
// serializes draft and staging mutations, which keeps the staging manager
// single-writer. Submission runs outside the mutex; mutations are refused
// while an attempt is in flight instead.
type Session struct {
	id string

	mu         sync.Mutex
	draft      *drafts.Draft
	staging    *staging.Manager
	orch       *submission.Orchestrator
	createdAt  time.Time
	lastActive time.Time
	updatedAt  time.Time
}

func (s *Session) ID() string {
	return s.id
}

// Mutate runs fn with exclusive access to the draft and staged set. Refused
// while a submission attempt is in flight so the orchestrator's snapshot of
// the staged set cannot drift mid-attempt.
func (s *Session) Mutate(fn func(draft *drafts.Draft, images *staging.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	if state := s.orch.State(); state != submission.StateIdle {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "draft is locked while a submission is in flight").
			WithDetails(map[string]any{"state": string(state)})
	}
	return fn(s.draft, s.staging)
}

// View runs fn with read access to the draft and staged set.
func (s *Session) View(fn func(draft *drafts.Draft, images *staging.Manager)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	fn(s.draft, s.staging)
}

// Submit hands the session's draft to the orchestrator. The session mutex is
// not held across the attempt; the orchestrator's own re-entrancy guard turns
// a concurrent second attempt into a state conflict, and Mutate refuses
// edits for the duration.
func (s *Session) Submit(ctx context.Context, bearer string) (*submission.Receipt, error) {
	s.touch()
	return s.orch.Submit(ctx, s.draft, bearer)
}

// SubmissionState reports the orchestrator's current phase.
func (s *Session) SubmissionState() submission.State {
	return s.orch.State()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

// UpdatedAt reports the last draft mutation time.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}
