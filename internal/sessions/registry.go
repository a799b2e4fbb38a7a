package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/techhub-commerce/admin-gateway/internal/drafts"
	"github.com/techhub-commerce/admin-gateway/internal/staging"
	"github.com/techhub-commerce/admin-gateway/internal/submission"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
	"github.com/techhub-commerce/admin-gateway/pkg/metrics"
)

const (
	defaultIdleTTL       = 2 * time.Hour
	defaultSweepInterval = 5 * time.Minute
)

// RegistryConfig wires the collaborators every new session needs.
type RegistryConfig struct {
	Uploader      submission.Uploader
	Products      submission.ProductCreator
	Logger        *logger.Logger
	Metrics       *metrics.PipelineMetrics
	MinImages     int
	MaxImages     int
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Registry tracks live draft sessions by id and reclaims abandoned ones. A
// session whose orchestrator is mid-attempt is never swept, whatever its
// idle time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	uploader      submission.Uploader
	products      submission.ProductCreator
	logg          *logger.Logger
	metrics       *metrics.PipelineMetrics
	minImages     int
	maxImages     int
	idleTTL       time.Duration
	sweepInterval time.Duration

	done chan struct{}
	once sync.Once
}

func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if cfg.Products == nil {
		return nil, fmt.Errorf("product creator required")
	}
	if cfg.MinImages <= 0 {
		cfg.MinImages = staging.DefaultMinImages
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = staging.DefaultMaxImages
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	return &Registry{
		sessions:      make(map[string]*Session),
		uploader:      cfg.Uploader,
		products:      cfg.Products,
		logg:          cfg.Logger,
		metrics:       cfg.Metrics,
		minImages:     cfg.MinImages,
		maxImages:     cfg.MaxImages,
		idleTTL:       cfg.IdleTTL,
		sweepInterval: cfg.SweepInterval,
		done:          make(chan struct{}),
	}, nil
}

// Create opens a fresh draft session.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	manager, err := staging.NewManager(r.minImages, r.maxImages)
	if err != nil {
		return nil, err
	}
	orch, err := submission.NewOrchestrator(manager, r.uploader, r.products, r.logg, r.metrics)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		id:         uuid.NewString(),
		draft:      drafts.New(),
		staging:    manager,
		orch:       orch,
		createdAt:  now,
		lastActive: now,
		updatedAt:  now,
	}
	// The notify callback fires inside Mutate, which already holds the
	// session mutex.
	session.draft.SetNotify(func() { session.updatedAt = time.Now() })

	r.mu.Lock()
	r.sessions[session.id] = session
	r.mu.Unlock()

	if r.logg != nil {
		r.logg.Info(r.logg.WithDraftID(ctx, session.id), "draft session created")
	}
	return session, nil
}

// Get resolves a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft session not found")
	}
	return session, nil
}

// Delete removes a session, silently ignoring unknown ids.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Start launches the idle-session janitor. Call Close to stop it.
func (r *Registry) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-ticker.C:
				r.sweep(ctx, time.Now())
			}
		}
	}()
}

// Close stops the janitor. Idempotent.
func (r *Registry) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Registry) sweep(ctx context.Context, now time.Time) {
	r.mu.Lock()
	var expired []string
	for id, session := range r.sessions {
		if session.SubmissionState() != submission.StateIdle {
			continue
		}
		if session.idleSince(now) >= r.idleTTL {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	if len(expired) > 0 && r.logg != nil {
		logCtx := r.logg.WithField(ctx, "expired_sessions", len(expired))
		r.logg.Info(logCtx, "reclaimed idle draft sessions")
	}
}
