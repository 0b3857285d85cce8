package question

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medqbank/qbank-platform/internal/db/store"
	"github.com/medqbank/qbank-platform/internal/mode"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

type questionRepo interface {
	FilterIDs(ctx context.Context, params store.FilterQuestionIDsParams) ([]uuid.UUID, error)
	UserQuizItems(ctx context.Context, userID uuid.UUID) ([]store.UserQuizItemRow, error)
	UserResponses(ctx context.Context, userID uuid.UUID) ([]store.UserResponseRow, error)
}

// CountsCache caches availability counts keyed by user + filters.
type CountsCache interface {
	Get(ctx context.Context, key string) (map[string]int, bool, error)
	Set(ctx context.Context, key string, counts map[string]int) error
}

// ServiceOptions configures selection bounds and randomness.
type ServiceOptions struct {
	MinTake int
	MaxTake int
	// DefaultTake applies when a request omits the count.
	DefaultTake int
	// Shuffle permutes n elements via swap; defaults to rand.Shuffle.
	// Injectable for deterministic tests.
	Shuffle func(n int, swap func(i, j int))
}

// Service selects questions and computes availability counts.
type Service struct {
	repo    questionRepo
	cache   CountsCache
	opts    ServiceOptions
	logger  zerolog.Logger
	shuffle func(n int, swap func(i, j int))
}

// NewService creates a selection service.
func NewService(repo questionRepo, cache CountsCache, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.MinTake <= 0 {
		opts.MinTake = 1
	}
	if opts.MaxTake < opts.MinTake {
		opts.MaxTake = 40
	}
	if opts.DefaultTake <= 0 {
		opts.DefaultTake = opts.MinTake
	}
	shuffle := opts.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &Service{
		repo:    repo,
		cache:   cache,
		opts:    opts,
		logger:  logger.With().Str("component", "question_selector").Logger(),
		shuffle: shuffle,
	}
}

// Select returns a randomized, de-duplicated ordered list of question
// ids satisfying the criteria, at most Take long. Partial fulfillment
// is success; zero matches returns ErrNoMatch. Validation happens
// before any store round-trip.
func (s *Service) Select(ctx context.Context, criteria Criteria) ([]uuid.UUID, error) {
	normalized, err := s.normalize(criteria)
	if err != nil {
		return nil, err
	}

	eligible, err := s.eligibleIDs(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, httperrors.ErrNoMatch
	}

	// Uniform sample without replacement: shuffle the whole pool, then cut.
	s.shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > normalized.Take {
		eligible = eligible[:normalized.Take]
	}

	s.logger.Debug().
		Str("user_id", normalized.UserID.String()).
		Int("selected", len(eligible)).
		Int("requested", normalized.Take).
		Msg("questions selected")
	return eligible, nil
}

// normalize validates the criteria and canonicalizes filter values
// (trimmed, lower-cased, de-duplicated) with Take clamped into bounds.
func (s *Service) normalize(criteria Criteria) (Criteria, error) {
	out := criteria
	out.ScopeKeys = normalizeValues(criteria.ScopeKeys)
	if len(out.ScopeKeys) == 0 {
		return Criteria{}, fmt.Errorf("%w: at least one scope key is required", httperrors.ErrValidation)
	}
	out.Resources = normalizeValues(criteria.Resources)
	out.Disciplines = normalizeValues(criteria.Disciplines)
	out.Systems = normalizeValues(criteria.Systems)
	out.Types = normalizeValues(criteria.Types)

	seen := make(map[mode.Mode]struct{}, len(criteria.Modes))
	out.Modes = make([]mode.Mode, 0, len(criteria.Modes))
	for _, m := range criteria.Modes {
		canonical, ok := mode.Canonicalize(string(m))
		if !ok {
			return Criteria{}, fmt.Errorf("%w: unknown mode filter %q", httperrors.ErrValidation, m)
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out.Modes = append(out.Modes, canonical)
	}

	if out.Take <= 0 {
		out.Take = s.opts.DefaultTake
	}
	if out.Take < s.opts.MinTake {
		out.Take = s.opts.MinTake
	}
	if out.Take > s.opts.MaxTake {
		out.Take = s.opts.MaxTake
	}
	return out, nil
}

// eligibleIDs computes the candidate set (tag filters) and, when mode
// filters are present, keeps only questions whose per-user mode matches.
func (s *Service) eligibleIDs(ctx context.Context, criteria Criteria) ([]uuid.UUID, error) {
	candidates, err := s.repo.FilterIDs(ctx, store.FilterQuestionIDsParams{
		ScopeValues:      criteria.ScopeKeys,
		ResourceValues:   criteria.Resources,
		DisciplineValues: criteria.Disciplines,
		SystemValues:     criteria.Systems,
		TypeValues:       criteria.Types,
	})
	if err != nil {
		return nil, fmt.Errorf("filter questions: %w", err)
	}
	if len(criteria.Modes) == 0 || len(candidates) == 0 {
		return candidates, nil
	}

	history, err := s.loadHistory(ctx, criteria.UserID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[mode.Mode]struct{}, len(criteria.Modes))
	for _, m := range criteria.Modes {
		wanted[m] = struct{}{}
	}

	eligible := candidates[:0]
	for _, id := range candidates {
		if _, ok := wanted[history.classify(id)]; ok {
			eligible = append(eligible, id)
		}
	}
	return eligible, nil
}

func (s *Service) loadHistory(ctx context.Context, userID uuid.UUID) (userHistory, error) {
	items, err := s.repo.UserQuizItems(ctx, userID)
	if err != nil {
		return userHistory{}, fmt.Errorf("list user quiz items: %w", err)
	}
	responses, err := s.repo.UserResponses(ctx, userID)
	if err != nil {
		return userHistory{}, fmt.Errorf("list user responses: %w", err)
	}
	return buildHistory(items, responses), nil
}

func normalizeValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
