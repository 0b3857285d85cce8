package question

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/medqbank/qbank-platform/internal/db/store"
	"github.com/medqbank/qbank-platform/internal/mode"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

// ModeCounts reports, per mode, how many questions in the given scope
// are available to the user. Drives the create-test UI. Results are
// cached; store errors bypass the cache.
func (s *Service) ModeCounts(ctx context.Context, userID uuid.UUID, scopeKeys []string) (map[string]int, error) {
	scope := normalizeValues(scopeKeys)
	if len(scope) == 0 {
		return nil, fmt.Errorf("%w: at least one scope key is required", httperrors.ErrValidation)
	}

	key := countsKey("modecounts", userID, scope)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return cached, nil
		}
	}

	candidates, err := s.repo.FilterIDs(ctx, store.FilterQuestionIDsParams{ScopeValues: scope})
	if err != nil {
		return nil, fmt.Errorf("filter questions: %w", err)
	}
	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{
		string(mode.Unused):    0,
		string(mode.Correct):   0,
		string(mode.Incorrect): 0,
		string(mode.Omitted):   0,
		string(mode.Marked):    0,
	}
	for _, id := range candidates {
		counts[string(history.classify(id))]++
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, counts); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache mode counts")
		}
	}
	return counts, nil
}

// FilteredCounts returns how many questions are eligible for the full
// criteria set, using the same pipeline as Select minus shuffling.
func (s *Service) FilteredCounts(ctx context.Context, criteria Criteria) (int, error) {
	normalized, err := s.normalize(criteria)
	if err != nil {
		return 0, err
	}

	key := countsKey("filteredcounts", normalized.UserID, normalized.ScopeKeys,
		normalized.Resources, normalized.Disciplines, normalized.Systems,
		normalized.Types, modeStrings(normalized.Modes))
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return cached["eligible"], nil
		}
	}

	eligible, err := s.eligibleIDs(ctx, normalized)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, map[string]int{"eligible": len(eligible)}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache filtered counts")
		}
	}
	return len(eligible), nil
}

// countsKey builds the cache key. Tag values are free text, so each
// value is escaped before joining; otherwise a value containing ':' or
// ',' could make two distinct filter sets share a key.
func countsKey(prefix string, userID uuid.UUID, dimensions ...[]string) string {
	parts := []string{prefix, userID.String()}
	for _, dim := range dimensions {
		escaped := make([]string, len(dim))
		for i, v := range dim {
			escaped[i] = url.QueryEscape(v)
		}
		parts = append(parts, strings.Join(escaped, ","))
	}
	return strings.Join(parts, ":")
}

func modeStrings(modes []mode.Mode) []string {
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = string(m)
	}
	return out
}
