package item

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/t-okano/revq/internal/difficulty"
)

// Service handles item creation on behalf of the content pipeline.
type Service struct {
	repo   Repository
	oracle difficulty.Oracle
}

// NewService creates a Service. The oracle may be nil when no difficulty
// estimation endpoint is configured.
func NewService(repo Repository, oracle difficulty.Oracle) *Service {
	return &Service{repo: repo, oracle: oracle}
}

// CreateItem registers a new learnable item. When predictedDifficulty is nil
// the difficulty oracle is consulted; an unavailable oracle degrades to the
// default difficulty and is logged, never fatal.
func (s *Service) CreateItem(ctx context.Context, contentRef string, predictedDifficulty *float64) (*Item, error) {
	contentRef = strings.TrimSpace(contentRef)
	if contentRef == "" {
		return nil, fmt.Errorf("content ref is required")
	}

	d := DefaultDifficulty
	switch {
	case predictedDifficulty != nil:
		d = ClampDifficulty(*predictedDifficulty)
	case s.oracle != nil:
		estimated, err := s.oracle.Estimate(ctx, contentRef)
		if err != nil {
			slog.Warn("difficulty oracle unavailable, using default difficulty",
				"content_ref", contentRef,
				"default", DefaultDifficulty,
				"error", err)
		} else {
			d = ClampDifficulty(estimated)
		}
	}

	it := &Item{
		ContentRef:          contentRef,
		PredictedDifficulty: d,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("repo.Create(item) > %w", err)
	}
	return it, nil
}
