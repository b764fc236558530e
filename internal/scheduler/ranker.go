package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/t-okano/revq/internal/item"
	"github.com/t-okano/revq/internal/progress"
	"github.com/t-okano/revq/internal/session"
)

// DefaultQueueLimit bounds the queue when the caller does not supply a limit.
const DefaultQueueLimit = 20

// Mode selects the ranking policy for the due queue.
type Mode string

const (
	// ModeWeighted is the canonical composite-score ranking.
	ModeWeighted Mode = "weighted"
	// ModeLexicographic is the alternate three-key sort:
	// difficulty desc, ease asc, next_review_at asc.
	ModeLexicographic Mode = "lexicographic"
)

// Priority score weights for ModeWeighted.
const (
	difficultyWeight = 0.4
	easeWeight       = 0.3
	overdueWeight    = 0.3
	easeBaseline     = 3.0
)

// RankedItem is one entry of the review queue.
type RankedItem struct {
	ItemID              int64
	ContentRef          string
	PredictedDifficulty float64
	EaseFactor          float64
	IntervalDays        int
	Streak              int
	OverdueDays         float64
	NextReviewAt        time.Time
	Priority            float64
}

// Queue is the ordered, bounded result of a scheduling request.
type Queue struct {
	SessionID int64
	Items     []RankedItem
}

// Ranker builds bounded, deterministically ordered review queues.
type Ranker struct {
	items    item.Repository
	progress progress.Repository
	sessions *session.Manager
	mode     Mode
}

// NewRanker creates a Ranker. An empty mode defaults to the weighted policy.
func NewRanker(items item.Repository, progressRepo progress.Repository, sessions *session.Manager, mode Mode) *Ranker {
	if mode == "" {
		mode = ModeWeighted
	}
	return &Ranker{
		items:    items,
		progress: progressRepo,
		sessions: sessions,
		mode:     mode,
	}
}

// BuildQueue returns the learner's due items ranked by the configured policy,
// truncated to limit, together with the session the reviews should run in.
// Progress records are materialized lazily for items the learner has never
// been scheduled on, which makes new items immediately due.
func (r *Ranker) BuildQueue(ctx context.Context, learnerID int64, asOf time.Time, limit int) (*Queue, error) {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	asOf = asOf.UTC()

	candidates, err := r.dueCandidates(ctx, learnerID, asOf)
	if err != nil {
		return nil, err
	}

	r.sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	s, err := r.sessions.OpenOrReuse(ctx, learnerID, session.KindReview)
	if err != nil {
		return nil, fmt.Errorf("open review session > %w", err)
	}

	return &Queue{SessionID: s.ID, Items: candidates}, nil
}

// dueCandidates joins due progress records with their items, lazily creating
// default records for items with no progress yet.
func (r *Ranker) dueCandidates(ctx context.Context, learnerID int64, asOf time.Time) ([]RankedItem, error) {
	items, err := r.items.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("items.FindAll > %w", err)
	}

	records, err := r.progress.FindByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("progress.FindByLearner > %w", err)
	}
	byItem := make(map[int64]*progress.Progress, len(records))
	for i := range records {
		byItem[records[i].ItemID] = &records[i]
	}

	var candidates []RankedItem
	for i := range items {
		it := &items[i]
		p, ok := byItem[it.ID]
		if !ok {
			p, err = r.progress.GetOrCreate(ctx, it.ID, learnerID, asOf)
			if err != nil {
				return nil, fmt.Errorf("progress.GetOrCreate(item %d) > %w", it.ID, err)
			}
		}
		if !p.IsDue(asOf) {
			continue
		}

		overdue := p.OverdueDays(asOf)
		candidates = append(candidates, RankedItem{
			ItemID:              it.ID,
			ContentRef:          it.ContentRef,
			PredictedDifficulty: it.PredictedDifficulty,
			EaseFactor:          p.EaseFactor,
			IntervalDays:        p.IntervalDays,
			Streak:              p.Streak,
			OverdueDays:         overdue,
			NextReviewAt:        p.NextReviewAt,
			Priority:            priorityScore(it.PredictedDifficulty, p.EaseFactor, overdue),
		})
	}
	return candidates, nil
}

// priorityScore is the canonical composite ranking score.
func priorityScore(difficulty, ease, overdueDays float64) float64 {
	return difficultyWeight*difficulty + easeWeight*(easeBaseline-ease) + overdueWeight*overdueDays
}

// sortCandidates orders the queue deterministically for the configured mode.
func (r *Ranker) sortCandidates(candidates []RankedItem) {
	if r.mode == ModeLexicographic {
		sort.Slice(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if a.PredictedDifficulty != b.PredictedDifficulty {
				return a.PredictedDifficulty > b.PredictedDifficulty
			}
			if a.EaseFactor != b.EaseFactor {
				return a.EaseFactor < b.EaseFactor
			}
			if !a.NextReviewAt.Equal(b.NextReviewAt) {
				return a.NextReviewAt.Before(b.NextReviewAt)
			}
			return a.ItemID < b.ItemID
		})
		return
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.OverdueDays != b.OverdueDays {
			return a.OverdueDays > b.OverdueDays
		}
		return a.ItemID < b.ItemID
	})
}
