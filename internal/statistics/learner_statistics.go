// Package statistics aggregates review history into reporting figures.
package statistics

import (
	"fmt"
	"sort"
	"time"

	"github.com/t-okano/revq/internal/history"
	"github.com/t-okano/revq/internal/sm2"
)

// PeriodStatistics holds review counts for one month.
type PeriodStatistics struct {
	Period      string // "2025-01"
	Reviews     int
	Correct     int
	UniqueItems int
	Accuracy    float64
}

// AggregateStatistics holds totals across all periods.
type AggregateStatistics struct {
	Reviews     int
	Correct     int
	UniqueItems int
	Accuracy    float64
	StreakDays  int // consecutive days with at least one review, ending today or yesterday
}

// StatisticsResult holds both per-period and aggregate statistics.
type StatisticsResult struct {
	Periods   []PeriodStatistics
	Aggregate AggregateStatistics
}

type periodData struct {
	reviews     int
	correct     int
	uniqueItems map[int64]struct{}
}

// Calculate aggregates a learner's review events. It accepts optional year
// and month filters (0 means no filter) applied to the per-period breakdown;
// the streak is always computed over the full history relative to now.
func Calculate(events []history.ReviewEvent, year, month int, now time.Time) StatisticsResult {
	stats := make(map[string]*periodData)
	globalUnique := make(map[int64]struct{})
	reviewDates := make(map[string]bool)

	var totalReviews, totalCorrect int
	for _, event := range events {
		reviewDates[event.ReviewedAt.UTC().Format("2006-01-02")] = true

		logYear := event.ReviewedAt.UTC().Year()
		logMonth := int(event.ReviewedAt.UTC().Month())
		if !matchesFilter(logYear, logMonth, year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", logYear, logMonth)
		if stats[period] == nil {
			stats[period] = &periodData{uniqueItems: make(map[int64]struct{})}
		}

		stats[period].reviews++
		stats[period].uniqueItems[event.ItemID] = struct{}{}
		globalUnique[event.ItemID] = struct{}{}
		totalReviews++
		if event.Quality >= sm2.CorrectThreshold {
			stats[period].correct++
			totalCorrect++
		}
	}

	periods := make([]PeriodStatistics, 0, len(stats))
	for period, data := range stats {
		periods = append(periods, PeriodStatistics{
			Period:      period,
			Reviews:     data.reviews,
			Correct:     data.correct,
			UniqueItems: len(data.uniqueItems),
			Accuracy:    accuracy(data.correct, data.reviews),
		})
	}

	// Sort by period descending (newest first)
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return StatisticsResult{
		Periods: periods,
		Aggregate: AggregateStatistics{
			Reviews:     totalReviews,
			Correct:     totalCorrect,
			UniqueItems: len(globalUnique),
			Accuracy:    accuracy(totalCorrect, totalReviews),
			StreakDays:  calculateStreak(reviewDates, today),
		},
	}
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}

// calculateStreak counts consecutive days with reviews ending today or
// yesterday.
func calculateStreak(reviewDates map[string]bool, today time.Time) int {
	checkDate := today
	if !reviewDates[checkDate.Format("2006-01-02")] {
		checkDate = checkDate.AddDate(0, 0, -1)
		if !reviewDates[checkDate.Format("2006-01-02")] {
			return 0
		}
	}

	streak := 0
	for reviewDates[checkDate.Format("2006-01-02")] {
		streak++
		checkDate = checkDate.AddDate(0, 0, -1)
	}
	return streak
}
