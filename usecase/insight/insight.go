// Package insight turns report figures into a short, ordered list of advisory messages.
package insight

import (
	"fmt"

	"github.com/fastygo/focus/domain"
)

const DefaultLimit = 4

// Input carries the aggregator outputs the rules look at.
type Input struct {
	WeekTotal          int64
	PreviousWeekTotal  int64
	WeekOverWeekChange int
	Streak             int
	PeakHour           int
	HasPeakHour        bool
	TaskCount          int
	CompletionRate     float64
	CategoryTotals     []domain.CategoryTotal
}

type rule func(in Input) (domain.Insight, bool)

// rules are evaluated in priority order.
var rules = []rule{
	momentum,
	streak,
	peakTime,
	completionTip,
	focusArea,
	nudge,
}

// Generate evaluates every rule and keeps the first limit matches.
func Generate(in Input, limit int) []domain.Insight {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]domain.Insight, 0, limit)
	for _, r := range rules {
		if len(out) == limit {
			break
		}
		if ins, ok := r(in); ok {
			out = append(out, ins)
		}
	}
	return out
}

func momentum(in Input) (domain.Insight, bool) {
	switch {
	case in.WeekOverWeekChange > 20:
		return domain.Insight{
			Kind:    domain.InsightMomentum,
			Icon:    "trending-up",
			Title:   "Productivity surge",
			Message: fmt.Sprintf("You tracked %d%% more time than last week.", in.WeekOverWeekChange),
		}, true
	case in.WeekOverWeekChange < -20 && in.PreviousWeekTotal > 0:
		return domain.Insight{
			Kind:    domain.InsightMomentum,
			Icon:    "trending-down",
			Title:   "Slower week",
			Message: fmt.Sprintf("Tracked time is down %d%% from last week.", -in.WeekOverWeekChange),
		}, true
	}
	return domain.Insight{}, false
}

func streak(in Input) (domain.Insight, bool) {
	if in.Streak < 3 {
		return domain.Insight{}, false
	}
	return domain.Insight{
		Kind:    domain.InsightStreak,
		Icon:    "flame",
		Title:   fmt.Sprintf("%d-day streak", in.Streak),
		Message: "Keep the chain going by tracking some focused time today.",
	}, true
}

func peakTime(in Input) (domain.Insight, bool) {
	if !in.HasPeakHour {
		return domain.Insight{}, false
	}
	return domain.Insight{
		Kind:    domain.InsightPeakTime,
		Icon:    "clock",
		Title:   "Peak focus time",
		Message: fmt.Sprintf("You get the most done around %02d:00. Schedule deep work then.", in.PeakHour),
	}, true
}

func completionTip(in Input) (domain.Insight, bool) {
	if in.TaskCount <= 5 || in.CompletionRate >= 50 {
		return domain.Insight{}, false
	}
	return domain.Insight{
		Kind:    domain.InsightTip,
		Icon:    "lightbulb",
		Title:   "Break tasks down",
		Message: fmt.Sprintf("Only %.0f%% of your tasks are done. Smaller tasks are easier to finish.", in.CompletionRate),
	}, true
}

func focusArea(in Input) (domain.Insight, bool) {
	if len(in.CategoryTotals) == 0 {
		return domain.Insight{}, false
	}
	var total int64
	for _, c := range in.CategoryTotals {
		total += c.TotalSeconds
	}
	top := in.CategoryTotals[0]
	if total == 0 || top.TotalSeconds*2 < total {
		return domain.Insight{}, false
	}
	return domain.Insight{
		Kind:    domain.InsightFocus,
		Icon:    string(top.Icon),
		Title:   "Main focus area",
		Message: fmt.Sprintf("%s takes %d%% of your tracked time.", top.Name, top.TotalSeconds*100/total),
	}, true
}

func nudge(in Input) (domain.Insight, bool) {
	if in.WeekTotal > 0 || in.TaskCount == 0 {
		return domain.Insight{}, false
	}
	return domain.Insight{
		Kind:    domain.InsightNudge,
		Icon:    "play",
		Title:   "Start a timer",
		Message: "No focused time tracked this week yet.",
	}, true
}
