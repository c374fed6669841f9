// Package progress derives goal completion and time analytics from a task snapshot.
// Every function is pure: the same inputs always give the same outputs.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/fastygo/focus/domain"
)

const dayLayout = "2006-01-02"

// Percentage is completed/total*100, or 0 for an empty set.
func Percentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// GoalProgress counts the tasks that reference goal.
func GoalProgress(goal domain.Goal, tasks []domain.Task) domain.Progress {
	p := domain.Progress{GoalID: goal.ID, Title: goal.Title}
	for i := range tasks {
		if !tasks[i].BelongsToGoal(goal.ID) {
			continue
		}
		p.TaskCount++
		if tasks[i].IsCompleted() {
			p.CompletedCount++
		}
	}
	p.Percentage = Percentage(p.CompletedCount, p.TaskCount)
	return p
}

// OverallProgress is the completion figure over every task given.
func OverallProgress(tasks []domain.Task) domain.Progress {
	var p domain.Progress
	for i := range tasks {
		p.TaskCount++
		if tasks[i].IsCompleted() {
			p.CompletedCount++
		}
	}
	p.Percentage = Percentage(p.CompletedCount, p.TaskCount)
	return p
}

// CategoryTotals sums task durations per category, largest first. Tasks without a
// category, or with one not in categories, are left out.
func CategoryTotals(tasks []domain.Task, categories []domain.Category) []domain.CategoryTotal {
	byID := make(map[string]*domain.CategoryTotal, len(categories))
	for _, c := range categories {
		byID[c.ID] = &domain.CategoryTotal{CategoryID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
	}
	for i := range tasks {
		if tasks[i].CategoryID == nil {
			continue
		}
		total, ok := byID[*tasks[i].CategoryID]
		if !ok {
			continue
		}
		total.TotalSeconds += tasks[i].Duration
		total.TaskCount++
	}

	out := make([]domain.CategoryTotal, 0, len(byID))
	for _, total := range byID {
		if total.TaskCount == 0 {
			continue
		}
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSeconds != out[j].TotalSeconds {
			return out[i].TotalSeconds > out[j].TotalSeconds
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// DailySeries buckets tasks by the calendar day of CreatedAt for the last days days,
// today included and last.
func DailySeries(tasks []domain.Task, days int, now time.Time, loc *time.Location) []domain.DayStat {
	if days <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	today := StartOfDay(now, loc)
	series := make([]domain.DayStat, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		start := today.AddDate(0, 0, i-days+1)
		key := start.Format(dayLayout)
		series[i] = domain.DayStat{Date: key, Start: start}
		index[key] = i
	}

	for i := range tasks {
		key := tasks[i].CreatedAt.In(loc).Format(dayLayout)
		pos, ok := index[key]
		if !ok {
			continue
		}
		series[pos].TotalSeconds += tasks[i].Duration
		series[pos].TaskCount++
		if tasks[i].IsCompleted() {
			series[pos].CompletedCount++
		}
	}
	return series
}

// PeakHours is a 24-bucket histogram of task duration by hour of ActivityTime.
func PeakHours(tasks []domain.Task, loc *time.Location) []domain.HourBucket {
	if loc == nil {
		loc = time.UTC
	}
	buckets := make([]domain.HourBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for i := range tasks {
		hour := tasks[i].ActivityTime().In(loc).Hour()
		buckets[hour].TotalSeconds += tasks[i].Duration
	}
	return buckets
}

// PeakHour returns the bucket with most time; the lowest hour wins ties. ok is false when
// no time was tracked.
func PeakHour(buckets []domain.HourBucket) (hour int, ok bool) {
	var best int64
	hour = -1
	for _, b := range buckets {
		if b.TotalSeconds > best || (b.TotalSeconds == best && best > 0 && b.Hour < hour) {
			best = b.TotalSeconds
			hour = b.Hour
		}
	}
	return hour, hour >= 0
}

// Streak counts consecutive days with tracked time, walking back from the last element.
func Streak(series []domain.DayStat) int {
	streak := 0
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].TotalSeconds <= 0 {
			break
		}
		streak++
	}
	return streak
}

// WeekTotals sums durations of tasks created in the last 7 days (today included) and in
// the 7 days before that.
func WeekTotals(tasks []domain.Task, now time.Time, loc *time.Location) (current, previous int64) {
	for _, day := range DailySeries(tasks, 14, now, loc)[:7] {
		previous += day.TotalSeconds
	}
	for _, day := range DailySeries(tasks, 7, now, loc) {
		current += day.TotalSeconds
	}
	return current, previous
}

// WeekOverWeekChange is the rounded percentage change from previous to current.
func WeekOverWeekChange(current, previous int64) int {
	if previous > 0 {
		return int(math.Round(float64(current-previous) / float64(previous) * 100))
	}
	if current > 0 {
		return 100
	}
	return 0
}

// CompletionRate is the completed share of tasks in percent.
func CompletionRate(tasks []domain.Task) float64 {
	return OverallProgress(tasks).Percentage
}

// TotalSeconds sums task durations.
func TotalSeconds(tasks []domain.Task) int64 {
	var total int64
	for i := range tasks {
		total += tasks[i].Duration
	}
	return total
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
