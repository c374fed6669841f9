package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		from   TaskStatus
		action TaskAction
		want   TaskStatus
		err    error
	}{
		{TaskStatusTodo, ActionStart, TaskStatusInProgress, nil},
		{TaskStatusCompleted, ActionStart, TaskStatusInProgress, nil},
		{TaskStatusInProgress, ActionStart, TaskStatusInProgress, ErrTaskAlreadyRunning},
		{TaskStatusInProgress, ActionStop, TaskStatusTodo, nil},
		{TaskStatusTodo, ActionStop, TaskStatusTodo, ErrTaskNotRunning},
		{TaskStatusCompleted, ActionStop, TaskStatusCompleted, ErrTaskNotRunning},
		{TaskStatusTodo, ActionComplete, TaskStatusCompleted, nil},
		{TaskStatusInProgress, ActionComplete, TaskStatusCompleted, nil},
		{TaskStatusCompleted, ActionComplete, TaskStatusCompleted, nil},
		{TaskStatus("archived"), ActionStop, TaskStatus("archived"), ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.action), func(t *testing.T) {
			got, err := NextStatus(tc.from, tc.action)
			assert.Equal(t, tc.want, got)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestTaskStartStopAccruesDuration(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	task := &Task{ID: "t1", Status: TaskStatusTodo}

	require.NoError(t, task.Start(t0))
	assert.Equal(t, TaskStatusInProgress, task.Status)
	assert.Equal(t, t0, *task.StartTime)
	assert.ErrorIs(t, task.Start(t0), ErrTaskAlreadyRunning)

	require.NoError(t, task.Stop(t0.Add(125*time.Second), 125))
	assert.Equal(t, TaskStatusTodo, task.Status)
	assert.EqualValues(t, 125, task.Duration)
	assert.EqualValues(t, 125, task.ActualDuration)
	assert.ErrorIs(t, task.Stop(t0, 1), ErrTaskNotRunning)
}

func TestTaskCompleteIsIdempotent(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	task := &Task{ID: "t1", Status: TaskStatusTodo}
	require.NoError(t, task.Start(t0))

	changed, err := task.Complete(t0.Add(10*time.Second), 10)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.EqualValues(t, 10, task.Duration)
	assert.Equal(t, t0.Add(10*time.Second), *task.CompletedAt)

	changed, err = task.Complete(t0.Add(time.Minute), 50)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.EqualValues(t, 10, task.Duration)
	assert.Equal(t, t0.Add(10*time.Second), *task.CompletedAt)
}

func TestTaskCompleteFromTodoIgnoresElapsed(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	task := &Task{Status: TaskStatusTodo, Duration: 30}

	changed, err := task.Complete(now, 99)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.EqualValues(t, 30, task.Duration)
	assert.Nil(t, task.EndTime)
}

func TestRestartCompletedTaskClearsCompletedAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	task := &Task{Status: TaskStatusCompleted, CompletedAt: &now}

	require.NoError(t, task.Start(now.Add(time.Hour)))
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, TaskStatusInProgress, task.Status)
}

func TestLiveDuration(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	task := &Task{Status: TaskStatusInProgress, StartTime: &start, Duration: 60}

	assert.EqualValues(t, 90, task.LiveDuration(start.Add(30*time.Second)))
	assert.EqualValues(t, 60, task.LiveDuration(start.Add(-time.Minute)))

	task.Status = TaskStatusTodo
	assert.EqualValues(t, 60, task.LiveDuration(start.Add(time.Hour)))
}

func TestTimeEntryCloseOnce(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	entry := &TimeEntry{StartTime: start}
	require.True(t, entry.IsOpen())

	require.NoError(t, entry.Close(start.Add(time.Minute), 60, false))
	assert.False(t, entry.IsOpen())
	assert.EqualValues(t, 60, entry.Seconds())
	assert.ErrorIs(t, entry.Close(start.Add(time.Hour), 3600, false), ErrIntervalClosed)
	assert.EqualValues(t, 60, entry.Seconds())
}
