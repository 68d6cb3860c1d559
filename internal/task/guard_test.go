package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- CanComplete ------------------------------------------------------------

func TestCanComplete_NoDependencies(t *testing.T) {
	t.Parallel()
	v := CanComplete(mk("a", StatusNotStarted), nil)
	assert.True(t, v.OK)
	assert.Empty(t, v.BlockingID)
}

func TestCanComplete_BlockedByUnfinishedDependency(t *testing.T) {
	t.Parallel()
	// A -> B where B is not started.
	b := mk("b", StatusNotStarted)
	b.Title = "B"
	a := mk("a", StatusNotStarted, "b")
	working := []Task{a, b}

	v := CanComplete(a, working)
	require.False(t, v.OK)
	assert.Equal(t, "b", v.BlockingID)
	assert.Equal(t, "B", v.BlockingTitle)

	working[1].Status = StatusCompleted
	assert.True(t, CanComplete(a, working).OK)
}

func TestCanComplete_ReportsFirstBlockerInDependencyOrder(t *testing.T) {
	t.Parallel()
	working := []Task{
		mk("z", StatusInProgress),
		mk("y", StatusCompleted),
		mk("x", StatusArchived),
	}
	a := mk("a", StatusNotStarted, "y", "x", "z")

	v := CanComplete(a, working)
	require.False(t, v.OK)
	assert.Equal(t, "x", v.BlockingID, "x comes before z in the dependency list")
}

func TestCanComplete_ArchivedDependencyBlocks(t *testing.T) {
	t.Parallel()
	a := mk("a", StatusNotStarted, "b")
	v := CanComplete(a, []Task{mk("b", StatusArchived)})
	assert.False(t, v.OK)
}

func TestCanComplete_MissingDependencyDoesNotBlock(t *testing.T) {
	t.Parallel()
	a := mk("a", StatusNotStarted, "gone", "b")
	working := []Task{a, mk("b", StatusCompleted)}

	assert.True(t, CanComplete(a, working).OK)
}

func TestCanComplete_DoesNotMutate(t *testing.T) {
	t.Parallel()
	a := mk("a", StatusNotStarted, "b")
	working := []Task{a, mk("b", StatusNotStarted)}

	_ = CanComplete(a, working)
	assert.Equal(t, StatusNotStarted, a.Status)
	assert.Equal(t, []string{"b"}, a.Dependencies)
	assert.Equal(t, StatusNotStarted, working[1].Status)
}

func TestCanComplete_AllDependenciesCompletedProperty(t *testing.T) {
	t.Parallel()
	statuses := ValidStatuses()
	// Exhaustive over three dependencies and every status combination.
	for _, s1 := range statuses {
		for _, s2 := range statuses {
			for _, s3 := range statuses {
				working := []Task{mk("d1", s1), mk("d2", s2), mk("d3", s3)}
				a := mk("a", StatusNotStarted, "d1", "d2", "d3")
				want := s1 == StatusCompleted && s2 == StatusCompleted && s3 == StatusCompleted
				assert.Equal(t, want, CanComplete(a, working).OK, "%s/%s/%s", s1, s2, s3)
			}
		}
	}
}

// ---- Transition -------------------------------------------------------------

func TestTransition_CompleteBlocked(t *testing.T) {
	t.Parallel()
	b := mk("b", StatusInProgress)
	b.Title = "Buy paint"
	a := mk("a", StatusInProgress, "b")
	a.Title = "Paint fence"
	working := []Task{a, b}

	err := Transition(&a, StatusCompleted, working, testNow)
	require.Error(t, err)

	var blocked *BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, "b", blocked.BlockingID)
	assert.Equal(t, `cannot complete "Paint fence": dependency "Buy paint" is not completed`, err.Error())

	assert.Equal(t, StatusInProgress, a.Status, "rejected transition must not modify the task")
	assert.Nil(t, a.CompletedAt)
}

func TestTransition_CompleteSetsCompletedAt(t *testing.T) {
	t.Parallel()
	a := mk("a", StatusNotStarted)

	require.NoError(t, Transition(&a, StatusCompleted, nil, testNow))
	assert.Equal(t, StatusCompleted, a.Status)
	require.NotNil(t, a.CompletedAt)
	assert.True(t, testNow.Equal(*a.CompletedAt))
	assert.Nil(t, a.StartedAt, "completing never fabricates a start")
}

func TestTransition_InProgressSetsStartedAtOnce(t *testing.T) {
	t.Parallel()
	a := mk("a", StatusNotStarted)

	require.NoError(t, Transition(&a, StatusInProgress, nil, testNow))
	require.NotNil(t, a.StartedAt)
	first := *a.StartedAt

	require.NoError(t, Transition(&a, StatusNotStarted, nil, testNow.Add(time.Hour)))
	require.NoError(t, Transition(&a, StatusInProgress, nil, testNow.Add(2*time.Hour)))
	assert.True(t, first.Equal(*a.StartedAt), "StartedAt keeps the first start")
}

func TestTransition_ReopenClearsCompletedAt(t *testing.T) {
	t.Parallel()
	a := mk("a", StatusCompleted)
	a.CompletedAt = ptr(testNow)

	require.NoError(t, Transition(&a, StatusInProgress, nil, testNow))
	assert.Nil(t, a.CompletedAt)
}

func TestTransition_ReopenAndArchiveUnguarded(t *testing.T) {
	t.Parallel()
	working := []Task{mk("b", StatusNotStarted)}

	a := mk("a", StatusCompleted, "b")
	require.NoError(t, Transition(&a, StatusNotStarted, working, testNow))

	a = mk("a", StatusNotStarted, "b")
	require.NoError(t, Transition(&a, StatusArchived, working, testNow))
	require.NoError(t, Transition(&a, StatusInProgress, working, testNow))
}

func TestTransition_CompletedToCompletedIsNoop(t *testing.T) {
	t.Parallel()
	a := mk("a", StatusCompleted, "b")
	a.CompletedAt = ptr(testNow)
	working := []Task{mk("b", StatusNotStarted)}

	require.NoError(t, Transition(&a, StatusCompleted, working, testNow.Add(time.Hour)))
	assert.True(t, testNow.Equal(*a.CompletedAt))
}

func TestTransition_InvalidStatus(t *testing.T) {
	t.Parallel()
	a := mk("a", StatusNotStarted)

	err := Transition(&a, Status("paused"), nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Error(t, Transition(nil, StatusCompleted, nil, testNow))
}
