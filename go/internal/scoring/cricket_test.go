package scoring_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/scoring"
)

func TestSixSinglesFillAnOver(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	for i := 0; i < 6; i++ {
		res := f.exec(t, ball(1))
		require.True(t, res.Applied())
	}

	innings := f.cricket(t).CurrentInnings()
	over := innings.CurrentOver()
	assert.Equal(t, 6, innings.TotalRuns)
	assert.Equal(t, 6, over.RunsInOver)
	assert.Equal(t, 6, over.LegalDeliveries())
	assert.False(t, over.IsCompleted)
	assert.Empty(t, f.cricket(t).Events, "plain balls do not add events")
	requireConsistent(t, f)
}

func TestEndOverUndoRestoresSameOver(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	for i := 0; i < 6; i++ {
		f.exec(t, ball(1))
	}
	innings := f.cricket(t).CurrentInnings()
	original := innings.CurrentOver()

	res := f.exec(t, scoring.CommandRequest{Type: scoring.CommandTypeEndOver, NextBowlerID: uuid.New()})
	require.True(t, res.Applied())
	assert.Equal(t, 1, innings.OversCompleted)
	assert.True(t, original.IsCompleted)
	next := innings.CurrentOver()
	require.NotNil(t, next)
	assert.NotSame(t, original, next)
	assert.Empty(t, next.Balls)
	assert.Equal(t, 2, next.Number)

	_, res = f.manager.Undo()
	require.True(t, res.Applied())
	assert.Equal(t, 0, innings.OversCompleted)
	assert.Same(t, original, innings.CurrentOver())
	assert.Len(t, original.Balls, 6)
	assert.False(t, original.IsCompleted)
	assert.Len(t, innings.Overs, 1)

	_, res = f.manager.Redo()
	require.True(t, res.Applied())
	assert.Same(t, next, innings.CurrentOver(), "redo reinstalls the same new over")
	assert.Equal(t, 1, innings.OversCompleted)
}

func TestWicketWithRunUndo(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	f.exec(t, ball(4))
	before := snapshotInnings(t, f)

	res := f.exec(t, scoring.CommandRequest{
		Type:          scoring.CommandTypeAddWicket,
		Runs:          1,
		BatterID:      batter,
		TeamID:        f.away,
		DismissalType: models.DismissalRunOut,
	})
	require.True(t, res.Applied())

	cricket := f.cricket(t)
	innings := cricket.CurrentInnings()
	assert.Equal(t, 1, innings.WicketsFallen)
	assert.Equal(t, 5, innings.TotalRuns)
	assert.Equal(t, 1, innings.CurrentOver().WicketsInOver)
	require.Len(t, cricket.Events, 1)
	event := cricket.Events[0]
	assert.Equal(t, models.DetailKindWicket, event.Kind)
	wicket, ok := event.Detail.(*models.WicketDetail)
	require.True(t, ok)
	assert.Equal(t, batter, wicket.BatterOutID)
	assert.Equal(t, 2, event.BallNumber)
	requireConsistent(t, f)

	cmd, res := f.manager.Undo()
	require.True(t, res.Applied())
	id, ok := cmd.EventID()
	assert.True(t, ok)
	assert.Equal(t, event.ID, id)
	assert.Equal(t, before, snapshotInnings(t, f))
	requireConsistent(t, f)
}

func TestExtrasAreCreditedButNotLegal(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	res := f.exec(t, scoring.CommandRequest{
		Type:       scoring.CommandTypeAddExtras,
		ExtrasType: models.ExtrasWide,
		ExtrasRuns: 1,
	})
	require.True(t, res.Applied())
	f.exec(t, scoring.CommandRequest{Type: scoring.CommandTypeAddExtras, ExtrasType: models.ExtrasLegBye, ExtrasRuns: 2})

	cricket := f.cricket(t)
	over := cricket.CurrentOver()
	require.Len(t, over.Balls, 2)
	assert.False(t, over.Balls[0].IsLegalDelivery())
	assert.True(t, over.Balls[1].IsLegalDelivery())
	assert.Equal(t, 1, over.LegalDeliveries())
	assert.Equal(t, 3, cricket.CurrentInnings().TotalRuns)
	require.Len(t, cricket.Events, 2)
	extras, ok := cricket.Events[0].Detail.(*models.ExtrasDetail)
	require.True(t, ok)
	assert.Equal(t, models.ExtrasWide, extras.Type)
	requireConsistent(t, f)

	f.manager.Undo()
	f.manager.Undo()
	assert.Empty(t, over.Balls)
	assert.Empty(t, cricket.Events)
	assert.Zero(t, cricket.CurrentInnings().TotalRuns)
}

func TestUndoRestoresStateForEveryCricketCommand(t *testing.T) {
	t.Parallel()

	requests := map[string]scoring.CommandRequest{
		"ball":    ball(3),
		"extras":  {Type: scoring.CommandTypeAddExtras, ExtrasType: models.ExtrasNoBall, ExtrasRuns: 1},
		"wicket":  {Type: scoring.CommandTypeAddWicket, BatterID: batter, DismissalType: models.DismissalBowled},
		"over":    {Type: scoring.CommandTypeEndOver},
		"innings": {Type: scoring.CommandTypeEndInnings},
	}

	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newCricketFixture(t)
			f.exec(t, ball(2))
			before := snapshotInnings(t, f)

			res := f.exec(t, req)
			require.True(t, res.Applied())
			after := snapshotInnings(t, f)

			_, res = f.manager.Undo()
			require.True(t, res.Applied())
			assert.Equal(t, before, snapshotInnings(t, f))

			_, res = f.manager.Redo()
			require.True(t, res.Applied())
			assert.Equal(t, after, snapshotInnings(t, f))
			requireConsistent(t, f)
		})
	}
}

func TestCricketCommandsSkipWithoutCurrentOver(t *testing.T) {
	t.Parallel()

	f := newFixture(t, models.SportCricket)
	res := f.exec(t, ball(1))
	assert.False(t, res.Applied())
	assert.Equal(t, scoring.ReasonNoCurrentInnings, res.Reason)
	assert.False(t, f.manager.CanUndo())

	f.exec(t, scoring.CommandRequest{
		Type:          scoring.CommandTypeStartInnings,
		BattingTeamID: f.home,
		BowlingTeamID: f.away,
	})
	innings := f.cricket(t).CurrentInnings()
	innings.Overs[0].IsCompleted = true
	before := snapshotInnings(t, f)

	res = f.exec(t, scoring.CommandRequest{Type: scoring.CommandTypeAddWicket, DismissalType: models.DismissalLBW})
	assert.Equal(t, scoring.ReasonNoCurrentOver, res.Reason)
	assert.Equal(t, before, snapshotInnings(t, f))
}

func TestUndoDetectsExternalChange(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	f.exec(t, ball(1))
	over := f.cricket(t).CurrentOver()
	over.RemoveLastBall()

	_, res := f.manager.Undo()
	assert.Equal(t, scoring.ReasonStateChanged, res.Reason)
	assert.True(t, f.manager.CanUndo(), "a skipped undo stays on the history")
}

func TestInningsLifecycle(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	f.exec(t, ball(6))

	res := f.exec(t, scoring.CommandRequest{
		Type:          scoring.CommandTypeStartInnings,
		BattingTeamID: f.away,
		BowlingTeamID: f.home,
	})
	assert.Equal(t, scoring.ReasonInningsInProgress, res.Reason)

	require.True(t, f.exec(t, scoring.CommandRequest{Type: scoring.CommandTypeEndInnings}).Applied())
	cricket := f.cricket(t)
	assert.Nil(t, cricket.CurrentInnings())

	require.True(t, f.exec(t, scoring.CommandRequest{
		Type:          scoring.CommandTypeStartInnings,
		BattingTeamID: f.away,
		BowlingTeamID: f.home,
	}).Applied())
	require.Len(t, cricket.Innings, 2)
	second := cricket.CurrentInnings()
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, f.away, second.BattingTeamID)
	assert.NotNil(t, second.CurrentOver())

	f.manager.Undo()
	assert.Len(t, cricket.Innings, 1)
	assert.Nil(t, cricket.CurrentInnings())
	f.manager.Undo()
	assert.Same(t, cricket.Innings[0], cricket.CurrentInnings())
	assert.Equal(t, 6, cricket.CurrentInnings().TotalRuns)
}

func TestStumpedOffWideIsExtrasThenWicket(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	require.True(t, f.exec(t, scoring.CommandRequest{Type: scoring.CommandTypeAddExtras, ExtrasType: models.ExtrasWide, ExtrasRuns: 1}).Applied())
	require.True(t, f.exec(t, scoring.CommandRequest{Type: scoring.CommandTypeAddWicket, BatterID: batter, DismissalType: models.DismissalStumped}).Applied())

	cricket := f.cricket(t)
	innings := cricket.CurrentInnings()
	assert.Equal(t, 1, innings.TotalRuns)
	assert.Equal(t, 1, innings.WicketsFallen)
	require.Len(t, cricket.Events, 2)
	assert.Equal(t, models.DetailKindExtras, cricket.Events[0].Kind)
	assert.Equal(t, models.DetailKindWicket, cricket.Events[1].Kind)
	requireConsistent(t, f)

	f.manager.Undo()
	assert.Equal(t, 1, innings.TotalRuns)
	assert.Zero(t, innings.WicketsFallen)
	requireConsistent(t, f)
}

func matchJSON(t *testing.T, f *fixture) string {
	t.Helper()
	data, err := json.Marshal(f.match)
	require.NoError(t, err)
	return string(data)
}

var guardedCricketRequests = map[string]scoring.CommandRequest{
	"ball":     ball(2),
	"extras":   {Type: scoring.CommandTypeAddExtras, ExtrasType: models.ExtrasBye, ExtrasRuns: 1},
	"wicket":   {Type: scoring.CommandTypeAddWicket, BatterID: batter, DismissalType: models.DismissalCaught},
	"end over": {Type: scoring.CommandTypeEndOver, NextBowlerID: uuid.New()},
}

func TestCricketGuardOnExecute(t *testing.T) {
	t.Parallel()

	for name, req := range guardedCricketRequests {
		t.Run(name+" without innings", func(t *testing.T) {
			f := newFixture(t, models.SportCricket)
			before := matchJSON(t, f)

			res := f.exec(t, req)
			assert.Equal(t, scoring.StatusSkipped, res.Status)
			assert.Equal(t, scoring.ReasonNoCurrentInnings, res.Reason)
			assert.JSONEq(t, before, matchJSON(t, f))
			assert.False(t, f.manager.CanUndo())
		})

		t.Run(name+" without over", func(t *testing.T) {
			f := newCricketFixture(t)
			f.cricket(t).CurrentOver().IsCompleted = true
			before := matchJSON(t, f)

			res := f.exec(t, req)
			assert.Equal(t, scoring.StatusSkipped, res.Status)
			assert.Equal(t, scoring.ReasonNoCurrentOver, res.Reason)
			assert.JSONEq(t, before, matchJSON(t, f))
			assert.False(t, f.manager.CanUndo())
		})
	}
}

func TestCricketGuardOnUndo(t *testing.T) {
	t.Parallel()

	for name, req := range guardedCricketRequests {
		t.Run(name+" after innings closed", func(t *testing.T) {
			f := newCricketFixture(t)
			require.True(t, f.exec(t, req).Applied())
			f.cricket(t).CurrentInnings().IsCompleted = true
			before := matchJSON(t, f)

			_, res := f.manager.Undo()
			assert.Equal(t, scoring.ReasonNoCurrentInnings, res.Reason)
			assert.JSONEq(t, before, matchJSON(t, f))
			assert.True(t, f.manager.CanUndo())
		})

		t.Run(name+" after over closed", func(t *testing.T) {
			f := newCricketFixture(t)
			require.True(t, f.exec(t, req).Applied())
			f.cricket(t).CurrentOver().IsCompleted = true
			before := matchJSON(t, f)

			_, res := f.manager.Undo()
			assert.Equal(t, scoring.ReasonNoCurrentOver, res.Reason)
			assert.JSONEq(t, before, matchJSON(t, f))
			assert.True(t, f.manager.CanUndo())
		})
	}
}
