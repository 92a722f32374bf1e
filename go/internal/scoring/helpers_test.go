package scoring_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/scoring"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
	_ "github.com/mcdev12/scorekeeper/go/internal/sports/cricket"
	_ "github.com/mcdev12/scorekeeper/go/internal/sports/football"
)

type fixture struct {
	factory *base.Factory
	builder *scoring.Builder
	manager *scoring.Manager
	match   *models.Match
	home    uuid.UUID
	away    uuid.UUID
}

func newFixture(t *testing.T, sport models.Sport) *fixture {
	t.Helper()
	factory := base.NewFactory(clockwork.NewFakeClock())
	home, away := uuid.New(), uuid.New()
	match, err := factory.NewMatch(sport, home, away, nil)
	require.NoError(t, err)
	return &fixture{
		factory: factory,
		builder: scoring.NewBuilder(factory),
		manager: scoring.NewManager(),
		match:   match,
		home:    home,
		away:    away,
	}
}

// newCricketFixture returns a cricket match with the first innings under way.
func newCricketFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, models.SportCricket)
	f.exec(t, scoring.CommandRequest{
		Type:          scoring.CommandTypeStartInnings,
		BattingTeamID: f.home,
		BowlingTeamID: f.away,
		BowlerID:      uuid.New(),
	})
	f.manager.Reset()
	return f
}

// newFootballFixture returns a football match with an eleven and a bench for each team.
func newFootballFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, models.SportFootball)
	football, _ := f.match.Football()
	for _, team := range []uuid.UUID{f.home, f.away} {
		sheet := models.TeamSheet{ID: team}
		for i := 0; i < 11; i++ {
			sheet.Starters = append(sheet.Starters, uuid.New())
		}
		for i := 0; i < 5; i++ {
			sheet.Bench = append(sheet.Bench, uuid.New())
		}
		football.Lineups = append(football.Lineups, sheet.Lineup())
	}
	return f
}

func (f *fixture) build(t *testing.T, req scoring.CommandRequest) scoring.Command {
	t.Helper()
	cmd, err := f.builder.Build(f.match, req)
	require.NoError(t, err)
	return cmd
}

func (f *fixture) exec(t *testing.T, req scoring.CommandRequest) scoring.Result {
	t.Helper()
	return f.manager.ExecuteCommand(f.build(t, req))
}

func (f *fixture) cricket(t *testing.T) *models.CricketMatch {
	t.Helper()
	cricket, ok := f.match.Cricket()
	require.True(t, ok)
	return cricket
}

func (f *fixture) football(t *testing.T) *models.FootballMatch {
	t.Helper()
	football, ok := f.match.Football()
	require.True(t, ok)
	return football
}

func ball(runs int) scoring.CommandRequest {
	return scoring.CommandRequest{Type: scoring.CommandTypeAddBall, Runs: runs, BatterID: batter}
}

var batter = uuid.New()

// inningsState is the observable state of an innings: counters, list lengths
// and which over is current.
type inningsState struct {
	TotalRuns      int
	WicketsFallen  int
	OversCompleted int
	Overs          int
	Balls          []int
	Current        *models.Over
	Events         int
}

func snapshotInnings(t *testing.T, f *fixture) inningsState {
	t.Helper()
	cricket := f.cricket(t)
	innings := cricket.Innings[len(cricket.Innings)-1]
	s := inningsState{
		TotalRuns:      innings.TotalRuns,
		WicketsFallen:  innings.WicketsFallen,
		OversCompleted: innings.OversCompleted,
		Overs:          len(innings.Overs),
		Current:        innings.CurrentOver(),
		Events:         len(cricket.Events),
	}
	for _, o := range innings.Overs {
		s.Balls = append(s.Balls, len(o.Balls))
	}
	return s
}

// requireConsistent checks the running totals against the balls and events
// they summarize.
func requireConsistent(t *testing.T, f *fixture) {
	t.Helper()
	cricket := f.cricket(t)
	for _, innings := range cricket.Innings {
		offBat, extras := 0, 0
		for _, over := range innings.Overs {
			for _, b := range over.Balls {
				offBat += b.RunsScored
			}
		}
		for _, e := range cricket.Events {
			if d, ok := e.Detail.(*models.ExtrasDetail); ok && e.InningsNumber == innings.Number {
				extras += d.Runs
			}
		}
		require.Equal(t, offBat+extras, innings.TotalRuns, "innings %d runs off the bat plus extras", innings.Number)

		total, wickets := 0, 0
		for _, over := range innings.Overs {
			runs, overWickets := 0, 0
			for _, b := range over.Balls {
				runs += b.TotalRuns()
				if b.IsWicket {
					overWickets++
				}
			}
			require.Equal(t, runs, over.RunsInOver, "over %d runs", over.Number)
			require.Equal(t, overWickets, over.WicketsInOver, "over %d wickets", over.Number)
			total += runs
			wickets += overWickets
		}
		require.Equal(t, total, innings.TotalRuns, "innings %d runs", innings.Number)
		require.Equal(t, wickets, innings.WicketsFallen, "innings %d wickets", innings.Number)
	}
}
