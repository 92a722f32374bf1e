package scoring_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/scoring"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
)

func TestBuilder_RejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	cricket := newCricketFixture(t)
	football := newFootballFixture(t)
	lineup := football.football(t).Lineup(football.home)

	tests := []struct {
		name    string
		fixture *fixture
		req     scoring.CommandRequest
		err     error
	}{
		{"unknown type", cricket, scoring.CommandRequest{Type: "DECLARE"}, scoring.ErrUnknownCommandType},
		{"too many runs", cricket, ball(7), scoring.ErrInvalidRequest},
		{"negative runs", cricket, ball(-1), scoring.ErrInvalidRequest},
		{"ball with extras", cricket, scoring.CommandRequest{Type: scoring.CommandTypeAddBall, ExtrasType: models.ExtrasBye, ExtrasRuns: 1}, scoring.ErrInvalidRequest},
		{"extras without type", cricket, scoring.CommandRequest{Type: scoring.CommandTypeAddExtras, ExtrasRuns: 1}, scoring.ErrInvalidRequest},
		{"unknown extras", cricket, scoring.CommandRequest{Type: scoring.CommandTypeAddExtras, ExtrasType: "OVERTHROW", ExtrasRuns: 1}, scoring.ErrInvalidRequest},
		{"free wide", cricket, scoring.CommandRequest{Type: scoring.CommandTypeAddExtras, ExtrasType: models.ExtrasWide}, scoring.ErrInvalidRequest},
		{"wicket without dismissal", cricket, scoring.CommandRequest{Type: scoring.CommandTypeAddWicket}, scoring.ErrInvalidRequest},
		{"wicket with extras", cricket, scoring.CommandRequest{Type: scoring.CommandTypeAddWicket, DismissalType: models.DismissalStumped, ExtrasType: models.ExtrasWide, ExtrasRuns: 1}, scoring.ErrInvalidRequest},
		{"innings for a stranger", cricket, scoring.CommandRequest{Type: scoring.CommandTypeStartInnings, BattingTeamID: uuid.New(), BowlingTeamID: cricket.home}, scoring.ErrInvalidRequest},
		{"team bowls to itself", cricket, scoring.CommandRequest{Type: scoring.CommandTypeStartInnings, BattingTeamID: cricket.home, BowlingTeamID: cricket.home}, scoring.ErrInvalidRequest},
		{"goal in cricket", cricket, goal(cricket.home), scoring.ErrInvalidRequest},
		{"ball in football", football, ball(1), scoring.ErrInvalidRequest},
		{"goal without team", football, scoring.CommandRequest{Type: scoring.CommandTypeAddGoal, PlayerID: uuid.New()}, scoring.ErrInvalidRequest},
		{"goal without scorer", football, scoring.CommandRequest{Type: scoring.CommandTypeAddGoal, TeamID: football.home}, scoring.ErrInvalidRequest},
		{"green card", football, scoring.CommandRequest{Type: scoring.CommandTypeAddCard, TeamID: football.home, CardColor: "GREEN"}, scoring.ErrInvalidRequest},
		{"shot without outcome", football, scoring.CommandRequest{Type: scoring.CommandTypeAddShot, TeamID: football.home}, scoring.ErrInvalidRequest},
		{"self substitution", football, scoring.CommandRequest{Type: scoring.CommandTypeSubstitutePlayer, TeamID: football.home, PlayerOutID: lineup.Players[0], PlayerInID: lineup.Players[0]}, scoring.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fixture.builder.Build(tt.fixture.match, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestBuilder_InningsLimit(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	start := scoring.CommandRequest{Type: scoring.CommandTypeStartInnings, BattingTeamID: f.away, BowlingTeamID: f.home}
	f.exec(t, scoring.CommandRequest{Type: scoring.CommandTypeEndInnings})
	f.exec(t, start)
	f.exec(t, scoring.CommandRequest{Type: scoring.CommandTypeEndInnings})

	_, err := f.builder.Build(f.match, start)
	assert.ErrorIs(t, err, scoring.ErrInvalidRequest)
}

func TestBuilder_SubstitutionLimit(t *testing.T) {
	t.Parallel()

	f := newFootballFixture(t)
	lineup := f.football(t).Lineup(f.home)
	lineup.SubstitutionsMade = f.football(t).Config.MaxSubstitutions

	_, err := f.builder.Build(f.match, scoring.CommandRequest{
		Type:        scoring.CommandTypeSubstitutePlayer,
		TeamID:      f.home,
		PlayerOutID: lineup.Players[0],
		PlayerInID:  lineup.Bench[0],
	})
	assert.ErrorIs(t, err, scoring.ErrInvalidRequest)
}

func TestBuilder_BowlerDefaultsToCurrentOver(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	bowler := f.cricket(t).CurrentOver().BowlerID

	cmd := f.build(t, ball(2))
	addBall, ok := cmd.(*scoring.AddBallCommand)
	require.True(t, ok)
	assert.Equal(t, bowler, addBall.Ball().BowlerID)
	assert.Equal(t, batter, addBall.Ball().BatterID)

	endOver, ok := f.build(t, scoring.CommandRequest{Type: scoring.CommandTypeEndOver}).(*scoring.EndOverCommand)
	require.True(t, ok)
	assert.Same(t, f.cricket(t).CurrentOver(), endOver.Previous())
	assert.Equal(t, 2, endOver.Next().Number)
}

func TestBuilder_DetailsComeFromFactory(t *testing.T) {
	t.Parallel()

	cricket := newCricketFixture(t)
	football := newFootballFixture(t)
	scorer := football.football(t).Lineup(football.home).Players[9]

	tests := []struct {
		name    string
		fixture *fixture
		req     scoring.CommandRequest
		kind    models.DetailKind
		check   func(t *testing.T, detail models.Detail)
	}{
		{"extras", cricket, scoring.CommandRequest{Type: scoring.CommandTypeAddExtras, ExtrasType: models.ExtrasNoBall, ExtrasRuns: 1}, models.DetailKindExtras, func(t *testing.T, d models.Detail) {
			assert.Equal(t, &models.ExtrasDetail{Type: models.ExtrasNoBall, Runs: 1}, d)
		}},
		{"wicket", cricket, scoring.CommandRequest{Type: scoring.CommandTypeAddWicket, BatterID: batter, DismissalType: models.DismissalLBW}, models.DetailKindWicket, func(t *testing.T, d models.Detail) {
			wicket := d.(*models.WicketDetail)
			assert.Equal(t, models.DismissalLBW, wicket.DismissalType)
			assert.Equal(t, batter, wicket.BatterOutID)
		}},
		{"goal", football, scoring.CommandRequest{Type: scoring.CommandTypeAddGoal, TeamID: football.home, PlayerID: scorer, Minute: 30}, models.DetailKindGoal, func(t *testing.T, d models.Detail) {
			goal := d.(*models.GoalDetail)
			assert.Equal(t, scorer, goal.ScorerID)
			assert.Equal(t, models.GoalTypeOpenPlay, goal.GoalType)
		}},
		{"card", football, scoring.CommandRequest{Type: scoring.CommandTypeAddCard, TeamID: football.away, CardColor: models.CardRed, CardReason: "dissent"}, models.DetailKindCard, func(t *testing.T, d models.Detail) {
			assert.Equal(t, &models.CardDetail{Color: models.CardRed, Reason: "dissent"}, d)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.fixture.exec(t, tt.req)
			require.True(t, res.Applied())
			cmd, _ := tt.fixture.manager.Undo()
			_, res = tt.fixture.manager.Redo()
			require.True(t, res.Applied())
			id, ok := cmd.EventID()
			require.True(t, ok)

			var detail models.Detail
			if c, isCricket := tt.fixture.match.Cricket(); isCricket {
				for _, e := range c.Events {
					if e.ID == id {
						detail = e.Detail
					}
				}
			} else {
				for _, e := range tt.fixture.football(t).Events {
					if e.ID == id {
						detail = e.Detail
					}
				}
			}
			require.NotNil(t, detail)
			assert.Equal(t, tt.kind, detail.Kind())
			tt.check(t, detail)
		})
	}
}

func TestBuilder_FactoryWithoutSport(t *testing.T) {
	t.Parallel()

	f := newCricketFixture(t)
	builder := scoring.NewBuilder(base.NewFactory(clockwork.NewFakeClock(), models.SportFootball))

	_, err := builder.Build(f.match, scoring.CommandRequest{Type: scoring.CommandTypeAddWicket, BatterID: batter, DismissalType: models.DismissalBowled})
	assert.ErrorIs(t, err, base.ErrUnsupportedSport)
}
