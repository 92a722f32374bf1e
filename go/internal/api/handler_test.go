package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/scoring"
	"github.com/mcdev12/scorekeeper/go/internal/session"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
	_ "github.com/mcdev12/scorekeeper/go/internal/sports/cricket"
	_ "github.com/mcdev12/scorekeeper/go/internal/sports/football"
	"github.com/mcdev12/scorekeeper/go/internal/store"
)

type fakeSheets struct {
	sheets map[uuid.UUID]models.TeamSheet
	calls  int
}

func (f *fakeSheets) GetTeamSheet(ctx context.Context, teamID uuid.UUID) (models.TeamSheet, error) {
	f.calls++
	sheet, ok := f.sheets[teamID]
	if !ok {
		return models.TeamSheet{}, errors.New("no such team")
	}
	return sheet, nil
}

type testServer struct {
	router *mux.Router
	sheets *fakeSheets
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	factory := base.NewFactory(clockwork.NewFakeClock())
	registry := session.NewRegistry(factory, nil, nil, store.NewMemoryStore())
	sheets := &fakeSheets{sheets: make(map[uuid.UUID]models.TeamSheet)}
	router := mux.NewRouter()
	NewHandler(registry, sheets).RegisterRoutes(router)
	return &testServer{router: router, sheets: sheets}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sheet(starters, bench int) models.TeamSheet {
	s := models.TeamSheet{ID: uuid.New()}
	for i := 0; i < starters; i++ {
		s.Starters = append(s.Starters, uuid.New())
	}
	for i := 0; i < bench; i++ {
		s.Bench = append(s.Bench, uuid.New())
	}
	return s
}

func decodeMatch(t *testing.T, rec *httptest.ResponseRecorder) (MatchResponse, *models.Match) {
	t.Helper()
	var resp MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var match models.Match
	require.NoError(t, json.Unmarshal(resp.Match, &match))
	return resp, &match
}

func decodeCommand(t *testing.T, rec *httptest.ResponseRecorder) (CommandResponse, *models.Match) {
	t.Helper()
	var resp CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var match models.Match
	require.NoError(t, json.Unmarshal(resp.Match, &match))
	return resp, &match
}

func TestFootballMatchLifecycle(t *testing.T) {
	srv := newTestServer(t)
	home, away := sheet(11, 3), sheet(11, 3)

	rec := srv.do(t, http.MethodPost, "/api/matches", map[string]interface{}{
		"sport":  "football",
		"home":   home,
		"away":   away,
		"title":  "Derby",
		"config": map[string]int{"max_substitutions": 3},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created, match := decodeMatch(t, rec)
	assert.Equal(t, uint64(0), created.Sequence)
	assert.Equal(t, models.MatchStatusScheduled, match.Status)
	football, ok := match.Football()
	require.True(t, ok)
	assert.Equal(t, 3, football.Config.MaxSubstitutions)

	path := "/api/matches/" + match.ID.String()
	goal := scoring.CommandRequest{
		Type:     scoring.CommandTypeAddGoal,
		TeamID:   away.ID,
		PlayerID: away.Starters[8],
		Minute:   30,
	}

	rec = srv.do(t, http.MethodPost, path+"/commands", goal)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodPost, path+"/status", map[string]string{"status": "LIVE"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, path+"/commands", goal)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out, match := decodeCommand(t, rec)
	assert.True(t, out.Result.Applied())
	assert.Equal(t, scoring.CommandTypeAddGoal, out.CommandType)
	require.NotNil(t, out.EventID)
	football, _ = match.Football()
	assert.Equal(t, 1, football.AwayScore)
	require.Len(t, football.Events, 1)
	assert.Equal(t, *out.EventID, football.Events[0].ID)

	rec = srv.do(t, http.MethodPost, path+"/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out, match = decodeCommand(t, rec)
	assert.True(t, out.CanRedo)
	football, _ = match.Football()
	assert.Equal(t, 0, football.AwayScore)
	assert.Empty(t, football.Events)

	rec = srv.do(t, http.MethodPost, path+"/redo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out, match = decodeCommand(t, rec)
	assert.Equal(t, uint64(4), out.Sequence)
	football, _ = match.Football()
	assert.Equal(t, 1, football.AwayScore)

	rec = srv.do(t, http.MethodPost, path+"/redo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out, _ = decodeCommand(t, rec)
	assert.Equal(t, scoring.StatusSkipped, out.Result.Status)
	assert.Equal(t, scoring.ReasonNothingToRedo, out.Result.Reason)

	rec = srv.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got, match := decodeMatch(t, rec)
	assert.Equal(t, uint64(4), got.Sequence)
	assert.True(t, got.CanUndo)
	assert.Equal(t, "Derby", match.Title)

	rec = srv.do(t, http.MethodPost, path+"/status", map[string]string{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(t, http.MethodPost, path+"/status", map[string]string{"status": "LIVE"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndMatchWithPurge(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/matches", map[string]interface{}{
		"sport": "football",
		"home":  sheet(11, 3),
		"away":  sheet(11, 3),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, match := decodeMatch(t, rec)
	path := "/api/matches/" + match.ID.String()

	rec = srv.do(t, http.MethodDelete, path+"?purge=true", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.do(t, http.MethodDelete, path+"?purge=true", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCricketCommands(t *testing.T) {
	srv := newTestServer(t)
	home, away := uuid.New(), uuid.New()

	rec := srv.do(t, http.MethodPost, "/api/matches", map[string]interface{}{
		"sport": "cricket",
		"home":  map[string]string{"id": home.String()},
		"away":  map[string]string{"id": away.String()},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, match := decodeMatch(t, rec)
	path := "/api/matches/" + match.ID.String()

	rec = srv.do(t, http.MethodPost, path+"/status", map[string]string{"status": "LIVE"})
	require.Equal(t, http.StatusOK, rec.Code)

	bowler, batter := uuid.New(), uuid.New()
	requests := []scoring.CommandRequest{
		{Type: scoring.CommandTypeStartInnings, BattingTeamID: home, BowlingTeamID: away, BowlerID: bowler},
		{Type: scoring.CommandTypeAddBall, BatterID: batter, Runs: 4, IsBoundary: true},
		{Type: scoring.CommandTypeAddExtras, BatterID: batter, ExtrasType: models.ExtrasWide, ExtrasRuns: 1},
	}
	for _, req := range requests {
		rec = srv.do(t, http.MethodPost, path+"/commands", req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	_, match = decodeCommand(t, rec)
	cricket, ok := match.Cricket()
	require.True(t, ok)
	innings := cricket.CurrentInnings()
	require.NotNil(t, innings)
	assert.Equal(t, 5, innings.TotalRuns)
	assert.Len(t, innings.CurrentOver().Balls, 2)

	rec = srv.do(t, http.MethodPost, path+"/commands", scoring.CommandRequest{Type: scoring.CommandTypeAddBall, Runs: 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, path+"/commands", scoring.CommandRequest{Type: scoring.CommandTypeAddGoal, TeamID: home})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateFetchesMissingLineups(t *testing.T) {
	srv := newTestServer(t)
	home, away := sheet(11, 2), sheet(11, 2)
	srv.sheets.sheets[home.ID] = home
	srv.sheets.sheets[away.ID] = away

	rec := srv.do(t, http.MethodPost, "/api/matches", map[string]interface{}{
		"sport": "football",
		"home":  map[string]string{"id": home.ID.String(), "name": "Home FC"},
		"away":  map[string]string{"id": away.ID.String()},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, match := decodeMatch(t, rec)
	football, _ := match.Football()
	assert.Equal(t, home.Starters, football.Lineup(home.ID).Players)
	assert.Equal(t, away.Bench, football.Lineup(away.ID).Bench)
	assert.Equal(t, 2, srv.sheets.calls)

	rec = srv.do(t, http.MethodPost, "/api/matches", map[string]interface{}{
		"sport": "football",
		"home":  map[string]string{"id": uuid.NewString()},
		"away":  map[string]string{"id": away.ID.String()},
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequestErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"invalid id", http.MethodGet, "/api/matches/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown match", http.MethodGet, "/api/matches/" + uuid.NewString(), nil, http.StatusNotFound},
		{"undo unknown match", http.MethodPost, "/api/matches/" + uuid.NewString() + "/undo", nil, http.StatusNotFound},
		{"unknown sport", http.MethodPost, "/api/matches", map[string]interface{}{"sport": "curling"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/matches", map[string]interface{}{"sport": "cricket", "colour": "red"}, http.StatusBadRequest},
		{"same teams", http.MethodPost, "/api/matches", map[string]interface{}{
			"sport": "cricket",
			"home":  map[string]string{"id": "0190d3c4-0000-7000-8000-000000000001"},
			"away":  map[string]string{"id": "0190d3c4-0000-7000-8000-000000000001"},
		}, http.StatusBadRequest},
		{"resume without snapshot", http.MethodPost, "/api/matches/" + uuid.NewString() + "/resume", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","matches":0}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusNotImplemented, statusFor(session.ErrNoStore))
	assert.Equal(t, http.StatusConflict, statusFor(models.ErrInvalidStatusTransition))
}
