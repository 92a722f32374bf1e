package rosters_client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcdev12/scorekeeper/go/clients"
	"github.com/mcdev12/scorekeeper/go/internal/models"
)

// ErrTeamNotFound is returned when the roster service has no sheet for a team.
var ErrTeamNotFound = errors.New("team sheet not found")

type Player struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Number   int       `json:"number"`
	Position string    `json:"position"`
	Starter  bool      `json:"starter"`
}

type TeamSheetResponse struct {
	TeamID  uuid.UUID `json:"team_id"`
	Name    string    `json:"name"`
	Code    string    `json:"code"`
	Players []Player  `json:"players"`
}

// GetTeamSheet returns the announced sheet for teamID. Players flagged as
// starters form the lineup in the order listed; the rest are the bench.
func (c *RostersClient) GetTeamSheet(ctx context.Context, teamID uuid.UUID) (models.TeamSheet, error) {
	var response TeamSheetResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(TeamSheetEndpoint, teamID), &response); err != nil {
		var statusErr *clients.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return models.TeamSheet{}, fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
		}
		return models.TeamSheet{}, fmt.Errorf("failed to get team sheet: %w", err)
	}
	if response.TeamID != teamID {
		return models.TeamSheet{}, fmt.Errorf("roster service returned team %s, asked for %s", response.TeamID, teamID)
	}

	sheet := models.TeamSheet{
		ID:   response.TeamID,
		Name: response.Name,
		Code: response.Code,
	}
	for _, p := range response.Players {
		if p.Starter {
			sheet.Starters = append(sheet.Starters, p.ID)
		} else {
			sheet.Bench = append(sheet.Bench, p.ID)
		}
	}
	return sheet, nil
}
