package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hackathon-backend/internal/services"
	"github.com/tbourn/hackathon-backend/internal/utils"
)

// CreateTeamRequest is the JSON payload for POST /teams.
type CreateTeamRequest struct {
	TeamName           string   `json:"team_name"                     example:"Code Crushers"`
	Members            []string `json:"members"                       example:"Alice,Bob"`
	ProjectName        *string  `json:"project_name,omitempty"        example:"EcoTracker"`
	ProjectDescription *string  `json:"project_description,omitempty" example:"Carbon footprint tracker"`
	RepoLink           *string  `json:"repo_link,omitempty"           example:"https://github.com/example/ecotracker"`
}

// SetScoreRequest is the JSON payload for PUT /teams/{id}/score. Any integer
// is accepted, including zero and negatives.
type SetScoreRequest struct {
	Score *int64 `json:"score" binding:"required" example:"850"`
}

// LeaderboardResponse lists ranked teams, best first.
type LeaderboardResponse struct {
	Leaderboard []services.RankedTeam `json:"leaderboard"`
	LastUpdated time.Time             `json:"last_updated"`
}

// Leaderboard godoc
// @ID          leaderboard
// @Summary     Team leaderboard
// @Description Teams by score; ties go to the team that reached its score first. Supports a weak ETag via If-None-Match.
// @Tags        Teams
// @Produce     json
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       limit          query   int     false  "Max teams"  minimum(1) maximum(100) default(10)
// @Success     200  {object}  handlers.LeaderboardResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /leaderboard [get]
func (h *Handlers) Leaderboard(c *gin.Context) {
	ctx := c.Request.Context()
	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultLeaderboardLimit)

	// ETag pre-check (best effort).
	lastUpdated := h.now()
	if count, maxTS, err := h.teams.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
			lastUpdated = maxTS.UTC()
		}
		etag := fmt.Sprintf(`W/"teams:%d:%d:%d"`, limit, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	rows, err := h.teams.Leaderboard(ctx, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	if rows == nil {
		rows = []services.RankedTeam{}
	}
	ok(c, http.StatusOK, LeaderboardResponse{Leaderboard: rows, LastUpdated: lastUpdated})
}

// CreateTeam godoc
// @ID          createTeam
// @Summary     Register a team
// @Description Team names are unique after trimming and Unicode normalization. Admin only.
// @Tags        Teams
// @Accept      json
// @Produce     json
// @Param       X-Admin-Code  header  string  false  "Admin code"
// @Param       body          body    handlers.CreateTeamRequest  true  "Team"
// @Success     201  {object}  domain.Team
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid admin code"
// @Failure     409  {object}  handlers.ErrorResponse  "Name taken"
// @Router      /teams [post]
func (h *Handlers) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	t, err := h.teams.Create(c.Request.Context(), services.CreateTeamInput{
		Name:               req.TeamName,
		Members:            req.Members,
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
		RepoLink:           req.RepoLink,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// GetTeam godoc
// @ID          getTeam
// @Summary     Get a team
// @Tags        Teams
// @Produce     json
// @Param       id  path  int  true  "Team ID"  minimum(1)
// @Success     200  {object}  domain.Team
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Team not found"
// @Router      /teams/{id} [get]
func (h *Handlers) GetTeam(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "team id must be a positive integer")
		return
	}
	t, err := h.teams.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// SetScore godoc
// @ID          setTeamScore
// @Summary     Overwrite a team's score
// @Tags        Teams
// @Accept      json
// @Produce     json
// @Param       X-Admin-Code  header  string  false  "Admin code"
// @Param       id            path    int     true   "Team ID"  minimum(1)
// @Param       body          body    handlers.SetScoreRequest  true  "Score"
// @Success     200  {object}  domain.Team
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Team not found"
// @Router      /teams/{id}/score [put]
func (h *Handlers) SetScore(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "team id must be a positive integer")
		return
	}
	var req SetScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "score (integer) required")
		return
	}
	t, err := h.teams.SetScore(c.Request.Context(), id, *req.Score)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}
