package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/services"
)

// ProfileRequest is the JSON payload for PUT /profile.
type ProfileRequest struct {
	DisplayName string  `json:"display_name"    example:"Ada"`
	TeamName    string  `json:"team_name"       example:"Code Crushers"`
	Email       *string `json:"email,omitempty" example:"ada@example.com"`
	Role        *string `json:"role,omitempty"  example:"developer"`
}

// ProfileResponse reports the caller's profile, if any.
type ProfileResponse struct {
	Profile    *domain.UserProfile `json:"profile"`
	CallerID   string              `json:"caller_id"`
	HasProfile bool                `json:"has_profile"`
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Caller profile
// @Description Returns the profile bound to the caller. A caller without one gets has_profile=false, not 404.
// @Tags        Profile
// @Produce     json
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	who := caller(c)
	p, err := h.prof.Get(c.Request.Context(), who)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ProfileResponse{Profile: p, CallerID: who, HasProfile: p != nil})
}

// SaveProfile godoc
// @ID          saveProfile
// @Summary     Create or overwrite the caller profile
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ProfileRequest  true  "Profile"
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /profile [put]
func (h *Handlers) SaveProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	who := caller(c)
	p, err := h.prof.Upsert(c.Request.Context(), services.ProfileInput{
		CallerID:    who,
		DisplayName: req.DisplayName,
		TeamName:    req.TeamName,
		Email:       req.Email,
		Role:        req.Role,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ProfileResponse{Profile: p, CallerID: who, HasProfile: true})
}
