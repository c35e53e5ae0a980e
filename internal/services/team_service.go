// Package services – TeamService
//
// TeamService registers teams and maintains the leaderboard. Team names are
// trimmed and NFC-normalized before storage so visually identical names
// collide on the unique index. Scores are overwritten, never accumulated.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/repo"
)

// Leaderboard limits.
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// CreateTeamInput describes a team registration.
type CreateTeamInput struct {
	Name               string
	Members            []string
	ProjectName        *string
	ProjectDescription *string
	RepoLink           *string
}

// RankedTeam is a leaderboard row; Rank starts at 1.
type RankedTeam struct {
	Rank int `json:"rank"`
	domain.Team
}

// TeamService manages teams and scores.
type TeamService struct {
	DB    *gorm.DB
	Clock func() time.Time
}

// Create registers a team with score 0.
func (s *TeamService) Create(ctx context.Context, in CreateTeamInput) (*domain.Team, error) {
	tr := otel.Tracer("services/TeamService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	name := normalizeName(in.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	members := make([]string, 0, len(in.Members))
	for _, m := range in.Members {
		if m = normalizeName(m); m != "" {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return nil, ErrTeamMembersRequired
	}
	span.SetAttributes(attribute.String("team.name", name))

	now := nowUTC(s.Clock)
	t := &domain.Team{
		TeamName:           name,
		Members:            members,
		ProjectName:        trimOptional(in.ProjectName),
		ProjectDescription: trimOptional(in.ProjectDescription),
		RepoLink:           trimOptional(in.RepoLink),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := repo.CreateTeam(ctx, s.DB, t); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrTeamExists
		}
		return nil, storage(err, nil)
	}
	return t, nil
}

// SetScore overwrites the team's score and returns the updated team. Any
// int64 is accepted, including negative values.
func (s *TeamService) SetScore(ctx context.Context, id uint, score int64) (*domain.Team, error) {
	tr := otel.Tracer("services/TeamService")
	ctx, span := tr.Start(ctx, "SetScore",
		trace.WithAttributes(
			attribute.Int64("team.id", int64(id)),
			attribute.Int64("team.score", score),
		),
	)
	defer span.End()

	var out *domain.Team
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateTeamScore(ctx, tx, id, score, nowUTC(s.Clock)); err != nil {
			return err
		}
		t, err := repo.GetTeam(ctx, tx, id)
		out = t
		return err
	})
	if err != nil {
		return nil, storage(err, ErrTeamNotFound)
	}
	return out, nil
}

// Get returns a team by ID.
func (s *TeamService) Get(ctx context.Context, id uint) (*domain.Team, error) {
	t, err := repo.GetTeam(ctx, s.DB, id)
	if err != nil {
		return nil, storage(err, ErrTeamNotFound)
	}
	return t, nil
}

// Leaderboard returns the top teams with their 1-based rank.
func (s *TeamService) Leaderboard(ctx context.Context, limit int) ([]RankedTeam, error) {
	tr := otel.Tracer("services/TeamService")
	ctx, span := tr.Start(ctx, "Leaderboard", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	teams, err := repo.ListLeaderboard(ctx, s.DB, clampLimit(limit, DefaultLeaderboardLimit, MaxLeaderboardLimit))
	if err != nil {
		return nil, storage(err, nil)
	}
	out := make([]RankedTeam, len(teams))
	for i, t := range teams {
		out[i] = RankedTeam{Rank: i + 1, Team: t}
	}
	return out, nil
}

// Stats returns the team count and last modification time for ETags.
func (s *TeamService) Stats(ctx context.Context) (int64, *time.Time, error) {
	n, at, err := repo.TeamsStats(ctx, s.DB)
	if err != nil {
		return 0, nil, storage(err, nil)
	}
	return n, at, nil
}

// normalizeName trims and NFC-normalizes a human-entered name.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
