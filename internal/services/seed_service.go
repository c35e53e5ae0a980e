// Package services – SeedService
//
// SeedService loads demo teams and announcements so a fresh install has
// something to show. Teams that already exist are skipped; events are always
// added.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/repo"
)

// SeedResult reports what SeedDemo wrote.
type SeedResult struct {
	TeamsCreated  int `json:"teams_created"`
	TeamsSkipped  int `json:"teams_skipped"`
	EventsCreated int `json:"events_created"`
}

// SeedService writes demo data through the team and event services.
type SeedService struct {
	DB    *gorm.DB
	Clock func() time.Time
}

// SeedDemo creates the demo teams with their scores and the demo events.
func (s *SeedService) SeedDemo(ctx context.Context) (*SeedResult, error) {
	tr := otel.Tracer("services/SeedService")
	ctx, span := tr.Start(ctx, "SeedDemo")
	defer span.End()

	res := &SeedResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		teams := &TeamService{DB: tx, Clock: s.Clock}
		events := &EventService{DB: tx, Clock: s.Clock}

		for _, d := range demoTeams {
			exists, err := repo.TeamNameExists(ctx, tx, d.Name)
			if err != nil {
				return err
			}
			if exists {
				res.TeamsSkipped++
				continue
			}
			project := d.Project
			desc := "Innovative " + d.Project + " designed for maximum impact"
			t, err := teams.Create(ctx, CreateTeamInput{
				Name:               d.Name,
				Members:            d.Members,
				ProjectName:        &project,
				ProjectDescription: &desc,
			})
			if errors.Is(err, ErrConflict) {
				res.TeamsSkipped++
				continue
			}
			if err != nil {
				return err
			}
			if _, err := teams.SetScore(ctx, t.ID, d.Score); err != nil {
				return err
			}
			res.TeamsCreated++
		}
		for _, e := range demoEvents {
			e.CreatedBy = DefaultEventAuthor
			if _, err := events.Create(ctx, e); err != nil {
				return err
			}
			res.EventsCreated++
		}
		return nil
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, storage(err, nil)
	}
	span.SetAttributes(
		attribute.Int("seed.teams_created", res.TeamsCreated),
		attribute.Int("seed.events_created", res.EventsCreated),
	)
	return res, nil
}
