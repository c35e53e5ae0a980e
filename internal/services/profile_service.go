// Package services – ProfileService
//
// ProfileService stores the self-declared identity of a caller. There is one
// profile per caller id; saving again overwrites it in place.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/repo"
)

// ProfileInput describes a profile save.
type ProfileInput struct {
	CallerID    string
	DisplayName string
	TeamName    string
	Email       *string
	Role        *string
}

// ProfileService manages user profiles.
type ProfileService struct {
	DB    *gorm.DB
	Clock func() time.Time
}

var emailCheck = validator.New()

// Upsert validates in and creates or overwrites the caller's profile.
func (s *ProfileService) Upsert(ctx context.Context, in ProfileInput) (*domain.UserProfile, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Upsert", trace.WithAttributes(attribute.String("caller.id", in.CallerID)))
	defer span.End()

	caller := strings.TrimSpace(in.CallerID)
	if caller == "" {
		return nil, ErrMissingCaller
	}
	display := normalizeName(in.DisplayName)
	if display == "" {
		return nil, ErrDisplayNameRequired
	}
	team := normalizeName(in.TeamName)
	if team == "" {
		return nil, ErrProfileTeamRequired
	}
	email := trimOptional(in.Email)
	if email != nil && emailCheck.Var(*email, "email") != nil {
		return nil, ErrInvalidEmail
	}

	now := nowUTC(s.Clock)
	p, err := repo.UpsertProfile(ctx, s.DB, &domain.UserProfile{
		CallerID:    caller,
		DisplayName: display,
		TeamName:    team,
		Email:       email,
		Role:        trimOptional(in.Role),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, storage(err, nil)
	}
	return p, nil
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, callerID string) (*domain.UserProfile, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("caller.id", callerID)))
	defer span.End()

	p, err := repo.GetProfile(ctx, s.DB, strings.TrimSpace(callerID))
	if err != nil {
		return nil, storage(err, ErrProfileNotFound)
	}
	return p, nil
}
