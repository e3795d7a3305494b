// Package fixtures seeds demo users and events for local environments.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"backstage/entity"
)

type Seeder interface {
	UpsertUser(ctx context.Context, userID, email string, role entity.Role) (entity.User, error)
	CreateEvent(ctx context.Context, event entity.Event) error
	GetEvent(ctx context.Context, eventID string) (entity.Event, error)
}

type demoUser struct {
	ID    string
	Email string
	Role  entity.Role
}

var demoUsers = []demoUser{
	{ID: "demo-fan", Email: "fan@backstage.local", Role: entity.RoleFan},
	{ID: "demo-vip-fan", Email: "vip@backstage.local", Role: entity.RoleVIPFan},
	{ID: "demo-band", Email: "band@backstage.local", Role: entity.RoleBand},
	{ID: "demo-admin", Email: "admin@backstage.local", Role: entity.RoleAdmin},
	{ID: "demo-moderator", Email: "moderator@backstage.local", Role: entity.RoleModerator},
}

func demoEvents(now time.Time) ([]entity.Event, error) {
	type spec struct {
		id          string
		title       string
		in          time.Duration
		maxCapacity *int
		prices      map[entity.TicketType]decimal.Decimal
	}

	specs := []spec{
		{id: "demo-club-night", title: "Club Night", in: 14 * 24 * time.Hour, maxCapacity: lo.ToPtr(250)},
		{id: "demo-arena-tour", title: "Arena Tour", in: 60 * 24 * time.Hour, maxCapacity: lo.ToPtr(12000), prices: map[entity.TicketType]decimal.Decimal{
			entity.TicketTypeVIP:       decimal.RequireFromString("180.00"),
			entity.TicketTypeBackstage: decimal.RequireFromString("349.00"),
		}},
		{id: "demo-livestream", title: "Livestream Session", in: 7 * 24 * time.Hour},
	}

	events := make([]entity.Event, 0, len(specs))
	for _, s := range specs {
		event, err := entity.NewEvent(s.id, s.title, now.Add(s.in), s.maxCapacity, s.prices)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// Seed is safe to run on every start-up. Existing events are left untouched.
func Seed(ctx context.Context, seeder Seeder) error {
	logger := log.FromContext(ctx)

	for _, u := range demoUsers {
		if _, err := seeder.UpsertUser(ctx, u.ID, u.Email, u.Role); err != nil {
			return fmt.Errorf("could not seed user %s: %w", u.ID, err)
		}
	}

	events, err := demoEvents(time.Now().UTC().Truncate(time.Hour))
	if err != nil {
		return err
	}

	for _, event := range events {
		_, err := seeder.GetEvent(ctx, event.EventID)
		if err == nil {
			continue
		}
		if !errors.Is(err, entity.ErrEventNotFound) {
			return fmt.Errorf("could not check event %s: %w", event.EventID, err)
		}

		if err := seeder.CreateEvent(ctx, event); err != nil {
			return fmt.Errorf("could not seed event %s: %w", event.EventID, err)
		}
	}

	logger.WithField("users", len(demoUsers)).WithField("events", len(events)).Info("Demo data seeded")

	return nil
}
