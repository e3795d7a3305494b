package ticketing

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"backstage/entity"
)

type Service struct {
	transactor Transactor
	catalog    entity.PricingCatalog
	payments   PaymentStrategy
	now        func() time.Time
}

func NewService(transactor Transactor, catalog entity.PricingCatalog, payments PaymentStrategy) *Service {
	if transactor == nil {
		panic("missing transactor")
	}
	if payments == nil {
		panic("missing payments")
	}

	return &Service{
		transactor: transactor,
		catalog:    catalog,
		payments:   payments,
		now:        time.Now,
	}
}

func (s *Service) PaymentStrategy() string {
	return s.payments.Name()
}

// recomputeAccess rebuilds the user's cached flags from their current tickets. It must run after
// every ticket mutation, in the same unit of work.
func recomputeAccess(ctx context.Context, uow UnitOfWork, userID string) (entity.UserAccess, error) {
	user, err := uow.UserByID(ctx, userID)
	if err != nil {
		return entity.UserAccess{}, err
	}

	tickets, err := uow.TicketsByOwner(ctx, userID)
	if err != nil {
		return entity.UserAccess{}, fmt.Errorf("could not get tickets of %s: %w", userID, err)
	}

	access := entity.AggregateAccess(user.Role, tickets)
	if access == user.UserAccess {
		return access, nil
	}

	if err := uow.UpdateUserAccess(ctx, userID, access); err != nil {
		return entity.UserAccess{}, fmt.Errorf("could not update access of %s: %w", userID, err)
	}

	log.FromContext(ctx).WithField("user_id", userID).Debugf("Access recomputed: %+v", access)

	return access, nil
}

// RecomputeAccess is exposed for repair jobs; normal flows recompute on their own.
func (s *Service) RecomputeAccess(ctx context.Context, userID string) (entity.UserAccess, error) {
	var access entity.UserAccess
	err := s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		access, err = recomputeAccess(ctx, uow, userID)
		return err
	})
	return access, err
}

func (s *Service) UpsertUser(ctx context.Context, userID, email string, role entity.Role) (entity.User, error) {
	user, err := entity.NewUser(userID, email, role)
	if err != nil {
		return entity.User{}, err
	}

	err = s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		if err := uow.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("could not save user: %w", err)
		}

		access, err := recomputeAccess(ctx, uow, user.UserID)
		if err != nil {
			return err
		}
		user.UserAccess = access

		return nil
	})
	if err != nil {
		return entity.User{}, err
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (entity.User, error) {
	var user entity.User
	err := s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		user, err = uow.UserByID(ctx, userID)
		return err
	})
	return user, err
}

func (s *Service) CreateEvent(ctx context.Context, event entity.Event) error {
	return s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		return uow.AddEvent(ctx, event)
	})
}

func (s *Service) GetEvent(ctx context.Context, eventID string) (entity.Event, error) {
	var event entity.Event
	err := s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		event, err = uow.EventByID(ctx, eventID)
		return err
	})
	return event, err
}

func (s *Service) AttachArtifact(ctx context.Context, ticketID, ref string) error {
	return s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		return uow.SetArtifactRef(ctx, ticketID, ref)
	})
}
