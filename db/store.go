package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/jmoiron/sqlx"

	"backstage/entity"
	"backstage/pubsub/bus"
	"backstage/pubsub/outbox"
	"backstage/ticketing"
)

// Store runs units of work in serializable Postgres transactions. Events published from a unit
// of work go to the outbox table of the same transaction.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	if db == nil {
		panic("db must be set")
	}

	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, uow ticketing.UnitOfWork) error) error {
	return RetryInTx(ctx, s.db, sql.LevelSerializable, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, &unitOfWork{tx: tx})
	})
}

type unitOfWork struct {
	tx       *sqlx.Tx
	eventBus *cqrs.EventBus
}

func (u *unitOfWork) Publish(ctx context.Context, event entity.DomainEvent) error {
	if u.eventBus == nil {
		outboxPublisher, err := outbox.NewPublisherForDb(ctx, u.tx)
		if err != nil {
			return err
		}

		u.eventBus, err = bus.NewEventBus(outboxPublisher)
		if err != nil {
			return fmt.Errorf("could not create event bus: %w", err)
		}
	}

	return u.eventBus.Publish(ctx, event)
}
