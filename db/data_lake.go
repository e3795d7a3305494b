package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"backstage/entity"
)

type DataLake struct {
	db *sqlx.DB
}

func NewDataLake(db *sqlx.DB) DataLake {
	if db == nil {
		panic("db is nil")
	}

	return DataLake{db: db}
}

func (s DataLake) StoreEvent(ctx context.Context, dataLakeEvent entity.DataLakeEvent) error {
	_, err := s.db.ExecContext(
		ctx,
		`
			INSERT INTO
			    data_lake_events (event_id, published_at, event_name, event_payload)
			VALUES
			    ($1, $2, $3, $4)`,
		dataLakeEvent.ID,
		dataLakeEvent.PublishedAt,
		dataLakeEvent.Name,
		string(dataLakeEvent.Payload),
	)
	if isErrorUniqueViolation(err) {
		// handling re-delivery
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not store %s event in data lake: %w", dataLakeEvent.ID, err)
	}

	return nil
}

func (s DataLake) GetEvents(ctx context.Context) ([]entity.DataLakeEvent, error) {
	var events []entity.DataLakeEvent
	err := s.db.SelectContext(ctx, &events, `
		SELECT event_id, published_at, event_name, event_payload::TEXT AS event_payload
		FROM data_lake_events
		ORDER BY published_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("could not get events from data lake: %w", err)
	}

	return events, nil
}
