package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps flights, subscribers and subscriptions in a single
// SQLite file. It is used for local runs and tests.
type SQLiteStore struct {
	conn *sql.DB
}

var (
	_ repository.FlightRecordRepository = (*SQLiteStore)(nil)
	_ repository.SubscriberRepository   = (*SQLiteStore)(nil)
	_ repository.SubscriptionRepository = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens the database at path and creates the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// single writer; avoids SQLITE_BUSY between the scheduler and the API
	conn.SetMaxOpenConns(1)

	store := &SQLiteStore{conn: conn}
	if err := store.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS flights (
		id TEXT PRIMARY KEY,
		flight_number TEXT NOT NULL,
		scheduled_time DATETIME NOT NULL,
		estimated_time DATETIME NOT NULL,
		terminal TEXT NOT NULL DEFAULT '',
		gate TEXT NOT NULL DEFAULT '',
		delay INTEGER NOT NULL DEFAULT 0,
		time_zone TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_flights_number ON flights(flight_number, scheduled_time);

	CREATE TABLE IF NOT EXISTS subscribers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		phone_number TEXT NOT NULL DEFAULT '',
		travel_date DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS flight_subscriptions (
		flight_id TEXT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
		subscriber_id TEXT NOT NULL REFERENCES subscribers(id),
		created_at DATETIME NOT NULL,
		PRIMARY KEY (flight_id, subscriber_id)
	);
	`

	_, err := s.conn.Exec(schema)
	return err
}

const flightColumns = `id, flight_number, scheduled_time, estimated_time, terminal, gate, delay, time_zone, created_at, updated_at`

// FindAll returns every stored flight ordered by departure
func (s *SQLiteStore) FindAll(ctx context.Context) ([]*entity.FlightRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY scheduled_time`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var records []*entity.FlightRecord
	for rows.Next() {
		record, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// FindByID finds a flight by its identifier
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*entity.FlightRecord, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id)
	return scanFlightRow(row)
}

// FindByFlightNumber returns the earliest scheduled flight carrying the number
func (s *SQLiteStore) FindByFlightNumber(ctx context.Context, flightNumber string) (*entity.FlightRecord, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+flightColumns+` FROM flights WHERE flight_number = ? ORDER BY scheduled_time LIMIT 1`,
		flightNumber)
	return scanFlightRow(row)
}

// Save inserts or overwrites a flight
func (s *SQLiteStore) Save(ctx context.Context, record *entity.FlightRecord) error {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	query := `
	INSERT INTO flights (` + flightColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		flight_number = excluded.flight_number,
		scheduled_time = excluded.scheduled_time,
		estimated_time = excluded.estimated_time,
		terminal = excluded.terminal,
		gate = excluded.gate,
		delay = excluded.delay,
		time_zone = excluded.time_zone,
		updated_at = excluded.updated_at
	`

	_, err := s.conn.ExecContext(ctx, query,
		record.ID,
		record.FlightNumber,
		record.ScheduledTime.UTC(),
		record.EstimatedTime.UTC(),
		record.Terminal,
		record.Gate,
		record.Delay,
		record.TimeZone,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save flight %s: %w", record.FlightNumber, err)
	}
	return nil
}

// UpsertByEmail inserts the subscriber or refreshes the one registered under the same email
func (s *SQLiteStore) UpsertByEmail(ctx context.Context, subscriber *entity.Subscriber) error {
	now := time.Now().UTC()
	if subscriber.ID == "" {
		subscriber.ID = uuid.NewString()
	}

	query := `
	INSERT INTO subscribers (id, name, email, phone_number, travel_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(email) DO UPDATE SET
		name = excluded.name,
		phone_number = excluded.phone_number,
		travel_date = excluded.travel_date,
		updated_at = excluded.updated_at
	`

	_, err := s.conn.ExecContext(ctx, query,
		subscriber.ID,
		subscriber.Name,
		subscriber.Email,
		subscriber.PhoneNumber,
		subscriber.TravelDate,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscriber: %w", err)
	}

	stored, err := s.FindByEmail(ctx, subscriber.Email)
	if err != nil {
		return err
	}
	*subscriber = *stored
	return nil
}

// FindByEmail finds a subscriber by email
func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, email, phone_number, travel_date, created_at, updated_at FROM subscribers WHERE email = ?`,
		email)

	subscriber, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return subscriber, err
}

// Subscribe links a subscriber to a flight; linking twice is a no-op
func (s *SQLiteStore) Subscribe(ctx context.Context, flightID, subscriberID string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO flight_subscriptions (flight_id, subscriber_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(flight_id, subscriber_id) DO NOTHING`,
		flightID, subscriberID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// Unsubscribe removes the link, leaving the subscriber in place
func (s *SQLiteStore) Unsubscribe(ctx context.Context, flightID, subscriberID string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM flight_subscriptions WHERE flight_id = ? AND subscriber_id = ?`,
		flightID, subscriberID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// FindSubscribers lists everyone subscribed to a flight
func (s *SQLiteStore) FindSubscribers(ctx context.Context, flightID string) ([]*entity.Subscriber, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT s.id, s.name, s.email, s.phone_number, s.travel_date, s.created_at, s.updated_at
	FROM subscribers s
	JOIN flight_subscriptions fs ON fs.subscriber_id = s.id
	WHERE fs.flight_id = ?
	ORDER BY fs.created_at, s.email
	`, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []*entity.Subscriber
	for rows.Next() {
		subscriber, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subscribers = append(subscribers, subscriber)
	}
	return subscribers, rows.Err()
}

// Delete removes a flight. Its subscriptions go with it through the
// foreign key cascade; subscribers are kept.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM flights WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveFlight drops every subscription of a flight
func (s *SQLiteStore) RemoveFlight(ctx context.Context, flightID string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM flight_subscriptions WHERE flight_id = ?`, flightID)
	if err != nil {
		return fmt.Errorf("failed to remove flight subscriptions: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFlight(row scanner) (*entity.FlightRecord, error) {
	record := &entity.FlightRecord{}
	err := row.Scan(
		&record.ID,
		&record.FlightNumber,
		&record.ScheduledTime,
		&record.EstimatedTime,
		&record.Terminal,
		&record.Gate,
		&record.Delay,
		&record.TimeZone,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func scanFlightRow(row *sql.Row) (*entity.FlightRecord, error) {
	record, err := scanFlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return record, err
}

func scanSubscriber(row scanner) (*entity.Subscriber, error) {
	subscriber := &entity.Subscriber{}
	var travelDate sql.NullTime
	err := row.Scan(
		&subscriber.ID,
		&subscriber.Name,
		&subscriber.Email,
		&subscriber.PhoneNumber,
		&travelDate,
		&subscriber.CreatedAt,
		&subscriber.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if travelDate.Valid {
		subscriber.TravelDate = &travelDate.Time
	}
	return subscriber, nil
}
