// Package orders persists placed orders in PostgreSQL together with the
// outbox events announcing them.
package orders

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bagerileve/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const EventOrderPlaced = "OrderPlaced"

// maxOrderNumberAttempts bounds how many fresh numbers CreateOrder draws when
// the day's number is already taken.
const maxOrderNumberAttempts = 5

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already taken")
)

//go:embed migrations/*.sql
var migrations embed.FS

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c *Credentials) dsn() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// OutboxEvent is an order event waiting to be published.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

type Repository struct {
	db        *sql.DB
	loc       *time.Location
	now       func() time.Time
	newNumber func(time.Time) string
}

// NewRepository connects to PostgreSQL. Order numbers use the calendar day
// in loc.
func NewRepository(cred *Credentials, loc *time.Location) (*Repository, error) {
	db, err := sql.Open("postgres", cred.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	if loc == nil {
		loc = time.Local
	}
	return &Repository{db: db, loc: loc, now: time.Now, newNumber: NewOrderNumber}, nil
}

func (r *Repository) RunMigrations() error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// CreateOrder stores snapshot under a fresh order number and queues an
// OrderPlaced event in the same transaction. A number already taken is
// redrawn up to maxOrderNumberAttempts times.
func (r *Repository) CreateOrder(ctx context.Context, snapshot domain.OrderSnapshot) (*domain.Order, error) {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal order snapshot: %w", err)
	}

	for attempt := 1; ; attempt++ {
		order := &domain.Order{
			OrderNumber: r.newNumber(r.now().In(r.loc)),
			Snapshot:    snapshot,
		}
		err := r.insertOrder(ctx, order, snapshotJSON)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrDuplicateOrderNumber) || attempt == maxOrderNumberAttempts {
			return nil, err
		}
	}
}

func (r *Repository) insertOrder(ctx context.Context, order *domain.Order, snapshotJSON []byte) error {
	snapshot := order.Snapshot

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_number, customer_email, pickup_date, total, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		uuid.New(),
		order.OrderNumber,
		snapshot.Customer.Email,
		snapshot.PickupDate,
		snapshot.Totals.Total,
		snapshotJSON,
	).Scan(&order.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%s: %w", order.OrderNumber, ErrDuplicateOrderNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	payload, err := json.Marshal(newOrderPlacedPayload(order))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_events (aggregate_id, event_type, payload)
		VALUES ($1, $2, $3)`,
		order.OrderNumber, EventOrderPlaced, payload,
	); err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func (r *Repository) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	if !ValidOrderNumber(orderNumber) {
		return nil, ErrOrderNotFound
	}

	var order domain.Order
	var snapshotJSON []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT order_number, snapshot, created_at
		FROM orders WHERE order_number = $1`,
		orderNumber,
	).Scan(&order.OrderNumber, &snapshotJSON, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by number: %w", err)
	}

	if err := json.Unmarshal(snapshotJSON, &order.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal order snapshot: %w", err)
	}
	return &order, nil
}

// GetUnprocessedEvents returns up to limit queued events, oldest first.
func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM order_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		e := &OutboxEvent{}
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE order_events SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event %d processed: %w", id, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type orderPlacedPayload struct {
	OrderNumber string             `json:"orderNumber"`
	CreatedAt   time.Time          `json:"createdAt"`
	PickupDate  string             `json:"pickupDate"`
	Items       []domain.OrderLine `json:"items"`
	Totals      domain.CartTotal   `json:"totals"`
}

// The event leaves customer contact details out.
func newOrderPlacedPayload(order *domain.Order) orderPlacedPayload {
	return orderPlacedPayload{
		OrderNumber: order.OrderNumber,
		CreatedAt:   order.CreatedAt,
		PickupDate:  order.Snapshot.PickupDate,
		Items:       order.Snapshot.Items,
		Totals:      order.Snapshot.Totals,
	}
}
