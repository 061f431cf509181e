// Package pgstore backs the order store with PostgreSQL via bun.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

type Config struct {
	DSN string `split_words:"true" required:"true"`
}

type customerRow struct {
	bun.BaseModel `bun:"table:customers"`

	CustomerID string `bun:"customer_id,pk"`
	Name       string `bun:"name"`
	Email      string `bun:"email"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID       string                `bun:"order_id,pk"`
	CustomerID    string                `bun:"customer_id"`
	Status        string                `bun:"status"`
	OrderDate     time.Time             `bun:"order_date"`
	Items         []contractx.OrderItem `bun:"items,type:jsonb"`
	TotalAmount   float64               `bun:"total_amount"`
	PaymentMethod string                `bun:"payment_method"`
}

type Store struct {
	db *bun.DB
}

func New(conf Config) (*Store, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(conf.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) FindCustomerByEmail(ctx context.Context, email string) (*contractx.Customer, error) {
	var row customerRow
	err := s.db.NewSelect().
		Model(&row).
		Where("lower(email) = lower(?)", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownCustomer, email)
		}
		return nil, fmt.Errorf("query customer: %w", err)
	}

	return &contractx.Customer{
		CustomerID: row.CustomerID,
		Name:       row.Name,
		Email:      row.Email,
	}, nil
}

func (s *Store) ListOrdersForCustomer(ctx context.Context, email string) ([]contractx.Order, error) {
	customer, err := s.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var rows []orderRow
	err = s.db.NewSelect().
		Model(&rows).
		Where("customer_id = ?", customer.CustomerID).
		Order("order_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	out := make([]contractx.Order, 0, len(rows))
	for i := range rows {
		out = append(out, toOrder(rows[i], customer.Email))
	}
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*contractx.Order, error) {
	var row orderRow
	err := s.db.NewSelect().
		Model(&row).
		Where("order_id = ?", orderID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", contractx.ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("query order: %w", err)
	}

	var owner customerRow
	email := ""
	err = s.db.NewSelect().
		Model(&owner).
		Where("customer_id = ?", row.CustomerID).
		Limit(1).
		Scan(ctx)
	if err == nil {
		email = owner.Email
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query order owner: %w", err)
	}

	order := toOrder(row, email)
	return &order, nil
}

func (s *Store) SetOrderStatus(ctx context.Context, orderID string, status contractx.OrderStatus) error {
	res, err := s.db.NewUpdate().
		Model((*orderRow)(nil)).
		Set("status = ?", string(status)).
		Where("order_id = ?", orderID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", contractx.ErrOrderNotFound, orderID)
	}
	return nil
}

func toOrder(row orderRow, email string) contractx.Order {
	return contractx.Order{
		OrderID:       row.OrderID,
		CustomerID:    row.CustomerID,
		CustomerEmail: strings.ToLower(email),
		Status:        contractx.OrderStatus(row.Status),
		OrderDate:     row.OrderDate,
		Items:         row.Items,
		TotalAmount:   row.TotalAmount,
		PaymentMethod: row.PaymentMethod,
	}
}
