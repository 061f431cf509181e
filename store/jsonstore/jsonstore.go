// Package jsonstore backs the order store with two JSON files on disk.
// It is the zero-infrastructure backend for local runs and tests.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

type Config struct {
	CustomersPath string `split_words:"true" default:"data/customers.json"`
	OrdersPath    string `split_words:"true" default:"data/orders.json"`
}

// Store keeps the full dataset in memory and rewrites the orders file on
// every status change. A single RWMutex guards both maps; the dataset is
// small enough that per-record locking would buy nothing.
type Store struct {
	customersPath string
	ordersPath    string

	mu        sync.RWMutex
	customers []contractx.Customer
	orders    []contractx.Order
}

func New(conf Config) (*Store, error) {
	s := &Store{
		customersPath: conf.CustomersPath,
		ordersPath:    conf.OrdersPath,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	customers, err := readJSONFile[[]contractx.Customer](s.customersPath)
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	orders, err := readJSONFile[[]contractx.Order](s.ordersPath)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = customers
	s.orders = orders
	return nil
}

func (s *Store) FindCustomerByEmail(ctx context.Context, email string) (*contractx.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.customers {
		if strings.EqualFold(s.customers[i].Email, email) {
			c := s.customers[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownCustomer, email)
}

// ListOrdersForCustomer returns the customer's orders in file order, so
// replies list them the way the dataset was authored.
func (s *Store) ListOrdersForCustomer(ctx context.Context, email string) ([]contractx.Order, error) {
	customer, err := s.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []contractx.Order
	for i := range s.orders {
		if s.orders[i].CustomerID == customer.CustomerID {
			order := s.orders[i]
			order.CustomerEmail = customer.Email
			out = append(out, order)
		}
	}
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*contractx.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			order := s.orders[i]
			order.CustomerEmail = s.emailForCustomerLocked(order.CustomerID)
			return &order, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", contractx.ErrOrderNotFound, orderID)
}

func (s *Store) SetOrderStatus(ctx context.Context, orderID string, status contractx.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", contractx.ErrOrderNotFound, orderID)
	}

	previous := s.orders[idx].Status
	s.orders[idx].Status = status

	if err := s.persistOrdersLocked(); err != nil {
		s.orders[idx].Status = previous
		return fmt.Errorf("persist orders: %w", err)
	}
	return nil
}

func (s *Store) emailForCustomerLocked(customerID string) string {
	for i := range s.customers {
		if s.customers[i].CustomerID == customerID {
			return s.customers[i].Email
		}
	}
	return ""
}

// persistOrdersLocked writes through a temp file and renames it over the
// target, so a crash mid-write never leaves a truncated dataset.
func (s *Store) persistOrdersLocked() error {
	// CustomerEmail is derived, never stored.
	snapshot := make([]contractx.Order, len(s.orders))
	copy(snapshot, s.orders)
	for i := range snapshot {
		snapshot[i].CustomerEmail = ""
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.ordersPath)
	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.ordersPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func readJSONFile[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
