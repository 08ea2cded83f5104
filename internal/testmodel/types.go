package testmodel

import (
	"reflect"
	"sync"
	"time"
)

// OrderStatus is a custom type for type-safe status handling.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Address represents a physical or billing/shipping address.
type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

// Product represents an individual item available for sale.
// We use int64 for Price to represent cents (lowest currency unit) to avoid floating-point errors.
type Product struct {
	ID         int64
	SKU        string
	Name       string
	PriceCents int64
	Inventory  int
	Tags       []string
	CreatedAt  time.Time
}

// Customer represents the user placing orders.
type Customer struct {
	ID       int64
	Email    string
	FullName string
	Address  *Address
	IsActive bool

	// Relationships
	Orders   []*Order
	Referrer *Customer
}

// Order represents a transaction made by a customer.
type Order struct {
	ID         int64
	Customer   *Customer
	Status     OrderStatus
	Items      []OrderItem
	Notes      []string
	Attributes map[string]any
	PlacedAt   *time.Time
	OrderedAt  time.Time

	audit []string
}

// OrderItem represents a specific product line within an order.
// It snapshots the price at the time of purchase.
type OrderItem struct {
	Product   *Product
	Quantity  int
	UnitPrice int64
}

// Store is the root of a fixture graph.
type Store struct {
	Name      string
	Customers []*Customer
	Products  map[string]*Product
	// Catalog lists products in display order; Featured is a prefix of it
	// sharing its backing array.
	Catalog  []*Product
	Featured []*Product
	Location *time.Location

	mu     sync.Mutex
	lookup map[int64]*Customer
}

// Audit returns the order's internal audit trail.
func (o *Order) Audit() []string {
	return o.audit
}

// Record appends to the order's internal audit trail.
func (o *Order) Record(entry string) {
	o.audit = append(o.audit, entry)
}

// Lookup finds a customer by ID through the store's private index.
func (s *Store) Lookup(id int64) *Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookup[id]
}

func (s *Store) index() {
	s.lookup = make(map[int64]*Customer, len(s.Customers))
	for _, c := range s.Customers {
		s.lookup[c.ID] = c
	}
}

// Types lists the model's named types, for resolving policy files.
func Types() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[OrderStatus](),
		reflect.TypeFor[Address](),
		reflect.TypeFor[Product](),
		reflect.TypeFor[Customer](),
		reflect.TypeFor[Order](),
		reflect.TypeFor[OrderItem](),
		reflect.TypeFor[Store](),
	}
}
