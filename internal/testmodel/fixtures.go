package testmodel

import (
	"fmt"
	"math/rand"
	"time"

	fuzz "github.com/google/gofuzz"
)

// Sample returns a small fixed store: two customers, one referring the other,
// three orders sharing two products.
func Sample() *Store {
	placed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	keyboard := &Product{ID: 1, SKU: "KB-01", Name: "Keyboard", PriceCents: 4999, Inventory: 12, Tags: []string{"input"}, CreatedAt: placed}
	mouse := &Product{ID: 2, SKU: "MS-01", Name: "Mouse", PriceCents: 1999, Inventory: 40, Tags: []string{"input", "wireless"}, CreatedAt: placed}

	alice := &Customer{ID: 1, Email: "alice@example.com", FullName: "Alice", IsActive: true,
		Address: &Address{Street: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}}
	bob := &Customer{ID: 2, Email: "bob@example.com", FullName: "Bob", Referrer: alice}

	first := &Order{ID: 100, Customer: alice, Status: StatusPaid, PlacedAt: &placed, OrderedAt: placed,
		Items: []OrderItem{
			{Product: keyboard, Quantity: 1, UnitPrice: 4999},
			{Product: mouse, Quantity: 2, UnitPrice: 1999},
		},
		Notes:      []string{"gift wrap"},
		Attributes: map[string]any{"channel": "web", "priority": 2, "bundle": mouse},
	}
	first.Record("created")
	first.Record("paid")

	second := &Order{ID: 101, Customer: alice, Status: StatusPending, OrderedAt: placed.Add(time.Hour),
		Items: []OrderItem{{Product: mouse, Quantity: 1, UnitPrice: 1999}}}

	third := &Order{ID: 102, Customer: bob, Status: StatusShipped, PlacedAt: &placed, OrderedAt: placed,
		Items: []OrderItem{{Product: keyboard, Quantity: 3, UnitPrice: 4500}},
		Notes: first.Notes}

	alice.Orders = []*Order{first, second}
	bob.Orders = []*Order{third}

	catalog := []*Product{keyboard, mouse}

	s := &Store{
		Name:      "demo",
		Customers: []*Customer{alice, bob},
		Products:  map[string]*Product{keyboard.SKU: keyboard, mouse.SKU: mouse},
		Catalog:   catalog,
		Featured:  catalog[:1],
		Location:  time.UTC,
	}
	s.index()

	return s
}

// Random builds a store with the given number of customers from seed. Scalar
// values come from gofuzz; references are wired from the same seed so that
// products are shared between order lines, orders point back at their
// customer and some customers refer others. Equal seeds give equal stores.
func Random(seed int64, customers int) *Store {
	customers = max(customers, 1)

	rnd := rand.New(rand.NewSource(seed))
	f := fuzz.NewWithSeed(seed).NilChance(0).NumElements(1, 3).Funcs(
		func(p *Product, c fuzz.Continue) {
			c.Fuzz(&p.Name)
			c.Fuzz(&p.Tags)
			p.PriceCents = c.Int63n(100_000)
			p.Inventory = c.Intn(500)
			p.CreatedAt = time.Unix(c.Int63n(1<<31), 0).UTC()
		},
	)

	s := &Store{Products: make(map[string]*Product), Location: time.UTC}
	f.Fuzz(&s.Name)

	for i := range customers * 2 {
		p := &Product{ID: int64(i + 1), SKU: fmt.Sprintf("SKU-%04d", i+1)}
		f.Fuzz(p)

		s.Products[p.SKU] = p
		s.Catalog = append(s.Catalog, p)
	}

	s.Featured = s.Catalog[:1+rnd.Intn(len(s.Catalog))]

	var orderID int64

	for i := range customers {
		c := &Customer{ID: int64(i + 1), IsActive: rnd.Intn(2) == 0}
		f.Fuzz(&c.Email)
		f.Fuzz(&c.FullName)

		if rnd.Intn(3) > 0 {
			c.Address = &Address{}
			f.Fuzz(c.Address)
		}

		if i > 0 && rnd.Intn(2) == 0 {
			c.Referrer = s.Customers[rnd.Intn(i)]
		}

		for range 1 + rnd.Intn(3) {
			orderID++
			c.Orders = append(c.Orders, randomOrder(f, rnd, orderID, c, s.Catalog))
		}

		s.Customers = append(s.Customers, c)
	}

	s.index()

	return s
}

var statuses = []OrderStatus{StatusPending, StatusPaid, StatusShipped, StatusCancelled}

func randomOrder(f *fuzz.Fuzzer, rnd *rand.Rand, id int64, c *Customer, catalog []*Product) *Order {
	o := &Order{
		ID:         id,
		Customer:   c,
		Status:     statuses[rnd.Intn(len(statuses))],
		Attributes: map[string]any{},
	}

	f.Fuzz(&o.OrderedAt)
	f.Fuzz(&o.Notes)

	if o.Status != StatusPending {
		placed := o.OrderedAt.Add(time.Minute)
		o.PlacedAt = &placed
	}

	for range 1 + rnd.Intn(4) {
		p := catalog[rnd.Intn(len(catalog))]
		o.Items = append(o.Items, OrderItem{Product: p, Quantity: 1 + rnd.Intn(5), UnitPrice: p.PriceCents})
	}

	var attr string
	f.Fuzz(&attr)
	o.Attributes["note"] = attr
	o.Attributes["lines"] = len(o.Items)
	o.Attributes["first"] = o.Items[0].Product

	o.Record(fmt.Sprintf("created %d", id))

	return o
}
