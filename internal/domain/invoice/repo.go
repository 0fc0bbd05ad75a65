package invoice

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

var ErrNotFound = errors.New("invoice not found")

// MockRepo статический набор счетов поставщиков в памяти.
type MockRepo struct {
	mu    sync.Mutex
	items []Invoice
}

func NewMockRepo() *MockRepo {
	return &MockRepo{items: mockInvoices()}
}

func (r *MockRepo) List(_ context.Context) ([]Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Invoice, 0, len(r.items))
	for _, inv := range r.items {
		out = append(out, clone(inv))
	}
	return out, nil
}

func (r *MockRepo) Get(_ context.Context, number string) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.items {
		if inv.Number == number {
			c := clone(inv)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MockRepo) AddPayment(_ context.Context, number string, p Payment) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].Number != number {
			continue
		}
		if err := r.items[i].AddPayment(p); err != nil {
			return nil, err
		}
		c := clone(r.items[i])
		return &c, nil
	}
	return nil, ErrNotFound
}

func clone(inv Invoice) Invoice {
	inv.Items = slices.Clone(inv.Items)
	inv.Payments = slices.Clone(inv.Payments)
	return inv
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mockInvoices() []Invoice {
	return []Invoice{
		{
			Number:    "INV-2024-001",
			Supplier:  "Holcim Building Supplies",
			Address:   "12 Quarry Road",
			IssueDate: date(2024, 1, 3),
			DueDate:   date(2024, 2, 2),
			TaxBP:     2000,
			Items: []LineItem{
				{Description: "Cement M500, 50kg", Quantity: 40, Unit: "packs", UnitPrice: 650},
				{Description: "Concrete Wire 1.2mm", Quantity: 5, Unit: "rolls", UnitPrice: 1299},
			},
			Payments: []Payment{
				{Date: date(2024, 1, 10), Amount: 10000, Method: "bank transfer"},
			},
		},
		{
			Number:    "INV-2024-002",
			Supplier:  "River Sand Co",
			Address:   "3 Embankment St",
			IssueDate: date(2024, 2, 14),
			DueDate:   date(2024, 3, 15),
			TaxBP:     2000,
			Items: []LineItem{
				{Description: "Washed sand", Quantity: 12, Unit: "cubes", UnitPrice: 2500},
				{Description: "Gravel 5-20", Quantity: 8, Unit: "cubes", UnitPrice: 3100},
				{Description: "Delivery", Quantity: 1, Unit: "trip", UnitPrice: 4500},
			},
		},
		{
			Number:    "INV-2024-003",
			Supplier:  "StoneWorks",
			Address:   "88 Industrial Park",
			IssueDate: date(2024, 3, 1),
			DueDate:   date(2024, 3, 31),
			TaxBP:     0,
			Items: []LineItem{
				{Description: "Concrete Stones, paving", Quantity: 200, Unit: "pieces", UnitPrice: 120},
			},
			Payments: []Payment{
				{Date: date(2024, 3, 5), Amount: 24000, Method: "cash"},
			},
		},
	}
}
