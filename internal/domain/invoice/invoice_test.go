package invoice

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "0.00"},
		{"5", "0.05"},
		{"123", "1.23"},
		{"100", "1.00"},
		{"0012", "0.12"},
		{"12a3", "1.23"},
		{"1234567", "12345.67"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCents(tt.raw))
		})
	}
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
		ok   bool
	}{
		{"12.50", 1250, true},
		{"12,5", 1250, true},
		{"12", 1200, true},
		{".99", 99, true},
		{"#123", 123, true},
		{"", 0, false},
		{"1.234", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"5.", 0, false},
		{"184467440737095517", 0, false},
		{"92233720368547757", 9223372036854775700, true},
		{"92233720368547758", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCents(tt.in)
			if !tt.ok {
				assert.True(t, errors.Is(err, ErrInvalidAmount), "%q: %v", tt.in, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentsString(t *testing.T) {
	assert.Equal(t, "-1.05", Cents(-105).String())
	assert.Equal(t, "0.00", Cents(0).String())
}

func TestInvoiceTotals(t *testing.T) {
	repo := NewMockRepo()
	inv, err := repo.Get(context.Background(), "INV-2024-001")
	require.NoError(t, err)

	assert.Equal(t, Cents(32495), inv.Subtotal())
	assert.Equal(t, Cents(6499), inv.Tax())
	assert.Equal(t, Cents(38994), inv.Total())
	assert.Equal(t, Cents(10000), inv.Paid())
	assert.Equal(t, Cents(28994), inv.Balance())

	assert.Equal(t, StatusPartial, inv.Status(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, StatusOverdue, inv.Status(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestInvoiceStatus(t *testing.T) {
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	inv := Invoice{DueDate: now.AddDate(0, 0, 10), Items: []LineItem{{Quantity: 1, UnitPrice: 1000}}}
	assert.Equal(t, StatusUnpaid, inv.Status(now))

	require.NoError(t, inv.AddPayment(Payment{Amount: 1000}))
	assert.Equal(t, StatusPaid, inv.Status(now.AddDate(1, 0, 0)))
	assert.False(t, inv.Payments[0].Date.IsZero())
}

func TestTaxRoundsHalfUp(t *testing.T) {
	inv := Invoice{TaxBP: 1000, Items: []LineItem{{Quantity: 1, UnitPrice: 15}}}
	// 1.5 цента -> 2
	assert.Equal(t, Cents(2), inv.Tax())
}

func TestAddPayment_Validation(t *testing.T) {
	repo := NewMockRepo()
	ctx := context.Background()

	_, err := repo.AddPayment(ctx, "INV-2024-002", Payment{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	inv, err := repo.Get(ctx, "INV-2024-002")
	require.NoError(t, err)
	_, err = repo.AddPayment(ctx, "INV-2024-002", Payment{Amount: inv.Balance() + 1})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	updated, err := repo.AddPayment(ctx, "INV-2024-002", Payment{Amount: 5000, Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, inv.Balance()-5000, updated.Balance())

	_, err = repo.AddPayment(ctx, "missing", Payment{Amount: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockRepo_ReturnsCopies(t *testing.T) {
	repo := NewMockRepo()
	ctx := context.Background()

	inv, err := repo.Get(ctx, "INV-2024-003")
	require.NoError(t, err)
	inv.Items[0].UnitPrice = 1

	again, err := repo.Get(ctx, "INV-2024-003")
	require.NoError(t, err)
	assert.Equal(t, Cents(120), again.Items[0].UnitPrice)
	assert.Equal(t, StatusPaid, again.Status(time.Now()))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestExportXLSX(t *testing.T) {
	inv, err := NewMockRepo().Get(context.Background(), "INV-2024-001")
	require.NoError(t, err)

	data, err := ExportXLSX(*inv)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Invoice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice", "INV-2024-001"}, rows[0])
	assert.Equal(t, "description", rows[6][0])
	assert.Equal(t, "Cement M500, 50kg", rows[7][0])

	var balance string
	for _, r := range rows {
		if len(r) > 0 && r[0] == "Balance" {
			balance = r[len(r)-1]
		}
	}
	assert.Equal(t, "289.94", balance)
}
