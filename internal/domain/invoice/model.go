package invoice

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

type LineItem struct {
	Description string
	Quantity    int64
	Unit        string
	UnitPrice   Cents
}

func (l LineItem) Amount() Cents { return Cents(l.Quantity) * l.UnitPrice }

type Payment struct {
	Date   time.Time
	Amount Cents
	Method string
	Note   string
}

type Invoice struct {
	Number    string
	Supplier  string
	Address   string
	IssueDate time.Time
	DueDate   time.Time
	TaxBP     int64 // ставка налога в базисных пунктах: 2000 = 20%
	Items     []LineItem
	Payments  []Payment
}

func (inv Invoice) Subtotal() Cents {
	var s Cents
	for _, it := range inv.Items {
		s += it.Amount()
	}
	return s
}

// Tax округление половины вверх.
func (inv Invoice) Tax() Cents {
	return Cents((int64(inv.Subtotal())*inv.TaxBP + 5000) / 10000)
}

func (inv Invoice) Total() Cents { return inv.Subtotal() + inv.Tax() }

func (inv Invoice) Paid() Cents {
	var s Cents
	for _, p := range inv.Payments {
		s += p.Amount
	}
	return s
}

func (inv Invoice) Balance() Cents { return inv.Total() - inv.Paid() }

func (inv Invoice) Status(now time.Time) Status {
	switch {
	case inv.Balance() <= 0:
		return StatusPaid
	case !inv.DueDate.IsZero() && now.After(inv.DueDate):
		return StatusOverdue
	case inv.Paid() > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// AddPayment сумма > 0 и не больше остатка.
func (inv *Invoice) AddPayment(p Payment) error {
	if p.Amount <= 0 {
		return fmt.Errorf("%w: payment must be positive", ErrInvalidAmount)
	}
	if p.Amount > inv.Balance() {
		return fmt.Errorf("%w: payment %s exceeds balance %s", ErrInvalidAmount, p.Amount, inv.Balance())
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	inv.Payments = append(inv.Payments, p)
	return nil
}
