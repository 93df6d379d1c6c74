package fifo

import (
	"time"

	"github.com/shopspring/decimal"
)

// queue holds open lots oldest-first. Lots are appended to an arena and
// consumed by advancing head, so removed lots are never revisited.
type queue struct {
	arena []Lot
	head  int
	total decimal.Decimal
}

func newQueue(lots []Lot) *queue {
	q := &queue{
		arena: make([]Lot, 0, len(lots)),
		total: decimal.Zero,
	}
	for _, l := range lots {
		q.push(l)
	}
	return q
}

func (q *queue) push(l Lot) {
	q.arena = append(q.arena, l)
	q.total = q.total.Add(l.Quantity)
}

// available returns the quantity still open.
func (q *queue) available() decimal.Decimal {
	return q.total
}

// consume removes quantity from the head of the queue and calls take for
// every lot it touches with the lot as it was and the quantity taken from it.
// The caller must have checked that quantity does not exceed available().
func (q *queue) consume(quantity decimal.Decimal, take func(l Lot, taken decimal.Decimal)) {
	remaining := quantity
	for remaining.IsPositive() && q.head < len(q.arena) {
		head := &q.arena[q.head]

		if head.Quantity.LessThanOrEqual(remaining) {
			if take != nil {
				take(*head, head.Quantity)
			}
			remaining = remaining.Sub(head.Quantity)
			q.total = q.total.Sub(head.Quantity)
			q.head++
			continue
		}

		if take != nil {
			take(*head, remaining)
		}
		head.Quantity = head.Quantity.Sub(remaining)
		q.total = q.total.Sub(remaining)
		remaining = decimal.Zero
	}
}

// lots returns a copy of the open lots, oldest first.
func (q *queue) lots() []Lot {
	open := make([]Lot, len(q.arena)-q.head)
	copy(open, q.arena[q.head:])
	return open
}

// sell consumes quantity from the queue. When less than quantity is open it
// returns an InsufficientLotsError and leaves the queue untouched.
func (q *queue) sell(commodity string, on time.Time, quantity decimal.Decimal, take func(l Lot, taken decimal.Decimal)) error {
	if quantity.GreaterThan(q.available()) {
		return &InsufficientLotsError{
			Commodity: commodity,
			Date:      on,
			Requested: quantity,
			Available: q.available(),
			Open:      q.lots(),
		}
	}
	q.consume(quantity, take)
	return nil
}
