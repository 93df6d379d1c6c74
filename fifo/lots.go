package fifo

// BuildOpenLots replays txns in chronological order and returns the lots
// still open afterwards, oldest first.
//
// Purchases open a lot at the tail of the queue. Sales consume lots from the
// head; a head lot larger than what remains to be sold is reduced in place.
// Zero-quantity transactions are ignored. txns is not modified.
//
// A sale larger than the open quantity at that point fails with an
// *InsufficientLotsError and no lots are returned.
func BuildOpenLots(txns []Transaction) ([]Lot, error) {
	q := newQueue(nil)

	for _, t := range SortTransactions(txns) {
		switch {
		case t.IsPurchase():
			q.push(newLot(t))
		case t.IsSale():
			if err := q.sell(t.Commodity, t.Date, t.Quantity.Abs(), nil); err != nil {
				return nil, err
			}
		}
	}

	return q.lots(), nil
}
