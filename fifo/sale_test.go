package fifo

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func openLots(t *testing.T) []Lot {
	t.Helper()
	lots, err := BuildOpenLots([]Transaction{
		buy(t, "2020-01-01", "10", "5"),
		buy(t, "2020-06-01", "10", "6"),
		buy(t, "2020-06-01", "4", "7"),
	})
	assert.NoError(t, err)
	return lots
}

func TestMatchSale(t *testing.T) {
	tests := []struct {
		name       string
		quantity   string
		wantQty    []string
		wantCost   []string
		wantBasis  string
		wantSplits []bool
	}{
		{
			name:       "WithinOldestLot",
			quantity:   "3",
			wantQty:    []string{"3"},
			wantCost:   []string{"5"},
			wantBasis:  "15",
			wantSplits: []bool{true},
		},
		{
			name:       "ExactlyOldestLot",
			quantity:   "10",
			wantQty:    []string{"10"},
			wantCost:   []string{"5"},
			wantBasis:  "50",
			wantSplits: []bool{false},
		},
		{
			name:       "SpansTwoLots",
			quantity:   "15",
			wantQty:    []string{"10", "5"},
			wantCost:   []string{"5", "6"},
			wantBasis:  "80",
			wantSplits: []bool{false, true},
		},
		{
			name:       "SameDateLotsKeepQueueOrder",
			quantity:   "22",
			wantQty:    []string{"10", "10", "2"},
			wantCost:   []string{"5", "6", "7"},
			wantBasis:  "124",
			wantSplits: []bool{false, false, true},
		},
		{
			name:       "EverythingOpen",
			quantity:   "24",
			wantQty:    []string{"10", "10", "4"},
			wantCost:   []string{"5", "6", "7"},
			wantBasis:  "138",
			wantSplits: []bool{false, false, false},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			lots := openLots(t)

			consumed, err := MatchSale(lots, dec(test.quantity))
			assert.NoError(t, err)
			assert.Equal(t, len(test.wantQty), len(consumed))

			basis := decimal.Zero
			for i, c := range consumed {
				assert.True(t, c.Quantity.Equal(dec(test.wantQty[i])), "consumption %d quantity %s", i, c.Quantity)
				assert.True(t, c.Lot.UnitCost.Equal(dec(test.wantCost[i])), "consumption %d cost %s", i, c.Lot.UnitCost)
				assert.Equal(t, test.wantSplits[i], c.Partial())
				basis = basis.Add(c.Cost())
			}
			assert.True(t, basis.Equal(dec(test.wantBasis)), "basis %s", basis)
		})
	}
}

func TestMatchSaleDoesNotMutateLots(t *testing.T) {
	lots := openLots(t)

	_, err := MatchSale(lots, dec("15"))
	assert.NoError(t, err)
	assert.True(t, lots[0].Quantity.Equal(dec("10")))
	assert.True(t, lots[1].Quantity.Equal(dec("10")))
	assert.Equal(t, 3, len(lots))
}

func TestMatchSaleInsufficient(t *testing.T) {
	lots := openLots(t)

	consumed, err := MatchSale(lots, dec("24.01"))
	assert.Error(t, err)
	assert.Zero(t, consumed)

	var insufficient *InsufficientLotsError
	assert.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(dec("24")))
	assert.Equal(t, 3, len(insufficient.GetLots()))
}

func TestMatchSaleInvalidQuantity(t *testing.T) {
	for _, q := range []string{"0", "-1"} {
		_, err := MatchSale(openLots(t), dec(q))
		var invalid *InvalidQuantityError
		assert.True(t, errors.As(err, &invalid), "quantity %s", q)
	}
}

func TestMatchSaleNoLots(t *testing.T) {
	_, err := MatchSale(nil, dec("1"))
	var insufficient *InsufficientLotsError
	assert.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.IsZero())
}

func TestSell(t *testing.T) {
	txns := []Transaction{
		buy(t, "2020-01-01", "10", "5"),
		buy(t, "2020-06-01", "10", "6"),
		sell(t, "2021-01-01", "15"),
		buy(t, "2022-01-01", "100", "1"),
	}

	t.Run("ConcreteScenario", func(t *testing.T) {
		sale, err := Sell(txns, mustDate(t, "2021-06-01"), dec("5"))
		assert.NoError(t, err)
		assert.Equal(t, "AAPL", sale.Commodity)
		assert.Equal(t, 1, len(sale.Consumptions))
		assert.False(t, sale.Consumptions[0].Partial())
		assert.True(t, sale.CostBasis().Equal(dec("30")))
		assert.True(t, sale.AverageCost().Equal(dec("6")))
		assert.True(t, sale.Gain(dec("45")).Equal(dec("15")))
		assert.True(t, sale.Gain(dec("20")).Equal(dec("-10")))
	})

	t.Run("IgnoresLaterPurchases", func(t *testing.T) {
		_, err := Sell(txns, mustDate(t, "2021-06-01"), dec("6"))
		var insufficient *InsufficientLotsError
		assert.True(t, errors.As(err, &insufficient))
		assert.Equal(t, mustDate(t, "2021-06-01"), insufficient.Date)
		assert.Equal(t, "AAPL", insufficient.Commodity)
	})

	t.Run("IncludesSameDayPurchases", func(t *testing.T) {
		sale, err := Sell(txns, mustDate(t, "2022-01-01"), dec("6"))
		assert.NoError(t, err)
		assert.Equal(t, 2, len(sale.Consumptions))
		assert.True(t, sale.CostBasis().Equal(dec("31")))
	})

	t.Run("CostCommodity", func(t *testing.T) {
		sale, err := Sell(txns, mustDate(t, "2022-01-01"), dec("6"))
		assert.NoError(t, err)
		commodity, ok := sale.CostCommodity()
		assert.True(t, ok)
		assert.Equal(t, "$", commodity)

		sale.Consumptions[1].Lot.CostCommodity = "EUR"
		_, ok = sale.CostCommodity()
		assert.False(t, ok)
	})
}
