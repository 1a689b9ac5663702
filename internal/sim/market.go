// Package sim generates synthetic trading sessions: a random-walk market and
// a cast of brokers whose chatter and trades exercise every detector.
package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

// Market simulates per-symbol prices following a random walk with a slight
// upward drift.
type Market struct {
	symbols []string
	prices  map[string]float64
}

// NewMarket seeds a market with starting prices. The symbol order is fixed so
// seeded sessions stay reproducible.
func NewMarket(prices map[string]float64) *Market {
	m := &Market{prices: make(map[string]float64, len(prices))}
	for symbol, price := range prices {
		m.symbols = append(m.symbols, symbol)
		m.prices[symbol] = price
	}
	sort.Strings(m.symbols)
	return m
}

// Symbols returns the traded symbols in registration order.
func (m *Market) Symbols() []string {
	out := make([]string, len(m.symbols))
	copy(out, m.symbols)
	return out
}

// Price returns the current price of a symbol, rounded to cents.
func (m *Market) Price(symbol string) (decimal.Decimal, error) {
	price, ok := m.prices[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("sim: unknown symbol %q", symbol)
	}
	return decimal.NewFromFloat(price).Round(2), nil
}

// Advance applies one random-walk step to every symbol. Prices never drop
// below one cent.
func (m *Market) Advance(rng *rand.Rand) {
	for _, symbol := range m.symbols {
		change := rng.NormFloat64()*0.02 + 0.001
		next := m.prices[symbol] * (1 + change)
		if next < 0.01 {
			next = 0.01
		}
		m.prices[symbol] = next
	}
}

// Shock applies a one-off price impact to a symbol, e.g. surprise news.
func (m *Market) Shock(symbol string, impact float64) {
	if price, ok := m.prices[symbol]; ok {
		next := price * (1 + impact)
		if next < 0.01 {
			next = 0.01
		}
		m.prices[symbol] = next
	}
}
