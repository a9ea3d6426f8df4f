package book

import (
	"sort"

	"github.com/nimblemarkets/mdbook/fixedpoint"
)

// OBSide is one side (bid or ask) of an OrderBook: an ordered map of price
// levels plus an optional market (no-limit-price) level and running
// aggregates (spec section 3, OBSide).
type OBSide struct {
	side     Side
	pxNDP    fixedpoint.NDP
	qtyNDP   fixedpoint.NDP
	levels   map[fixedpoint.Value]*PxLevel
	prices   []fixedpoint.Value // sorted ascending
	market   *PxLevel
	Qty      fixedpoint.Value // Σ levels.qty
	NV       fixedpoint.Value // Σ price*qty in common NDP
	nvNDP    fixedpoint.NDP
	uniform  bool // venue asserts UniformRanks
}

func newOBSide(side Side, pxNDP, qtyNDP fixedpoint.NDP, uniformRanks bool) *OBSide {
	return &OBSide{
		side:    side,
		pxNDP:   pxNDP,
		qtyNDP:  qtyNDP,
		levels:  make(map[fixedpoint.Value]*PxLevel),
		uniform: uniformRanks,
	}
}

// Best returns the best (min-ask/max-bid) non-market level, or nil if the
// side is empty.
func (s *OBSide) Best() *PxLevel {
	if len(s.prices) == 0 {
		return nil
	}
	if s.side == Buy {
		return s.levels[s.prices[len(s.prices)-1]]
	}
	return s.levels[s.prices[0]]
}

// MarketLevel returns the synthetic no-limit-price level, creating it if
// needed.
func (s *OBSide) MarketLevel() *PxLevel {
	if s.market == nil {
		s.market = &PxLevel{Price: fixedpoint.Null, side: s}
	}
	return s.market
}

// Level returns the level at price, or nil.
func (s *OBSide) Level(price fixedpoint.Value) *PxLevel {
	if price.IsNull() {
		return s.market
	}
	return s.levels[price]
}

// Levels returns all non-market levels, best-first.
func (s *OBSide) Levels() []*PxLevel {
	out := make([]*PxLevel, 0, len(s.prices))
	if s.side == Buy {
		for i := len(s.prices) - 1; i >= 0; i-- {
			out = append(out, s.levels[s.prices[i]])
		}
	} else {
		for _, p := range s.prices {
			out = append(out, s.levels[p])
		}
	}
	return out
}

// getOrCreate returns the level at price, creating (and inserting into the
// sorted index) it if it does not exist.
func (s *OBSide) getOrCreate(price fixedpoint.Value) *PxLevel {
	if price.IsNull() {
		return s.MarketLevel()
	}
	if lvl, ok := s.levels[price]; ok {
		return lvl
	}
	lvl := &PxLevel{Price: price, side: s}
	s.levels[price] = lvl
	pos := sort.Search(len(s.prices), func(i int) bool { return s.prices[i] >= price })
	s.prices = append(s.prices, 0)
	copy(s.prices[pos+1:], s.prices[pos:])
	s.prices[pos] = price
	return lvl
}

// remove deletes an empty level from the index (idempotent).
func (s *OBSide) remove(price fixedpoint.Value) {
	if price.IsNull() {
		s.market = nil
		return
	}
	if _, ok := s.levels[price]; !ok {
		return
	}
	delete(s.levels, price)
	pos := sort.Search(len(s.prices), func(i int) bool { return s.prices[i] >= price })
	if pos < len(s.prices) && s.prices[pos] == price {
		s.prices = append(s.prices[:pos], s.prices[pos+1:]...)
	}
}

// recomputeAggregates recalculates Qty/NV from scratch. Called after any
// level mutation; cheap relative to a per-book feed's mutation rate since
// the number of live levels is typically small (spec invariant 1).
func (s *OBSide) recomputeAggregates() {
	var qty, nv fixedpoint.Value
	var nvNDP fixedpoint.NDP
	for _, price := range s.prices {
		lvl := s.levels[price]
		qty += lvl.Qty
		levelNV, ndp, err := fixedpoint.NV(price, s.pxNDP, lvl.Qty, s.qtyNDP)
		if err == nil {
			nv += levelNV
			nvNDP = ndp
		}
	}
	if s.market != nil {
		qty += s.market.Qty
	}
	s.Qty = qty
	s.NV = nv
	s.nvNDP = nvNDP
}

// rescale re-expresses every level's price/qty at the new NDPs, invoking fn
// once per order (spec 4.3, OrderBook::updateNDP).
func (s *OBSide) rescale(newPxNDP, newQtyNDP fixedpoint.NDP, fn func(*Order)) error {
	newLevels := make(map[fixedpoint.Value]*PxLevel, len(s.levels))
	newPrices := make([]fixedpoint.Value, 0, len(s.prices))
	for _, price := range s.prices {
		lvl := s.levels[price]
		newPrice, err := price.Rescale(s.pxNDP, newPxNDP)
		if err != nil {
			return err
		}
		newQty, err := lvl.Qty.Rescale(s.qtyNDP, newQtyNDP)
		if err != nil {
			return err
		}
		lvl.Price = newPrice
		lvl.Qty = newQty
		for _, o := range lvl.orders {
			op, err := o.Price.Rescale(s.pxNDP, newPxNDP)
			if err != nil {
				return err
			}
			oq, err := o.Qty.Rescale(s.qtyNDP, newQtyNDP)
			if err != nil {
				return err
			}
			o.Price = op
			o.Qty = oq
			if fn != nil {
				fn(o)
			}
		}
		newLevels[newPrice] = lvl
		newPrices = append(newPrices, newPrice)
	}
	if s.market != nil {
		newQty, err := s.market.Qty.Rescale(s.qtyNDP, newQtyNDP)
		if err != nil {
			return err
		}
		s.market.Qty = newQty
		for _, o := range s.market.orders {
			oq, err := o.Qty.Rescale(s.qtyNDP, newQtyNDP)
			if err != nil {
				return err
			}
			o.Qty = oq
			if fn != nil {
				fn(o)
			}
		}
	}
	sort.Slice(newPrices, func(i, j int) bool { return newPrices[i] < newPrices[j] })
	s.levels = newLevels
	s.prices = newPrices
	s.pxNDP = newPxNDP
	s.qtyNDP = newQtyNDP
	s.recomputeAggregates()
	return nil
}

// reset tears down every level on this side, invoking cb for every child
// order (spec 4.3, OrderBook::reset).
func (s *OBSide) reset(cb func(*Order)) {
	for _, price := range s.prices {
		s.levels[price].reset(cb)
	}
	if s.market != nil {
		s.market.reset(cb)
	}
	s.levels = make(map[fixedpoint.Value]*PxLevel)
	s.prices = nil
	s.market = nil
	s.Qty = 0
	s.NV = 0
}
