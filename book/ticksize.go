package book

import "github.com/nimblemarkets/mdbook/fixedpoint"

// TickSizeBand is one row of a TickSizeTable: prices in [MinPrice, next
// band's MinPrice) trade in increments of TickSize.
type TickSizeBand struct {
	MinPrice fixedpoint.Value
	TickSize fixedpoint.Value
}

// TickSizeTable maps a price range to its minimum price increment, per
// venue (GLOSSARY; supplemented from the original's MxMDTickSizeTbl, since
// the distilled spec names addTickSizeTbl/addTickSize/resetTickSizeTbl in
// its broadcast catalogue (section 4.8) without elaborating their shape).
type TickSizeTable struct {
	ID    string
	bands []TickSizeBand // sorted ascending by MinPrice
}

// NewTickSizeTable creates an empty table.
func NewTickSizeTable(id string) *TickSizeTable {
	return &TickSizeTable{ID: id}
}

// AddTickSize inserts (or replaces) the band starting at minPrice.
func (t *TickSizeTable) AddTickSize(minPrice, tickSize fixedpoint.Value) {
	for i, b := range t.bands {
		if b.MinPrice == minPrice {
			t.bands[i].TickSize = tickSize
			return
		}
		if b.MinPrice > minPrice {
			t.bands = append(t.bands, TickSizeBand{})
			copy(t.bands[i+1:], t.bands[i:])
			t.bands[i] = TickSizeBand{MinPrice: minPrice, TickSize: tickSize}
			return
		}
	}
	t.bands = append(t.bands, TickSizeBand{MinPrice: minPrice, TickSize: tickSize})
}

// Reset clears every band.
func (t *TickSizeTable) Reset() { t.bands = nil }

// TickSize returns the increment applicable at price, or fixedpoint.Null if
// price falls below every band's minimum.
func (t *TickSizeTable) TickSize(price fixedpoint.Value) fixedpoint.Value {
	result := fixedpoint.Null
	for _, b := range t.bands {
		if price < b.MinPrice {
			break
		}
		result = b.TickSize
	}
	return result
}
