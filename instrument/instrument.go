// Package instrument implements Instrument: an instrument's reference data,
// its owned set of per-venue order books, and its underlying/derivative
// back-references (spec section 4.4).
//
// Grounded in the teacher's metadata/symbology handling
// (dbn-go's internal symbol_map.go) for the index-by-(id,src) idiom, adapted
// from a Databento symbol table into the underlying/derivative reference
// graph described by the original's MxMDInstrument (djnz00/z-mx).
package instrument

import (
	"sort"

	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/wire"
)

// Instrument owns the order books trading a single economic instrument
// across one or more venue/segment pairs.
type Instrument struct {
	Key     wire.InstrumentKey
	RefData RefData

	books map[wire.OrderBookKey]*book.OrderBook

	underlying  *Instrument // weak, non-owning
	derivatives map[DerivKey]*Instrument

	// RegisterBook, when set, is invoked after a book is added locally so a
	// containing Library can keep its global order-book index consistent
	// (spec 4.4: "addOrderBook delegates to the library").
	RegisterBook func(*Instrument, *book.OrderBook) error

	// OnRefDataUpdate, when set, is invoked with this instrument plus the
	// old and new RefData so a containing Library can update its symbology
	// index under the right instrument key.
	OnRefDataUpdate func(inst *Instrument, old, new RefData)
}

// New constructs an Instrument with no order books.
func New(key wire.InstrumentKey, refData RefData) *Instrument {
	return &Instrument{
		Key:         key,
		RefData:     refData,
		books:       make(map[wire.OrderBookKey]*book.OrderBook),
		derivatives: make(map[DerivKey]*Instrument),
	}
}

// AddOrderBook attaches ob under key, invoking RegisterBook if set.
func (i *Instrument) AddOrderBook(key wire.OrderBookKey, ob *book.OrderBook) error {
	if _, exists := i.books[key]; exists {
		return ErrOrderBookExists
	}
	i.books[key] = ob
	if i.RegisterBook != nil {
		if err := i.RegisterBook(i, ob); err != nil {
			delete(i.books, key)
			return err
		}
	}
	return nil
}

// OrderBook returns the book at key, if owned.
func (i *Instrument) OrderBook(key wire.OrderBookKey) (*book.OrderBook, bool) {
	ob, ok := i.books[key]
	return ob, ok
}

// OrderBooksInVenue returns every owned book trading on venue, sorted by
// segment for deterministic iteration.
func (i *Instrument) OrderBooksInVenue(venue wire.ID8) []*book.OrderBook {
	var out []*book.OrderBook
	var keys []wire.OrderBookKey
	for k := range i.books {
		if k.Venue == venue {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(a, b int) bool {
		return string(keys[a].Segment[:]) < string(keys[b].Segment[:])
	})
	for _, k := range keys {
		out = append(out, i.books[k])
	}
	return out
}

// DelOrderBook removes the book at key, if owned.
func (i *Instrument) DelOrderBook(key wire.OrderBookKey) {
	delete(i.books, key)
}

// Update applies new reference data: symbology changes are reported via
// OnRefDataUpdate, and an NDP change cascades a rescale (via
// book.OrderBook.UpdateNDP) through every owned book (spec 4.4).
func (i *Instrument) Update(newRefData RefData, fn func(*book.Order)) error {
	old := i.RefData
	ndpChanged := old.PxNDP != newRefData.PxNDP || old.QtyNDP != newRefData.QtyNDP
	i.RefData = newRefData
	if i.OnRefDataUpdate != nil {
		i.OnRefDataUpdate(i, old, newRefData)
	}
	if ndpChanged {
		for _, ob := range i.books {
			if err := ob.UpdateNDP(newRefData.PxNDP, newRefData.QtyNDP, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Underlying returns the linked underlying instrument, if any.
func (i *Instrument) Underlying() (*Instrument, bool) {
	return i.underlying, i.underlying != nil
}

// LinkUnderlying records u as this instrument's underlying (non-owning) and
// registers this instrument as one of u's derivatives.
func (i *Instrument) LinkUnderlying(u *Instrument) {
	i.underlying = u
	u.derivatives[derivKeyOf(i.RefData)] = i
}

// Derivative looks up a derivative by its (maturity[, putCall, strike]) key.
func (i *Instrument) Derivative(key DerivKey) (*Instrument, bool) {
	d, ok := i.derivatives[key]
	return d, ok
}

// Derivatives returns every indexed derivative, unordered.
func (i *Instrument) Derivatives() []*Instrument {
	out := make([]*Instrument, 0, len(i.derivatives))
	for _, d := range i.derivatives {
		out = append(out, d)
	}
	return out
}
