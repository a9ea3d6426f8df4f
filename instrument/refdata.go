package instrument

import "github.com/nimblemarkets/mdbook/fixedpoint"
import "github.com/nimblemarkets/mdbook/wire"

// RefData is an instrument's reference data: symbology, derivative
// descriptors, and the NDPs every owned order book is expressed in (spec
// section 4.4).
type RefData struct {
	Symbols []wire.SymKey

	// Underlying identifies the instrument this one derives from, or the
	// zero value if this is not a derivative.
	Underlying wire.InstrumentKey
	Maturity   wire.ID8
	PutCall    byte // 'P', 'C', or 0 for non-options
	Strike     int64

	PxNDP  fixedpoint.NDP
	QtyNDP fixedpoint.NDP
	Flags  uint32
}

// HasUnderlying reports whether this ref data names an underlying
// instrument.
func (r RefData) HasUnderlying() bool { return !r.Underlying.Instrument.IsZero() }

// DerivKey indexes a derivative under its underlying: by Maturity alone for
// a future, by (Maturity, PutCall, Strike) for an option (spec 4.4).
type DerivKey struct {
	Maturity wire.ID8
	PutCall  byte
	Strike   int64
}

func derivKeyOf(r RefData) DerivKey {
	return DerivKey{Maturity: r.Maturity, PutCall: r.PutCall, Strike: r.Strike}
}
