package wire

import "bytes"

// ID8 is a fixed-length, zero-padded ASCII symbolic identifier, used for
// VenueID, SegmentID and InstrumentID (spec section 3, Identifiers and keys).
type ID8 [8]byte

// NewID8 truncates or zero-pads s to 8 bytes.
func NewID8(s string) ID8 {
	var id ID8
	copy(id[:], s)
	return id
}

// String trims trailing zero padding.
func (id ID8) String() string {
	return string(bytes.TrimRight(id[:], "\x00"))
}

func (id ID8) IsZero() bool {
	return id == ID8{}
}

// InstrumentKey is the primary key of an Instrument: (venue, segment, id).
type InstrumentKey struct {
	Venue      ID8
	Segment    ID8
	Instrument ID8
}

// SymSrc names a symbology source (ISIN, RIC, CUSIP, ...).
type SymSrc uint8

const (
	SymSrc_Unknown SymSrc = iota
	SymSrc_ISIN
	SymSrc_RIC
	SymSrc_CUSIP
	SymSrc_SEDOL
	SymSrc_Ticker
)

// SymKey indexes an instrument by symbology source.
type SymKey struct {
	ID  string
	Src SymSrc
}

// UniKey unions InstrumentKey and SymKey, plus derivative descriptors, for
// the cases (options/futures) where a bare InstrumentKey is ambiguous.
type UniKey struct {
	InstrumentKey
	Maturity ID8
	PutCall  byte // 'P', 'C', or 0 for non-options
	Strike   int64
}

// OrderBookKey identifies an order book within an instrument: (venue, segment).
type OrderBookKey struct {
	Venue   ID8
	Segment ID8
}

// OrderID is a venue-assigned order identifier, wider than the 8-byte
// symbolic IDs since venues commonly use long numeric/alphanumeric order
// tags.
type OrderID [16]byte

func NewOrderID(s string) OrderID {
	var id OrderID
	copy(id[:], s)
	return id
}

func (id OrderID) String() string {
	return string(bytes.TrimRight(id[:], "\x00"))
}

func (id OrderID) IsZero() bool {
	return id == OrderID{}
}
