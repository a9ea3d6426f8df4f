package book

import "github.com/nimblemarkets/mdbook/fixedpoint"

// LotType classifies a quantity against a book's LotSizes (GLOSSARY).
type LotType uint8

const (
	LotType_OddLot LotType = iota
	LotType_Lot
	LotType_BlockLot
)

// LotSizes is the (oddLot, lot, blockLot) triplet named in the GLOSSARY,
// supplemented here from the original's MxMDLotSizes since the distillation
// only names the concept.
type LotSizes struct {
	OddLot   fixedpoint.Value
	Lot      fixedpoint.Value
	BlockLot fixedpoint.Value
}

// Classify returns which lot band qty falls into: below Lot is an odd lot,
// at/above BlockLot is a block, otherwise a regular lot.
func (l LotSizes) Classify(qty fixedpoint.Value) LotType {
	switch {
	case l.BlockLot != 0 && qty >= l.BlockLot:
		return LotType_BlockLot
	case l.Lot != 0 && qty < l.Lot:
		return LotType_OddLot
	default:
		return LotType_Lot
	}
}
