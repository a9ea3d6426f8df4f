// Package fixedpoint implements the book engine's 64-bit fixed-point
// numeric type and its per-book NDP (number of decimal places) scaling.
//
// Adapted from the original's MxValue/MxNDP (djnz00/z-mx, mxmd/src/MxMD.hh):
// a signed 64-bit magnitude scaled by a runtime-carried decimal exponent,
// with two sentinel values reserved to mean "absent" and "explicit reset".
package fixedpoint

import "math/big"

// Value is a 64-bit signed fixed-point magnitude, scaled by a NDP (decimal
// exponent) carried alongside it by the caller (price and quantity carry
// their own NDPs per book).
type Value int64

// NDP is the number of decimal places a Value is scaled by: the real
// magnitude is Value / 10^NDP. Valid range is [0,18].
type NDP uint8

const MaxNDP NDP = 18

const (
	// Null means the value is absent.
	Null Value = Value(-9223372036854775808) // math.MinInt64
	// Reset means "explicitly cleared to null" as opposed to "left unset" —
	// used in delta updates to distinguish no-op from clear.
	Reset Value = Null + 1
)

// IsNull reports whether v is the absent sentinel.
func (v Value) IsNull() bool { return v == Null }

// IsReset reports whether v is the explicit-reset-to-null sentinel.
func (v Value) IsReset() bool { return v == Reset }

// IsSentinel reports whether v is either sentinel (Null or Reset), i.e. not
// a real scaled integer.
func (v Value) IsSentinel() bool { return v == Null || v == Reset }

var pow10 = [...]int64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000,
	1000000000, 10000000000, 100000000000, 1000000000000, 10000000000000,
	100000000000000, 1000000000000000, 10000000000000000, 100000000000000000,
	1000000000000000000,
}

// Rescale converts v from fromNDP to toNDP. Sentinel values pass through
// unchanged. A non-zero value that would overflow int64 after rescaling
// returns ErrNDPOverflow. Scaling up is exact; scaling down divides by a
// power of ten and truncates toward zero any digits below the new NDP, so it
// round-trips exactly only when those digits are zero.
func (v Value) Rescale(fromNDP, toNDP NDP) (Value, error) {
	if v.IsSentinel() {
		return v, nil
	}
	if fromNDP > MaxNDP || toNDP > MaxNDP {
		return v, ErrNDPOutOfSpan
	}
	if fromNDP == toNDP || v == 0 {
		return v, nil
	}
	if toNDP > fromNDP {
		delta := int(toNDP - fromNDP)
		factor := pow10[delta]
		product := new(big.Int).Mul(big.NewInt(int64(v)), big.NewInt(factor))
		if !product.IsInt64() {
			return v, rescaleOverflowError(v, fromNDP, toNDP)
		}
		scaled := Value(product.Int64())
		if scaled.IsSentinel() {
			return v, rescaleOverflowError(v, fromNDP, toNDP)
		}
		return scaled, nil
	}
	delta := int(fromNDP - toNDP)
	factor := pow10[delta]
	scaled := int64(v) / factor
	result := Value(scaled)
	if result.IsSentinel() {
		return v, rescaleOverflowError(v, fromNDP, toNDP)
	}
	return result, nil
}

// NV computes price*qty in a common high-precision intermediate (not in
// either side's per-NDP representation), returning the result and the NDP
// it is scaled by (pxNDP+qtyNDP, clamped to MaxNDP by right-shifting extra
// precision away). Returns Null if either input is a sentinel.
func NV(price Value, pxNDP NDP, qty Value, qtyNDP NDP) (Value, NDP, error) {
	if price.IsSentinel() || qty.IsSentinel() {
		return Null, 0, nil
	}
	product := new(big.Int).Mul(big.NewInt(int64(price)), big.NewInt(int64(qty)))
	nvNDP := pxNDP + qtyNDP
	if nvNDP > MaxNDP {
		shift := int(nvNDP - MaxNDP)
		product.Div(product, big.NewInt(pow10[shift]))
		nvNDP = MaxNDP
	}
	if !product.IsInt64() {
		return 0, 0, rescaleOverflowError(Value(0), pxNDP, qtyNDP)
	}
	v := Value(product.Int64())
	if v.IsSentinel() {
		return 0, 0, rescaleOverflowError(v, pxNDP, qtyNDP)
	}
	return v, nvNDP, nil
}

// MergeL1 implements the three-state L1 field merge used throughout
// OrderBook.UpdateL1: null means "leave unchanged", Reset means "clear to null",
// anything else is an assignment (after the caller has already rescaled
// incoming values to the book's NDP).
func MergeL1(old, incoming Value) Value {
	switch {
	case incoming.IsNull():
		return old
	case incoming.IsReset():
		return Null
	default:
		return incoming
	}
}
