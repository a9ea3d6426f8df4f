package fixedpoint

import "fmt"

var (
	ErrNDPOverflow  = fmt.Errorf("fixedpoint: value out of range after NDP rescale")
	ErrNDPOutOfSpan = fmt.Errorf("fixedpoint: NDP must be in [0,18]")
)

func rescaleOverflowError(v Value, fromNDP, toNDP NDP) error {
	return fmt.Errorf("%w: %d (ndp %d -> %d)", ErrNDPOverflow, int64(v), fromNDP, toNDP)
}
