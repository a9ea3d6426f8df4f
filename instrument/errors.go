package instrument

import "fmt"

var (
	ErrOrderBookExists   = fmt.Errorf("instrument: order book already exists")
	ErrNoOrderBook       = fmt.Errorf("instrument: no such order book")
	ErrNoUnderlying      = fmt.Errorf("instrument: no underlying linked")
	ErrDerivativeExists  = fmt.Errorf("instrument: derivative already indexed")
)

func noOrderBookError(key any) error {
	return fmt.Errorf("%w: %+v", ErrNoOrderBook, key)
}
