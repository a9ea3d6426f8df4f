package book

import "fmt"

var (
	ErrOrderNotFound = fmt.Errorf("book: order not found")
	ErrNoPxLevel     = fmt.Errorf("book: order has no px level (internal inconsistency)")
	ErrOrderExists   = fmt.Errorf("book: order already exists")
	ErrBadNDP        = fmt.Errorf("book: NDP out of range")
)

func orderNotFoundError(orderID string) error {
	return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
}
