package venue

import "fmt"

var (
	ErrUnknownVenue     = fmt.Errorf("venue: unknown venue")
	ErrTickSizeTblExists = fmt.Errorf("venue: tick size table already exists")
	ErrOrderNotFound    = fmt.Errorf("venue: order not found in scope index")
)
