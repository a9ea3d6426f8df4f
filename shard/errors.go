package shard

import "fmt"

var (
	ErrInstrumentExists = fmt.Errorf("shard: instrument already owned by this shard")
	ErrOrderBookExists  = fmt.Errorf("shard: order book already owned by this shard")
	ErrStopped          = fmt.Errorf("shard: shard is stopped")
)
