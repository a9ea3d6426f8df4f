package shard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/instrument"
	"github.com/nimblemarkets/mdbook/wire"
)

func TestInvokeBlocksUntilComplete(t *testing.T) {
	s := New(0, "shard-0", 8, nil)
	defer s.Stop()

	var ran int32
	s.Invoke(func() { atomic.StoreInt32(&ran, 1) })
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatalf("expected Invoke to have run fn synchronously")
	}
}

func TestRunIsFireAndForget(t *testing.T) {
	s := New(0, "shard-0", 8, nil)
	defer s.Stop()

	done := make(chan struct{})
	s.Run(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Run's fn to eventually execute")
	}
}

func TestAddInstrumentRejectsDuplicate(t *testing.T) {
	s := New(0, "shard-0", 8, nil)
	defer s.Stop()

	key := wire.InstrumentKey{Venue: wire.NewID8("XNYS"), Instrument: wire.NewID8("SYM1")}
	inst := instrument.New(key, instrument.RefData{})
	if err := s.AddInstrument(inst); err != nil {
		t.Fatalf("AddInstrument: %v", err)
	}
	if err := s.AddInstrument(inst); err != ErrInstrumentExists {
		t.Fatalf("expected ErrInstrumentExists, got %v", err)
	}
	if _, ok := s.Instrument(key); !ok {
		t.Fatalf("expected instrument retrievable")
	}
}

func TestAddOrderBookRejectsDuplicate(t *testing.T) {
	s := New(0, "shard-0", 8, nil)
	defer s.Stop()

	key := wire.OrderBookKey{Venue: wire.NewID8("XNYS"), Segment: wire.NewID8("EQ")}
	ob := book.NewOrderBook(key, 2, 0, false, &book.Handler{})
	if err := s.AddOrderBook(ob); err != nil {
		t.Fatalf("AddOrderBook: %v", err)
	}
	if err := s.AddOrderBook(ob); err != ErrOrderBookExists {
		t.Fatalf("expected ErrOrderBookExists, got %v", err)
	}
}

func TestSyncVisitsEveryShardSerially(t *testing.T) {
	shards := []*Shard{
		New(0, "shard-0", 8, nil),
		New(1, "shard-1", 8, nil),
		New(2, "shard-2", 8, nil),
	}
	defer func() {
		for _, s := range shards {
			s.Stop()
		}
	}()

	var order []int
	var mu chan struct{} = make(chan struct{}, 1)
	mu <- struct{}{}

	err := Sync(context.Background(), shards, func(s *Shard) {
		<-mu
		order = append(order, s.ID)
		mu <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("expected every shard visited exactly once, got %v", order)
	}
	for i, id := range order {
		if id != i {
			t.Fatalf("expected shards visited serially in order 0,1,2, got %v", order)
		}
	}
}
