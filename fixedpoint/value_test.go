package fixedpoint

import "testing"

func TestRescaleRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		value       Value
		fromNDP     NDP
		toNDP       NDP
		wantRescale Value
	}{
		{"2dp to 4dp", 10000, 2, 4, 1000000},
		{"4dp to 2dp exact", 1000000, 4, 2, 10000},
		{"same ndp noop", 12345, 2, 2, 12345},
		{"zero is always exact", 0, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.value.Rescale(tt.fromNDP, tt.toNDP)
			if err != nil {
				t.Fatalf("Rescale() error = %v", err)
			}
			if got != tt.wantRescale {
				t.Errorf("Rescale() = %d, want %d", got, tt.wantRescale)
			}
			back, err := got.Rescale(tt.toNDP, tt.fromNDP)
			if err != nil {
				t.Fatalf("inverse Rescale() error = %v", err)
			}
			if back != tt.value {
				t.Errorf("round trip = %d, want %d", back, tt.value)
			}
		})
	}
}

func TestRescaleSentinelsPassThrough(t *testing.T) {
	for _, v := range []Value{Null, Reset} {
		got, err := v.Rescale(2, 8)
		if err != nil {
			t.Fatalf("Rescale(%d) error = %v", v, err)
		}
		if got != v {
			t.Errorf("Rescale(%d) = %d, want unchanged", v, got)
		}
	}
}

func TestRescaleOverflow(t *testing.T) {
	huge := Value(9000000000000000)
	if _, err := huge.Rescale(0, 18); err == nil {
		t.Errorf("expected overflow error rescaling %d by 18 decimal places", huge)
	}
}

func TestNV(t *testing.T) {
	// price=100.00 (pxNDP=2) * qty=5 (qtyNDP=0) -> nv = 500.00 at ndp=2
	nv, ndp, err := NV(10000, 2, 5, 0)
	if err != nil {
		t.Fatalf("NV() error = %v", err)
	}
	if ndp != 2 {
		t.Fatalf("NV() ndp = %d, want 2", ndp)
	}
	if nv != 50000 {
		t.Errorf("NV() = %d, want 50000", nv)
	}
}

func TestNVWithSentinel(t *testing.T) {
	nv, _, err := NV(Null, 2, 5, 0)
	if err != nil {
		t.Fatalf("NV() error = %v", err)
	}
	if nv != Null {
		t.Errorf("NV() with null price = %d, want Null", nv)
	}
}

func TestMergeL1(t *testing.T) {
	if got := MergeL1(100, Null); got != 100 {
		t.Errorf("MergeL1 null incoming should leave old value, got %d", got)
	}
	if got := MergeL1(100, Reset); got != Null {
		t.Errorf("MergeL1 reset incoming should clear to Null, got %d", got)
	}
	if got := MergeL1(100, 200); got != 200 {
		t.Errorf("MergeL1 plain incoming should assign, got %d", got)
	}
}
