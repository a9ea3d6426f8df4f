package subscriber

import "testing"

func TestLinkStateString(t *testing.T) {
	cases := map[LinkState]string{
		StateDisconnected:      "Disconnected",
		StateConnectingTCP:     "Connecting(TCP)",
		StateLive:              "Live",
		LinkState(200):         "Unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("LinkState(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestTCPUDPStateString(t *testing.T) {
	if got := TCPStateReceiving.String(); got != "Receiving" {
		t.Errorf("TCPStateReceiving.String() = %q", got)
	}
	if got := UDPStateBinding.String(); got != "Binding" {
		t.Errorf("UDPStateBinding.String() = %q", got)
	}
	if got := TCPState(99).String(); got != "Disconnect" {
		t.Errorf("unknown TCPState should report Disconnect, got %q", got)
	}
}
