package config

import (
	"strings"
	"testing"
)

const sampleCSV = `id,enabled,tcpIP,tcpPort,tcpIP2,tcpPort2,udpIP,udpPort,udpIP2,udpPort2,resendIP,resendPort,resendIP2,resendPort2,tcpUsername,tcpPassword
NYSE,true,10.0.0.1,7001,10.0.0.2,7001,239.1.1.1,8001,239.1.1.2,8001,239.1.1.1,8002,239.1.1.2,8002,user1,pass1
NASDAQ,false,10.0.0.3,7001,,,239.1.1.3,8001,,,239.1.1.3,8002,,,user2,pass2
`

func TestParseChannels(t *testing.T) {
	links, err := ParseChannels(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseChannels: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}

	nyse := links[0]
	if nyse.ID != "NYSE" || !nyse.Enabled {
		t.Fatalf("nyse = %+v", nyse)
	}
	if nyse.TCPAddr != "10.0.0.1:7001" || nyse.TCPAddr2 != "10.0.0.2:7001" {
		t.Fatalf("nyse tcp addrs = %q, %q", nyse.TCPAddr, nyse.TCPAddr2)
	}
	if nyse.UDPAddr != "239.1.1.1:8001" || nyse.ResendAddr != "239.1.1.1:8002" {
		t.Fatalf("nyse udp/resend = %q, %q", nyse.UDPAddr, nyse.ResendAddr)
	}
	if nyse.TCPUsername != "user1" || nyse.TCPPassword != "pass1" {
		t.Fatalf("nyse creds = %q, %q", nyse.TCPUsername, nyse.TCPPassword)
	}

	nasdaq := links[1]
	if nasdaq.Enabled {
		t.Fatalf("nasdaq should be disabled")
	}
	if nasdaq.TCPAddr2 != "" || nasdaq.UDPAddr2 != "" || nasdaq.ResendAddr2 != "" {
		t.Fatalf("nasdaq alternate endpoints should be empty, got %+v", nasdaq)
	}
}

func TestParseChannelsMissingColumn(t *testing.T) {
	bad := "id,enabled\nA,true\n"
	if _, err := ParseChannels(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for missing columns")
	}
}
