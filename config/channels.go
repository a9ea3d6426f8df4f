package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/nimblemarkets/mdbook/subscriber"
)

// channelColumns are the channel CSV's fixed column order (spec section
// 6: "Channel CSV columns (one row per link)").
var channelColumns = []string{
	"id", "enabled",
	"tcpIP", "tcpPort", "tcpIP2", "tcpPort2",
	"udpIP", "udpPort", "udpIP2", "udpPort2",
	"resendIP", "resendPort", "resendIP2", "resendPort2",
	"tcpUsername", "tcpPassword",
}

// LoadChannels parses the channel CSV named by Config.Subscriber.Channels
// into one subscriber.LinkConfig per row. The first row must be a header
// naming channelColumns (order-independent); blank IP/port pairs produce
// an empty endpoint string, used by Link to mean "no alternate".
func (c *Config) LoadChannels() ([]subscriber.LinkConfig, error) {
	f, err := os.Open(c.Subscriber.Channels)
	if err != nil {
		return nil, fmt.Errorf("config: open channel csv %s: %w", c.Subscriber.Channels, err)
	}
	defer f.Close()
	return ParseChannels(f)
}

// ParseChannels parses channel CSV rows from r.
func ParseChannels(r io.Reader) ([]subscriber.LinkConfig, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(channelColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("config: read channel csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, want := range channelColumns {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("config: channel csv missing column %q", want)
		}
	}

	var out []subscriber.LinkConfig
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("config: read channel csv row: %w", err)
		}

		get := func(name string) string { return row[col[name]] }

		enabled, err := strconv.ParseBool(get("enabled"))
		if err != nil {
			return nil, fmt.Errorf("config: channel %q: enabled: %w", get("id"), err)
		}

		lc := subscriber.LinkConfig{
			ID:          get("id"),
			Enabled:     enabled,
			TCPAddr:     joinAddr(get("tcpIP"), get("tcpPort")),
			TCPAddr2:    joinAddr(get("tcpIP2"), get("tcpPort2")),
			UDPAddr:     joinAddr(get("udpIP"), get("udpPort")),
			UDPAddr2:    joinAddr(get("udpIP2"), get("udpPort2")),
			ResendAddr:  joinAddr(get("resendIP"), get("resendPort")),
			ResendAddr2: joinAddr(get("resendIP2"), get("resendPort2")),
			TCPUsername: get("tcpUsername"),
			TCPPassword: get("tcpPassword"),
		}
		if lc.ID == "" {
			return nil, fmt.Errorf("config: channel row missing id")
		}
		out = append(out, lc)
	}
	return out, nil
}

func joinAddr(ip, port string) string {
	if ip == "" || port == "" {
		return ""
	}
	return net.JoinHostPort(ip, port)
}
