package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Shards: []ShardConfig{
			{ID: "s0", Thread: "shard-0"},
			{ID: "s1", Thread: "shard-1"},
		},
		Timezone: "UTC",
		Subscriber: SubscriberConfig{
			Channels:      "channels.csv",
			MaxQueueSize:  4096,
			LoginTimeout:  5 * time.Second,
			Timeout:       10 * time.Second,
			ReconnectFreq: 2 * time.Second,
			ReReqInterval: 3 * time.Second,
			ReReqMaxGap:   10000,
		},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsNoShards(t *testing.T) {
	c := validConfig()
	c.Shards = nil
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for no shards")
	}
}

func TestValidateRejectsDuplicateShardID(t *testing.T) {
	c := validConfig()
	c.Shards = append(c.Shards, ShardConfig{ID: "s0", Thread: "shard-0-dup"})
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for duplicate shard id")
	}
}

func TestValidateRejectsBadTimezone(t *testing.T) {
	c := validConfig()
	c.Timezone = "Not/AZone"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for bad timezone")
	}
}

func TestValidateRejectsMissingChannels(t *testing.T) {
	c := validConfig()
	c.Subscriber.Channels = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing channels path")
	}
}

func TestTuningConversion(t *testing.T) {
	c := validConfig()
	tn := c.Tuning()
	if tn.MaxQueueSize != 4096 || tn.ReReqMaxGap != 10000 {
		t.Fatalf("Tuning() = %+v", tn)
	}
}
