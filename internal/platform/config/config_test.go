package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.PropagationDelay)
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, "SOA", cfg.OrgPrefix)
	assert.Nil(t, cfg.BackoffSchedule)
}

func TestFromEnvBackoffSchedule(t *testing.T) {
	t.Setenv("BACKOFF_SCHEDULE", "500ms, 1s,2s")

	cfg := FromEnv()

	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}, cfg.BackoffSchedule)
}

func TestFromEnvBackoffScheduleMalformedEntryIgnoresSchedule(t *testing.T) {
	t.Setenv("BACKOFF_SCHEDULE", "1s,banana,2s")

	cfg := FromEnv()

	assert.Nil(t, cfg.BackoffSchedule)
}

func TestFromEnvKafkaBrokersSplitAndTrimmed(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092,")

	cfg := FromEnv()

	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.KafkaBrokers)
}
