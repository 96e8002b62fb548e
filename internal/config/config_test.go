package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://deprem.afad.gov.tr", cfg.AFADBaseURL)
	assert.Equal(t, 15*time.Second, cfg.AFADTimeout)
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
	assert.Equal(t, 24*time.Hour, cfg.LookbackWindow)
	assert.Equal(t, 500, cfg.FetchLimit)
	assert.Equal(t, "timeasc", cfg.FetchOrderBy)
	assert.False(t, cfg.AttachEnergy)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "quake-events", cfg.KafkaSinkTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("AFAD_BASE_URL", "http://localhost:9100")
	t.Setenv("AFAD_TIMEOUT", "5s")
	t.Setenv("POLL_INTERVAL", "5m")
	t.Setenv("LOOKBACK_WINDOW", "72h")
	t.Setenv("FETCH_LIMIT", "1000")
	t.Setenv("FETCH_ORDERBY", "timedesc")
	t.Setenv("ATTACH_ENERGY", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9100", cfg.AFADBaseURL)
	assert.Equal(t, 5*time.Second, cfg.AFADTimeout)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 72*time.Hour, cfg.LookbackWindow)
	assert.Equal(t, 1000, cfg.FetchLimit)
	assert.Equal(t, "timedesc", cfg.FetchOrderBy)
	assert.True(t, cfg.AttachEnergy)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidAFADTimeout(t *testing.T) {
	t.Setenv("AFAD_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AFAD_TIMEOUT")
}

func TestLoad_NegativePollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestLoad_InvalidLookbackWindow(t *testing.T) {
	t.Setenv("LOOKBACK_WINDOW", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOOKBACK_WINDOW")
}

func TestLoad_InvalidFetchLimit(t *testing.T) {
	t.Setenv("FETCH_LIMIT", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_LIMIT")
}

func TestLoad_UnsupportedOrderBy(t *testing.T) {
	t.Setenv("FETCH_ORDERBY", "alphabetical")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_ORDERBY")
}

func TestLoad_EmptySinkTopic(t *testing.T) {
	t.Setenv("KAFKA_SINK_TOPIC", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_SINK_TOPIC")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}
