package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 500*time.Millisecond, cfg.RelayInterval)
	assert.Equal(t, 168*time.Hour, cfg.PromotionStateTTL)
	assert.Equal(t, 5, cfg.KafkaMaxAttempts)
	assert.Equal(t, 20*time.Millisecond, cfg.KafkaBatchTimeout)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_DSN", "user:pw@tcp(db:3306)/desk?parseTime=true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("PROMOTE_RATE_WINDOW", "5s")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.PromoteRateWindow)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"DB_DRIVER":           "postgres",
		"PROMOTE_RATE_LIMIT":  "0",
		"PROMOTE_RATE_WINDOW": "100ms",
		"BALANCE_CONCURRENCY": "-1",
		"REDIS_DB":            "abc",
		"NODE_ID":             "2048",
		"KAFKA_MAX_ATTEMPTS":  "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
