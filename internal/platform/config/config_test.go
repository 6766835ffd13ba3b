package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "http://localhost:5173", cfg.ClientOrigin)
	assert.Equal(t, LeadStoreFile, cfg.Leads.Store)
	assert.Equal(t, "leads.json", cfg.Leads.File)
	assert.Equal(t, NotifySync, cfg.Leads.NotifyMode)
	assert.Equal(t, 5, cfg.RateLimit.LeadsPerWindow)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.Mail.Enabled())
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Kafka.PublishTimeout)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestFromEnvGmailFallbacks(t *testing.T) {
	t.Setenv("GMAIL_USER", "owner@gmail.com")
	t.Setenv("GMAIL_APP_PASSWORD", "app-pass")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, "owner@gmail.com", cfg.Mail.Username)
	assert.Equal(t, "owner@gmail.com", cfg.Mail.To, "recipient falls back to the sending account")

	t.Setenv("LEADS_TO_EMAIL", "sales@example.com")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sales@example.com", cfg.Mail.To)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("LEAD_STORE", "postgres")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown notify mode", func(t *testing.T) {
		t.Setenv("LEAD_NOTIFY_MODE", "carrier-pigeon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "LEAD_NOTIFY_MODE")
	})

	t.Run("mail timeout outlives request in sync mode", func(t *testing.T) {
		t.Setenv("MAIL_TIMEOUT", "40s")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "MAIL_TIMEOUT")

		t.Setenv("LEAD_NOTIFY_MODE", "async")
		_, err = FromEnv()
		assert.NoError(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_WINDOW", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "RATE_LIMIT_WINDOW")
	})
}

func TestFromEnvKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnvTrustedProxies(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.TrustedProxies, "no proxy is trusted by default")

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10,::1")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.10/32"),
		netip.MustParsePrefix("::1/128"),
	}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/40")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}
