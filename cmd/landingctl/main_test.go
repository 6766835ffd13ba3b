package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landing/internal/lead/models"
	leadStore "landing/internal/lead/store"
	"landing/internal/platform/adminauth"
	"landing/internal/platform/config"
)

func withConfig(t *testing.T, cfg config.Server) {
	t.Helper()
	prev := loadConfig
	loadConfig = func() (config.Server, error) { return cfg, nil }
	t.Cleanup(func() { loadConfig = prev })
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	withConfig(t, config.Server{Admin: config.AdminConfig{
		JWTSecret: "test-secret", Issuer: "landing", TokenTTL: time.Hour,
	}})

	out, err := execute(t, "", "token", "--subject", "ops@example.com")
	require.NoError(t, err)

	subject, err := adminauth.New("test-secret", "landing").Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", subject)
}

func TestTokenCommand_NoSecret(t *testing.T) {
	withConfig(t, config.Server{Admin: config.AdminConfig{Issuer: "landing", TokenTTL: time.Hour}})

	_, err := execute(t, "", "token", "--subject", "ops@example.com")
	assert.Error(t, err)
}

func TestHashKeyCommand(t *testing.T) {
	const key = "0123456789abcdef-key"
	out, err := execute(t, key+"\n", "hash-key")
	require.NoError(t, err)

	auth := adminauth.New("", "landing", adminauth.WithAPIKeyHash(strings.TrimSpace(out)))
	subject, err := auth.Validate(key)
	require.NoError(t, err)
	assert.Equal(t, adminauth.APIKeySubject, subject)

	_, err = execute(t, "short\n", "hash-key")
	assert.Error(t, err)
}

func TestLeadsCommand_FileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	store := leadStore.NewFile(path)
	lead, err := models.NewLead(uuid.New(), "0501234567", "dana@example.com", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), lead))

	withConfig(t, config.Server{Leads: config.LeadConfig{Store: config.LeadStoreFile, File: path}})

	out, err := execute(t, "", "leads", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "0501234567")
	assert.Contains(t, out, "dana@example.com")
	assert.Contains(t, out, lead.ID.String())
}

func TestLeadsCommand_MemoryStoreRejected(t *testing.T) {
	withConfig(t, config.Server{Leads: config.LeadConfig{Store: config.LeadStoreMemory}})

	_, err := execute(t, "", "leads")
	assert.Error(t, err)
}

func TestMigrateCommand_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.db")
	withConfig(t, config.Server{Leads: config.LeadConfig{Store: config.LeadStoreSQLite, SQLitePath: path}})

	out, err := execute(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated sqlite")
}
