package notifier

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"landing/internal/lead/models"
	"landing/internal/platform/config"
	"landing/pkg/platform/circuit"
	"landing/pkg/platform/sentinel"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func testLead(t *testing.T) *models.Lead {
	t.Helper()
	l, err := models.NewLead(uuid.New(), "0501234567", "buyer@example.com",
		time.Date(2026, 5, 10, 7, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	return l
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mailConfig() config.MailConfig {
	return config.MailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "owner@example.com",
		Password: "app-password",
		FromName: "W.B Real Estate Consulting",
		Timeout:  time.Second,
	}
}

func TestNewSMTP_RequiresCredentials(t *testing.T) {
	cfg := mailConfig()
	cfg.Password = ""
	_, err := NewSMTP(cfg)
	assert.Error(t, err)
}

func TestSMTPNotifier_Notify(t *testing.T) {
	sender := &fakeSender{}
	n, err := NewSMTP(mailConfig(), WithSender(sender), WithLocation(time.UTC))
	require.NoError(t, err)

	lead := testLead(t)
	require.NoError(t, n.Notify(context.Background(), lead))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	to := msg.GetToString()
	assert.Equal(t, []string{"<owner@example.com>"}, to, "recipient falls back to the SMTP user")
	assert.Equal(t, []string{"New landing page lead - 0501234567"}, msg.GetGenHeader(mail.HeaderSubject))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "buyer@example.com")
	assert.Contains(t, body, "10/05/2026 07:30:00")
	assert.Contains(t, body, lead.ID.String())
}

func TestSMTPNotifier_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("535 authentication failed")}
	n, err := NewSMTP(mailConfig(), WithSender(sender))
	require.NoError(t, err)

	err = n.Notify(context.Background(), testLead(t))
	assert.ErrorContains(t, err, "535 authentication failed")
}

func TestBreaker(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	failing := NotifierFunc(func(context.Context, *models.Lead) error {
		calls++
		return errors.New("smtp down")
	})
	cb := circuit.New("smtp",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	b := NewBreaker(failing, cb, discardLogger())
	ctx := context.Background()

	assert.Error(t, b.Notify(ctx, testLead(t)))
	assert.Error(t, b.Notify(ctx, testLead(t)))
	assert.True(t, cb.IsOpen())

	err := b.Notify(ctx, testLead(t))
	assert.ErrorIs(t, err, sentinel.ErrCircuitOpen)
	assert.Equal(t, 2, calls, "open breaker must not reach the backend")

	now = now.Add(2 * time.Minute)
	assert.Error(t, b.Notify(ctx, testLead(t)))
	assert.Equal(t, 3, calls, "probe after cooldown reaches the backend")
}

func TestBreaker_ClosesAfterSuccesses(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fail := true
	next := NotifierFunc(func(context.Context, *models.Lead) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})
	cb := circuit.New("smtp",
		circuit.WithFailureThreshold(1),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Second),
		circuit.WithClock(func() time.Time { return now }),
	)
	b := NewBreaker(next, cb, discardLogger())
	ctx := context.Background()

	require.Error(t, b.Notify(ctx, testLead(t)))
	require.True(t, cb.IsOpen())

	fail = false
	now = now.Add(2 * time.Second)
	require.NoError(t, b.Notify(ctx, testLead(t)))
	assert.False(t, cb.IsOpen())
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, n.Notify(context.Background(), testLead(t)))
	assert.Contains(t, buf.String(), "05******67")
	assert.NotContains(t, buf.String(), "0501234567")
}
