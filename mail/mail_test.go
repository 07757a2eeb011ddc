package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.False(t, Config{Host: "smtp.x.com", Port: 587, Username: "u"}.Configured())
	assert.True(t, Config{Host: "smtp.x.com", Port: 587, Username: "u", Password: "p"}.Configured())
}

func TestUnconfiguredNotifierLogsLink(t *testing.T) {
	var buf bytes.Buffer
	n := NewSMTPNotifier(Config{}, zerolog.New(&buf))

	err := n.SendPasswordReset(context.Background(), "ana@x.com", "http://app/reset?token=abc")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "http://app/reset?token=abc")
	assert.Contains(t, buf.String(), "ana@x.com")
}

func TestSendRendersLink(t *testing.T) {
	var gotFrom, gotTo string
	var gotMsg []byte
	n := NewSMTPNotifier(Config{Username: "noreply@x.com"}, zerolog.Nop())
	n.send = func(from, to string, msg []byte) error {
		gotFrom, gotTo, gotMsg = from, to, msg
		return nil
	}

	require.NoError(t, n.SendPasswordReset(context.Background(), "ana@x.com", "http://app/reset?token=abc"))
	assert.Equal(t, "noreply@x.com", gotFrom)
	assert.Equal(t, "ana@x.com", gotTo)
	assert.Contains(t, string(gotMsg), "Subject: "+passwordResetSubject)
	assert.Contains(t, string(gotMsg), `href="http://app/reset?token=abc"`)
}

func TestSendFailureIsReturned(t *testing.T) {
	n := NewSMTPNotifier(Config{}, zerolog.Nop())
	n.send = func(string, string, []byte) error { return errors.New("connection refused") }

	err := n.SendPasswordReset(context.Background(), "ana@x.com", "http://app/reset?token=abc")
	assert.ErrorContains(t, err, "connection refused")
}
