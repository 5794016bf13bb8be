package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackSender_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := &SlackSender{WebhookURL: srv.URL, Channel: "#ops", Client: srv.Client()}
	require.NoError(t, s.Send(context.Background(), "hello"))
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "#ops", got["channel"])
}

func TestSlackSender_Errors(t *testing.T) {
	assert.Error(t, (&SlackSender{}).Send(context.Background(), "x"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	err := (&SlackSender{WebhookURL: srv.URL}).Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestTelegramSender_Send(t *testing.T) {
	var path string
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := &TelegramSender{Token: "tok", ChatID: "12345", BaseURL: srv.URL + "/", Client: srv.Client()}
	require.NoError(t, s.Send(context.Background(), "queued"))
	assert.Equal(t, "/bottok/sendMessage", path)
	assert.Equal(t, "12345", got["chat_id"])
	assert.Equal(t, "queued", got["text"])
}

func TestTelegramSender_Errors(t *testing.T) {
	assert.Error(t, (&TelegramSender{ChatID: "1"}).Send(context.Background(), "x"))
	assert.Error(t, (&TelegramSender{Token: "t"}).Send(context.Background(), "x"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	err := (&TelegramSender{Token: "t", ChatID: "1", BaseURL: srv.URL}).Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSMTPSender_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	s := &SMTPSender{
		Host:    "mail.example.com",
		From:    "bot@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "digest",
		sendMail: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
			return nil
		},
	}
	require.NoError(t, s.Send(context.Background(), "body text"))
	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Len(t, gotTo, 2)
	assert.Contains(t, gotMsg, "Subject: digest\r\n")
	assert.Contains(t, gotMsg, "To: a@example.com, b@example.com\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\nbody text"))
}

func TestSMTPSender_Validation(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, (&SMTPSender{From: "a", To: []string{"b"}}).Send(ctx, "x"))
	assert.Error(t, (&SMTPSender{Host: "h", To: []string{"b"}}).Send(ctx, "x"))
	assert.Error(t, (&SMTPSender{Host: "h", From: "a"}).Send(ctx, "x"))
}

type fakeSender struct {
	name string
	err  error
	msgs []string
}

func (f *fakeSender) Name() string { return f.name }
func (f *fakeSender) Send(_ context.Context, m string) error {
	f.msgs = append(f.msgs, m)
	return f.err
}

func TestNotifier_FansOutAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &fakeSender{name: "ok"}
	bad := &fakeSender{name: "bad", err: boom}
	n := NewNotifier(bad, nil, ok)
	assert.Equal(t, 2, n.Len())

	err := n.Notify(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad:")
	assert.Equal(t, []string{"hi"}, ok.msgs, "a failing sender must not stop the others")

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.Notify(context.Background(), "hi"))
	assert.Equal(t, 0, nilNotifier.Len())
}
