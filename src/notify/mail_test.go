package notify

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMailRequiresHostAndFrom(t *testing.T) {
	_, err := NewMail(MailConfig{Host: "smtp.example.org"})
	require.ErrorIs(t, err, ErrConfig)
	_, err = NewMail(MailConfig{From: "no-reply@sauti.go.ke"})
	require.ErrorIs(t, err, ErrConfig)
}

func TestMailSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	mail, err := NewMail(MailConfig{Host: "smtp.example.org", Port: "587", From: "no-reply@sauti.go.ke"})
	require.NoError(t, err)
	mail.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	to := Notifiable{UserID: 5, Email: "asha@example.org", ByEmail: true}
	err = mail.Send(context.Background(), to, &Message{Subject: "NA-001-2026 is open", Body: "Have your say."})
	require.NoError(t, err)
	require.Equal(t, "smtp.example.org:587", gotAddr)
	require.Equal(t, "no-reply@sauti.go.ke", gotFrom)
	require.Equal(t, []string{"asha@example.org"}, gotTo)
	require.Contains(t, string(gotMsg), "Subject: NA-001-2026 is open")
	require.Contains(t, string(gotMsg), "Have your say.")
}

func TestMailSkipsWithoutRoute(t *testing.T) {
	mail, err := NewMail(MailConfig{Host: "smtp.example.org", Port: "587", From: "no-reply@sauti.go.ke"})
	require.NoError(t, err)
	calls := 0
	mail.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		return nil
	}

	msg := &Message{Subject: "s", Body: "b"}
	require.NoError(t, mail.Send(context.Background(), Notifiable{UserID: 1, ByEmail: true}, msg))
	require.NoError(t, mail.Send(context.Background(), Notifiable{UserID: 2, Email: "x@y.z", ByEmail: false}, msg))
	require.Equal(t, 0, calls)
}
