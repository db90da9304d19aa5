package services

import (
	"testing"
	"time"

	"github.com/Govind-619/PaySphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type chanSender chan sentMail

func (c chanSender) Send(to, subject, body string, _ ...string) error {
	c <- sentMail{to, subject, body}
	return nil
}

func TestEmailNotifier(t *testing.T) {
	sent := make(chanSender, 2)
	n := &EmailNotifier{mailer: sent}

	p := &models.Payment{
		OrderID:       "ORD-1",
		Currency:      models.CurrencyINR,
		Amount:        dec("1180"),
		TaxableAmount: dec("1000"),
		CGST:          dec("90"),
		SGST:          dec("90"),
		CustomerName:  "asha rao",
		CustomerEmail: "asha@example.com",
		PaymentMethod: models.PaymentMethodUPI,
	}
	n.PaymentCompleted(p)

	select {
	case m := <-sent:
		assert.Equal(t, "asha@example.com", m.to)
		assert.Contains(t, m.subject, "ORD-1")
		assert.Contains(t, m.body, "Asha Rao")
		assert.Contains(t, m.body, "INR 1180.00")
		assert.Contains(t, m.body, "SGST")
	case <-time.After(time.Second):
		require.FailNow(t, "receipt was not sent")
	}

	p.CustomerEmail = ""
	n.PaymentRefunded(p)
	select {
	case m := <-sent:
		t.Fatalf("unexpected mail to %q", m.to)
	case <-time.After(50 * time.Millisecond):
	}
}
