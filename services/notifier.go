package services

import (
	"fmt"

	"github.com/Govind-619/PaySphere/models"
	"github.com/Govind-619/PaySphere/utils"
)

// Notifier is told about payment outcomes after they are committed.
// Implementations must not block the caller.
type Notifier interface {
	PaymentCompleted(p *models.Payment)
	PaymentRefunded(p *models.Payment)
}

// NopNotifier discards every notification
type NopNotifier struct{}

func (NopNotifier) PaymentCompleted(*models.Payment) {}
func (NopNotifier) PaymentRefunded(*models.Payment)  {}

type mailSender interface {
	Send(to, subject, body string, attachments ...string) error
}

// EmailNotifier mails receipts to the customer address on the payment
type EmailNotifier struct {
	mailer mailSender
}

func NewEmailNotifier(mailer *utils.Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer}
}

func (n *EmailNotifier) PaymentCompleted(p *models.Payment) {
	if p.CustomerEmail == "" {
		return
	}
	subject := fmt.Sprintf("%s payment receipt for order %s", utils.AppName, p.OrderID)
	go n.send(p, subject, receiptBody(p))
}

func (n *EmailNotifier) PaymentRefunded(p *models.Payment) {
	if p.CustomerEmail == "" {
		return
	}
	subject := fmt.Sprintf("%s refund for order %s", utils.AppName, p.OrderID)
	go n.send(p, subject, refundBody(p))
}

func (n *EmailNotifier) send(p *models.Payment, subject, body string) {
	if err := n.mailer.Send(p.CustomerEmail, subject, body); err != nil {
		utils.LogError("Failed to email %s about payment %s: %v", utils.MaskEmail(p.CustomerEmail), p.ID, err)
		return
	}
	utils.LogInfo("Emailed %s about payment %s", utils.MaskEmail(p.CustomerEmail), p.ID)
}

func receiptBody(p *models.Payment) string {
	gstLines := fmt.Sprintf("<tr><td>CGST</td><td>%s</td></tr><tr><td>SGST</td><td>%s</td></tr>", p.CGST.StringFixed(2), p.SGST.StringFixed(2))
	if p.IsInterState {
		gstLines = fmt.Sprintf("<tr><td>IGST</td><td>%s</td></tr>", p.IGST.StringFixed(2))
	}
	return fmt.Sprintf(`
		<h2>Payment received</h2>
		<p>Hi %s, we received your payment for order <b>%s</b>.</p>
		<table>
			<tr><td>Taxable value</td><td>%s</td></tr>
			%s
			<tr><td><b>Total paid</b></td><td><b>%s %s</b></td></tr>
		</table>
		<p>Payment method: %s</p>
	`, utils.Title(p.CustomerName), p.OrderID, p.TaxableAmount.StringFixed(2), gstLines,
		p.Currency, p.Amount.StringFixed(2), p.PaymentMethod)
}

func refundBody(p *models.Payment) string {
	amount := p.Amount
	if p.RefundAmount != nil {
		amount = *p.RefundAmount
	}
	return fmt.Sprintf(`
		<h2>Refund processed</h2>
		<p>Hi %s, a refund of <b>%s %s</b> for order <b>%s</b> has been issued.</p>
		<p>Refund reference: %s</p>
		<p>It can take 5-7 working days to reflect in your account.</p>
	`, utils.Title(p.CustomerName), p.Currency, amount.StringFixed(2), p.OrderID, p.RefundID)
}
