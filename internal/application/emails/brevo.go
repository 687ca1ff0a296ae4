package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches the Brevo v3 transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// TravelInvite is what the invite email needs to know.
type TravelInvite struct {
	To          string
	Link        string
	TravelTitle string
	InviterName string
	Reminder    bool
}

// Sender sends transactional emails. A nil Sender is a no-op for callers.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, name string) error
	SendTravelInvite(ctx context.Context, invite TravelInvite) error
	SendAccountUpdated(ctx context.Context, toEmail, name string) error
}

// BrevoClient sends emails through the Brevo (Sendinblue) API. Without an API key
// it logs and drops every message.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@travel-planner.app"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email skipped: no api key")
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Travel Planner"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, name string) error {
	if name == "" {
		name = "there"
	}
	return c.send(ctx, toEmail, "Welcome to Travel Planner!", EmailLayout(welcomeContent(name)))
}

// SendTravelInvite sends the invitation (or its reminder) carrying the redeem link.
func (c *BrevoClient) SendTravelInvite(ctx context.Context, inv TravelInvite) error {
	subject := fmt.Sprintf("You have been invited to %s", inv.TravelTitle)
	if inv.Reminder {
		subject = "Reminder: " + subject
	}
	return c.send(ctx, inv.To, subject, EmailLayout(invitationContent(inv)))
}

func (c *BrevoClient) SendAccountUpdated(ctx context.Context, toEmail, name string) error {
	if name == "" {
		name = "there"
	}
	return c.send(ctx, toEmail, "Your account was updated", EmailLayout(accountUpdatedContent(name)))
}

func welcomeContent(name string) string {
	return fmt.Sprintf(`
    <h1>Welcome aboard, %s!</h1>
    <p>Your account is ready. Create your first travel, add the cities you plan to visit and invite your friends along.</p>
    <p>If you did not sign up for this account, please ignore this email.</p>
`, EscapeHTML(name))
}

func invitationContent(inv TravelInvite) string {
	inviter := inv.InviterName
	if inviter == "" {
		inviter = "A friend"
	}
	return fmt.Sprintf(`
    <h1>Join %s</h1>
    <p><strong>%s</strong> invited you to plan the travel <strong>%s</strong> together.</p>
    <center>
      <a href="%s" class="cta-button">View invitation</a>
    </center>
    <p style="margin-top:20px;font-size:14px;color:#666;">
      Sign in with this email address to accept. If you were not expecting this invitation, you can ignore this email.
    </p>
`, EscapeHTML(inv.TravelTitle), EscapeHTML(inviter), EscapeHTML(inv.TravelTitle), EscapeHTML(inv.Link))
}

func accountUpdatedContent(name string) string {
	return fmt.Sprintf(`
    <h1>Account details updated</h1>
    <p>Hi %s,</p>
    <p>The information on your account was just changed. If this was not you, change your password right away.</p>
`, EscapeHTML(name))
}
