package notifier

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/wneessen/go-mail"

	"landing/internal/lead/models"
	"landing/internal/platform/config"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlBody = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/lead.html"))
	textBody = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/lead.txt"))
)

// Sender is the subset of *mail.Client used for delivery.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPNotifier emails the owner through an authenticated SMTP relay.
type SMTPNotifier struct {
	sender   Sender
	from     string
	fromName string
	to       string
	timeout  time.Duration
	location *time.Location
}

// SMTPOption configures an SMTPNotifier.
type SMTPOption func(*SMTPNotifier)

// WithSender replaces the go-mail client, mainly for tests.
func WithSender(s Sender) SMTPOption {
	return func(n *SMTPNotifier) {
		n.sender = s
	}
}

// WithLocation sets the time zone used for the "received" line.
func WithLocation(loc *time.Location) SMTPOption {
	return func(n *SMTPNotifier) {
		if loc != nil {
			n.location = loc
		}
	}
}

// NewSMTP builds a notifier from mail settings. STARTTLS is mandatory and
// authentication uses PLAIN, which is what Gmail app passwords expect.
func NewSMTP(cfg config.MailConfig, opts ...SMTPOption) (*SMTPNotifier, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("smtp notifier requires a username and password")
	}
	n := &SMTPNotifier{
		from:     cfg.Username,
		fromName: cfg.FromName,
		to:       cfg.To,
		timeout:  cfg.Timeout,
		location: defaultLocation(),
	}
	if n.to == "" {
		n.to = cfg.Username
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.sender == nil {
		client, err := mail.NewClient(cfg.Host,
			mail.WithPort(cfg.Port),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
			mail.WithTLSPortPolicy(mail.TLSMandatory),
			mail.WithTimeout(cfg.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("create smtp client: %w", err)
		}
		n.sender = client
	}
	return n, nil
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Notify sends one message. There is no retry: a failed send is reported to
// the caller, which decides how to degrade.
func (n *SMTPNotifier) Notify(ctx context.Context, lead *models.Lead) error {
	msg, err := n.Message(lead)
	if err != nil {
		return err
	}
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send lead email: %w", err)
	}
	return nil
}

type leadView struct {
	ID       string
	Phone    string
	Email    string
	Received string
}

// Message renders the owner email for lead.
func (n *SMTPNotifier) Message(lead *models.Lead) (*mail.Msg, error) {
	view := leadView{
		ID:       lead.ID.String(),
		Phone:    lead.Phone,
		Email:    lead.Email,
		Received: lead.CreatedAt.In(n.location).Format("02/01/2006 15:04:05"),
	}

	var html, text bytes.Buffer
	if err := htmlBody.Execute(&html, view); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	if err := textBody.Execute(&text, view); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(n.fromName, n.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(n.to); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	// Replies go straight to the prospect.
	if err := msg.ReplyTo(lead.Email); err != nil {
		return nil, fmt.Errorf("set reply-to: %w", err)
	}
	msg.Subject("New landing page lead - " + lead.Phone)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, text.String())
	msg.AddAlternativeString(mail.TypeTextHTML, html.String())
	return msg, nil
}
