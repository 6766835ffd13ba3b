package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "landing/pkg/domain-errors"
	"landing/pkg/validation"
)

// Lead is a captured contact submission.
//
// Invariants:
//   - ID is a non-nil UUID generated at creation
//   - Phone is digits only and a valid local mobile number
//   - Email is trimmed and syntactically valid
//   - Leads are never mutated after creation
type Lead struct {
	ID        uuid.UUID `json:"id"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Source records which surface captured a lead. It is logged, not stored.
type Source string

const (
	SourceAPI    Source = "api"
	SourceLegacy Source = "legacy"
	SourceWeb    Source = "web"
)

// NewLead validates normalized inputs and builds a Lead.
func NewLead(id uuid.UUID, phone, email string, now time.Time) (*Lead, error) {
	if id == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "lead id cannot be nil")
	}
	if !validation.IsValidPhone(phone) || phone != validation.NormalizePhone(phone) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid phone number", dErrors.WithField("phone"))
	}
	if !validation.IsValidEmail(email) || email != validation.NormalizeEmail(email) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid email address", dErrors.WithField("email"))
	}
	return &Lead{ID: id, Phone: phone, Email: email, CreatedAt: now.UTC()}, nil
}

// SubmitRequest is the submit-lead input.
type SubmitRequest struct {
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Source Source `json:"-"`
}

// Normalize strips non-digits from the phone and trims the email.
func (r *SubmitRequest) Normalize() {
	r.Phone = validation.NormalizePhone(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	if r.Source == "" {
		r.Source = SourceAPI
	}
}

// Validate checks phone before email so the first reported error matches the
// form's field order.
func (r *SubmitRequest) Validate() error {
	if !validation.IsValidPhone(r.Phone) {
		return dErrors.New(dErrors.CodeValidation, "invalid phone number", dErrors.WithField("phone"))
	}
	if !validation.IsValidEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email address", dErrors.WithField("email"))
	}
	return nil
}

// SubmitResult is returned on a persisted lead. Notified is false when the
// owner notification failed, was skipped or is still queued.
type SubmitResult struct {
	Lead     *Lead
	Notified bool
	Queued   bool
	Message  string
}

// CapturedEvent is published to downstream consumers (CRM, analytics).
type CapturedEvent struct {
	LeadID     uuid.UUID `json:"lead_id"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Source     Source    `json:"source"`
	CapturedAt time.Time `json:"captured_at"`
	RequestID  string    `json:"request_id,omitempty"`
	Device     string    `json:"device,omitempty"`
}
