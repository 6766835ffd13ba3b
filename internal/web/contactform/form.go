// Package contactform is the state machine behind the contact form: field
// values and errors, the status banner and which field should take focus.
//
//	idle -> invalid                 Validate with a bad field
//	idle -> submitting -> success   BeginSubmit, Succeed
//	           submitting -> error  Fail
//	success|error|invalid -> idle   Edit, or Tick after StatusTTL
package contactform

import (
	"context"
	"sync"
	"time"

	"landing/pkg/validation"
)

// StatusTTL is how long a transient status stays on screen.
const StatusTTL = 2 * time.Second

type State string

const (
	StateIdle       State = "idle"
	StateInvalid    State = "invalid"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

type Field string

const (
	FieldNone  Field = ""
	FieldPhone Field = "phone"
	FieldEmail Field = "email"
)

const (
	msgPhoneInvalid = "Please enter a valid mobile number (05XXXXXXXX)."
	msgEmailInvalid = "Please enter a valid email address."
	msgFixPhone     = "Please fix the phone number before sending."
	msgFixEmail     = "Please fix the email address before sending."
	msgSubmitting   = "Sending..."
	msgSent         = "Sent successfully!"
	MsgSubmitFailed = "submission failed"
)

// Clock lets tests drive AutoClear without sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// Form is safe for concurrent use so AutoClear can run beside the owner.
type Form struct {
	mu sync.Mutex

	phone, email           string
	phoneError, emailError string

	state     State
	message   string
	focus     Field
	expiresAt time.Time
}

// New returns an idle, empty form.
func New() *Form {
	return &Form{state: StateIdle}
}

// Snapshot is an immutable copy for rendering.
type Snapshot struct {
	Phone      string
	Email      string
	PhoneError string
	EmailError string
	State      State
	Message    string
	Focus      Field
}

// Transient reports whether the status banner will dismiss itself.
func (s Snapshot) Transient() bool {
	return s.State == StateSuccess || s.State == StateError || s.State == StateInvalid
}

// DismissAfterMillis is rendered as data-dismiss-after on the banner.
func (s Snapshot) DismissAfterMillis() int64 {
	if !s.Transient() {
		return 0
	}
	return StatusTTL.Milliseconds()
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Phone:      f.phone,
		Email:      f.email,
		PhoneError: f.phoneError,
		EmailError: f.emailError,
		State:      f.state,
		Message:    f.message,
		Focus:      f.focus,
	}
}

// Edit stores a field value, clears that field's error and any status.
func (f *Form) Edit(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case FieldPhone:
		f.phone = value
		f.phoneError = ""
	case FieldEmail:
		f.email = value
		f.emailError = ""
	default:
		return
	}
	if f.state != StateSubmitting {
		f.setIdle()
	}
}

// Validate checks both fields. On failure the form becomes invalid and focus
// moves to the first bad field, phone before email.
func (f *Form) Validate(now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.phoneError, f.emailError = "", ""
	if !validation.IsValidPhone(f.phone) {
		f.phoneError = msgPhoneInvalid
	}
	if !validation.IsValidEmail(f.email) {
		f.emailError = msgEmailInvalid
	}
	switch {
	case f.phoneError != "":
		f.setTransient(StateInvalid, msgFixPhone, FieldPhone, now)
	case f.emailError != "":
		f.setTransient(StateInvalid, msgFixEmail, FieldEmail, now)
	default:
		return true
	}
	return false
}

// BeginSubmit marks a request in flight. It refuses while another submission
// is pending.
func (f *Form) BeginSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return false
	}
	f.state = StateSubmitting
	f.message = msgSubmitting
	f.focus = FieldNone
	f.expiresAt = time.Time{}
	return true
}

// Succeed clears the fields and returns focus to phone for the next entry.
func (f *Form) Succeed(message string, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message == "" {
		message = msgSent
	}
	f.phone, f.email = "", ""
	f.phoneError, f.emailError = "", ""
	f.setTransient(StateSuccess, message, FieldPhone, now)
}

// Fail shows message, or MsgSubmitFailed when the server gave none (for
// example a network failure with no response). Field values are kept.
func (f *Form) Fail(message string, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if message == "" {
		message = MsgSubmitFailed
	}
	f.setTransient(StateError, message, FieldNone, now)
}

// Reject records a server-side field error, for when the server disagrees
// with local validation.
func (f *Form) Reject(field Field, message string, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case FieldPhone:
		f.phoneError = message
	case FieldEmail:
		f.emailError = message
	default:
		f.setTransient(StateError, orDefault(message), FieldNone, now)
		return
	}
	f.setTransient(StateInvalid, message, field, now)
}

// Tick expires a transient status whose time is up. It reports whether the
// state changed.
func (f *Form) Tick(now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expiresAt.IsZero() || now.Before(f.expiresAt) {
		return false
	}
	f.setIdle()
	return true
}

// AutoClear waits out the current transient status and then clears it.
// Cancelling ctx (teardown) stops the wait without touching the form. It
// returns true if it cleared the status.
func (f *Form) AutoClear(ctx context.Context, clock Clock) bool {
	f.mu.Lock()
	expiresAt := f.expiresAt
	f.mu.Unlock()
	if expiresAt.IsZero() {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	case <-clock.After(expiresAt.Sub(clock.Now())):
	}
	if ctx.Err() != nil {
		return false
	}
	return f.Tick(clock.Now())
}

// Restore rebuilds a form from a flashed status so a redirect can show it
// once.
func Restore(state State, message string, focus Field, now time.Time) *Form {
	f := New()
	switch state {
	case StateSuccess, StateError, StateInvalid:
		f.setTransient(state, message, focus, now)
	}
	return f
}

// must hold f.mu
func (f *Form) setTransient(state State, message string, focus Field, now time.Time) {
	f.state = state
	f.message = message
	f.focus = focus
	f.expiresAt = now.Add(StatusTTL)
}

// must hold f.mu
func (f *Form) setIdle() {
	f.state = StateIdle
	f.message = ""
	f.expiresAt = time.Time{}
}

func orDefault(message string) string {
	if message == "" {
		return MsgSubmitFailed
	}
	return message
}
