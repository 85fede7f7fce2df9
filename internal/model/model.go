// Package model defines the core domain types for the session registration system.
package model

import "strconv"

// PaymentCompleted is the only status the system ever writes for a payment.
const PaymentCompleted = "completed"

// Session represents a bookable training session. Sessions are seeded once
// and immutable through this system; there are no edit or delete routes.
type Session struct {
	ID       string
	Name     string
	Date     string // YYYY-MM-DD
	Capacity int
	Price    float64
}

// PriceText renders the price the way it is stored on disk.
func (s *Session) PriceText() string {
	return FormatAmount(s.Price)
}

// Participant represents a person registered for exactly one session.
// SessionID is a plain string reference; it is not validated against the
// sessions table.
type Participant struct {
	ID               int
	Name             string
	Email            string
	SessionID        string
	RegistrationDate string // YYYY-MM-DD, set at creation
}

// Payment records the flat-rate charge created alongside a registration.
type Payment struct {
	ID            int
	ParticipantID int
	Amount        float64
	PaymentDate   string // YYYY-MM-DD
	Status        string
}

// Completed reports whether the payment has the completed status.
func (p *Payment) Completed() bool {
	return p.Status == PaymentCompleted
}

// RegistrationForm is the payload of the public registration form.
type RegistrationForm struct {
	Name      string
	Email     string
	SessionID string
}

// ParticipantView is a participant enriched with the joined session name and
// payment record for list rendering. Payment is nil when no payment row
// references the participant.
type ParticipantView struct {
	Participant
	SessionName string
	Payment     *Payment
}

// FormatAmount renders a monetary amount using the shortest decimal text that
// round-trips, so a price read as "79.99" is written back as "79.99".
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
