// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/example/session-registration/internal/model"
	"github.com/example/session-registration/internal/repository"
)

// ErrValidation is returned when required form input is missing.
var ErrValidation = errors.New("validation failed")

// ErrCertificateUnavailable is returned when a certificate is requested for a
// participant without a completed payment.
var ErrCertificateUnavailable = errors.New("certificate unavailable")

// CertificateDetails carries everything the renderer needs for one
// certificate.
type CertificateDetails struct {
	ParticipantName string
	SessionName     string
	Date            string
}

// RegistrationService orchestrates registration, payment, and lookup
// operations.
type RegistrationService struct {
	sessions     *repository.SessionRepository
	participants *repository.ParticipantRepository
	payments     *repository.PaymentRepository
}

// NewRegistrationService constructs a RegistrationService with its
// dependencies.
func NewRegistrationService(
	sessions *repository.SessionRepository,
	participants *repository.ParticipantRepository,
	payments *repository.PaymentRepository,
) *RegistrationService {
	return &RegistrationService{sessions: sessions, participants: participants, payments: payments}
}

// ListSessions returns all sessions.
func (s *RegistrationService) ListSessions(ctx context.Context) ([]model.Session, error) {
	return s.sessions.List(ctx)
}

// SessionName returns the name of the session, or "" when the id is unknown.
// An unknown id is not an error.
func (s *RegistrationService) SessionName(ctx context.Context, id string) (string, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return session.Name, nil
}

// SessionPrice returns the price of the session, or 0 when the id is unknown.
func (s *RegistrationService) SessionPrice(ctx context.Context, id string) (float64, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return session.Price, nil
}

// Register creates a participant and immediately records a completed payment
// at the session's current price. The session reference is not validated
// against the catalogue; an unknown session yields a zero-amount payment.
func (s *RegistrationService) Register(ctx context.Context, form model.RegistrationForm) (*model.Participant, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.SessionID = strings.TrimSpace(form.SessionID)
	if form.Name == "" || form.Email == "" || form.SessionID == "" {
		return nil, fmt.Errorf("%w: name, email, and session are required", ErrValidation)
	}

	participant, err := s.participants.Create(ctx, form.Name, form.Email, form.SessionID)
	if err != nil {
		return nil, fmt.Errorf("register participant: %w", err)
	}

	price, err := s.SessionPrice(ctx, form.SessionID)
	if err != nil {
		return nil, fmt.Errorf("look up session price: %w", err)
	}
	if _, err := s.payments.Create(ctx, participant.ID, price); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return participant, nil
}

// Participant returns the participant with the given id.
func (s *RegistrationService) Participant(ctx context.Context, id int) (*model.Participant, error) {
	return s.participants.GetByID(ctx, id)
}

// ParticipantPayment returns the first payment referencing the participant.
func (s *RegistrationService) ParticipantPayment(ctx context.Context, id int) (*model.Payment, error) {
	return s.payments.GetByParticipant(ctx, id)
}

// ListParticipants returns all participants enriched with their session name
// and payment record.
func (s *RegistrationService) ListParticipants(ctx context.Context) ([]model.ParticipantView, error) {
	participants, err := s.participants.List(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(sessions))
	for _, session := range sessions {
		names[session.ID] = session.Name
	}
	byParticipant := make(map[int]*model.Payment, len(payments))
	for i := range payments {
		p := payments[i]
		if _, ok := byParticipant[p.ParticipantID]; !ok {
			byParticipant[p.ParticipantID] = &p
		}
	}

	views := make([]model.ParticipantView, 0, len(participants))
	for _, participant := range participants {
		views = append(views, model.ParticipantView{
			Participant: participant,
			SessionName: names[participant.SessionID],
			Payment:     byParticipant[participant.ID],
		})
	}
	return views, nil
}

// UpdateParticipant mutates name, email, and session of the participant in
// place. RegistrationDate is untouched. Returns ErrValidation for missing
// input and repository.ErrNotFound for an unknown id.
func (s *RegistrationService) UpdateParticipant(ctx context.Context, id int, name, email, sessionID string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	sessionID = strings.TrimSpace(sessionID)
	if name == "" || email == "" || sessionID == "" {
		return fmt.Errorf("%w: name, email, and session are required", ErrValidation)
	}
	return s.participants.Update(ctx, id, name, email, sessionID)
}

// DeleteParticipant removes the participant and every payment referencing it.
// Both tables are rewritten whether or not a payment existed; participants
// first, then payments.
func (s *RegistrationService) DeleteParticipant(ctx context.Context, id int) error {
	if err := s.participants.Delete(ctx, id); err != nil {
		return err
	}
	return s.payments.DeleteByParticipant(ctx, id)
}

// Certificate returns the data for the participant's completion certificate.
// It fails with repository.ErrNotFound when the participant is unknown and
// ErrCertificateUnavailable when no completed payment exists.
func (s *RegistrationService) Certificate(ctx context.Context, id int) (*CertificateDetails, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payment, err := s.payments.GetByParticipant(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCertificateUnavailable
		}
		return nil, err
	}
	if !payment.Completed() {
		return nil, ErrCertificateUnavailable
	}

	sessionName, err := s.SessionName(ctx, participant.SessionID)
	if err != nil {
		return nil, err
	}
	return &CertificateDetails{
		ParticipantName: participant.Name,
		SessionName:     sessionName,
		Date:            participant.RegistrationDate,
	}, nil
}

// ValidatePayment reports whether amount matches the session's price within a
// one-cent epsilon. It is not part of the payment-creation path.
func (s *RegistrationService) ValidatePayment(ctx context.Context, amount float64, sessionID string) (bool, error) {
	price, err := s.SessionPrice(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return math.Abs(amount-price) < 0.01, nil
}
