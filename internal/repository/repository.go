// Package repository implements typed access to the three CSV tables.
// It maps between domain structs and the text rows the store deals in.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/example/session-registration/internal/model"
	"github.com/example/session-registration/internal/store"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

// SessionRepository handles persistence for sessions.
type SessionRepository struct {
	store *store.Store
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(s *store.Store) *SessionRepository {
	return &SessionRepository{store: s}
}

// List returns all sessions in file order.
func (r *SessionRepository) List(ctx context.Context) ([]model.Session, error) {
	rows, err := r.store.Load(store.Sessions)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions := make([]model.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, decodeSession(row))
	}
	return sessions, nil
}

// GetByID returns the first session with the given id or ErrNotFound.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	rows, err := r.store.Load(store.Sessions)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	for _, row := range rows {
		if row["id"] == id {
			s := decodeSession(row)
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// ParticipantRepository handles persistence for participants.
type ParticipantRepository struct {
	store *store.Store
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(s *store.Store) *ParticipantRepository {
	return &ParticipantRepository{store: s}
}

// Create appends a new participant with the next sequential id and today's
// date, and returns it.
func (r *ParticipantRepository) Create(ctx context.Context, name, email, sessionID string) (*model.Participant, error) {
	id, err := r.store.NextID(ctx, store.Participants)
	if err != nil {
		return nil, fmt.Errorf("assign participant id: %w", err)
	}
	p := &model.Participant{
		ID:               id,
		Name:             name,
		Email:            email,
		SessionID:        sessionID,
		RegistrationDate: time.Now().Format(dateLayout),
	}
	if err := r.store.Append(ctx, store.Participants, encodeParticipant(p)); err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	return p, nil
}

// List returns all participants in file order.
func (r *ParticipantRepository) List(ctx context.Context) ([]model.Participant, error) {
	rows, err := r.store.Load(store.Participants)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	participants := make([]model.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, decodeParticipant(row))
	}
	return participants, nil
}

// GetByID returns the first participant with the given id or ErrNotFound.
func (r *ParticipantRepository) GetByID(ctx context.Context, id int) (*model.Participant, error) {
	rows, err := r.store.Load(store.Participants)
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	want := strconv.Itoa(id)
	for _, row := range rows {
		if row["id"] == want {
			p := decodeParticipant(row)
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Update mutates name, email, and session of the matching participant in
// place and rewrites the table. RegistrationDate is preserved. Returns
// ErrNotFound without writing when the id is absent.
func (r *ParticipantRepository) Update(ctx context.Context, id int, name, email, sessionID string) error {
	rows, err := r.store.Load(store.Participants)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	want := strconv.Itoa(id)
	found := false
	for _, row := range rows {
		if row["id"] == want {
			row["name"] = name
			row["email"] = email
			row["session"] = sessionID
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	if err := r.store.RewriteAll(ctx, store.Participants, rows); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return nil
}

// Delete removes the matching participant row and rewrites the table. The
// rewrite happens whether or not the id was present.
func (r *ParticipantRepository) Delete(ctx context.Context, id int) error {
	rows, err := r.store.Load(store.Participants)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	want := strconv.Itoa(id)
	remaining := rows[:0]
	for _, row := range rows {
		if row["id"] != want {
			remaining = append(remaining, row)
		}
	}
	if err := r.store.RewriteAll(ctx, store.Participants, remaining); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

// PaymentRepository handles persistence for payments.
type PaymentRepository struct {
	store *store.Store
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(s *store.Store) *PaymentRepository {
	return &PaymentRepository{store: s}
}

// Create appends a completed payment for the participant with the next
// sequential id and today's date.
func (r *PaymentRepository) Create(ctx context.Context, participantID int, amount float64) (*model.Payment, error) {
	id, err := r.store.NextID(ctx, store.Payments)
	if err != nil {
		return nil, fmt.Errorf("assign payment id: %w", err)
	}
	p := &model.Payment{
		ID:            id,
		ParticipantID: participantID,
		Amount:        amount,
		PaymentDate:   time.Now().Format(dateLayout),
		Status:        model.PaymentCompleted,
	}
	if err := r.store.Append(ctx, store.Payments, encodePayment(p)); err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return p, nil
}

// List returns all payments in file order.
func (r *PaymentRepository) List(ctx context.Context) ([]model.Payment, error) {
	rows, err := r.store.Load(store.Payments)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	payments := make([]model.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, decodePayment(row))
	}
	return payments, nil
}

// GetByParticipant returns the first payment referencing the participant or
// ErrNotFound.
func (r *PaymentRepository) GetByParticipant(ctx context.Context, participantID int) (*model.Payment, error) {
	rows, err := r.store.Load(store.Payments)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	want := strconv.Itoa(participantID)
	for _, row := range rows {
		if row["participant_id"] == want {
			p := decodePayment(row)
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// DeleteByParticipant removes every payment referencing the participant and
// rewrites the table, whether or not any existed.
func (r *PaymentRepository) DeleteByParticipant(ctx context.Context, participantID int) error {
	rows, err := r.store.Load(store.Payments)
	if err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	want := strconv.Itoa(participantID)
	remaining := rows[:0]
	for _, row := range rows {
		if row["participant_id"] != want {
			remaining = append(remaining, row)
		}
	}
	if err := r.store.RewriteAll(ctx, store.Payments, remaining); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	return nil
}

// ─── Row codecs ───────────────────────────────────────────────────────────────

func decodeSession(row store.Row) model.Session {
	capacity, _ := strconv.Atoi(row["capacity"])
	price, _ := strconv.ParseFloat(row["price"], 64)
	return model.Session{
		ID:       row["id"],
		Name:     row["name"],
		Date:     row["date"],
		Capacity: capacity,
		Price:    price,
	}
}

func decodeParticipant(row store.Row) model.Participant {
	id, _ := strconv.Atoi(row["id"])
	return model.Participant{
		ID:               id,
		Name:             row["name"],
		Email:            row["email"],
		SessionID:        row["session"],
		RegistrationDate: row["registration_date"],
	}
}

func encodeParticipant(p *model.Participant) store.Row {
	return store.Row{
		"id":                strconv.Itoa(p.ID),
		"name":              p.Name,
		"email":             p.Email,
		"session":           p.SessionID,
		"registration_date": p.RegistrationDate,
	}
}

func decodePayment(row store.Row) model.Payment {
	id, _ := strconv.Atoi(row["id"])
	participantID, _ := strconv.Atoi(row["participant_id"])
	amount, _ := strconv.ParseFloat(row["amount"], 64)
	return model.Payment{
		ID:            id,
		ParticipantID: participantID,
		Amount:        amount,
		PaymentDate:   row["payment_date"],
		Status:        row["status"],
	}
}

func encodePayment(p *model.Payment) store.Row {
	return store.Row{
		"id":             strconv.Itoa(p.ID),
		"participant_id": strconv.Itoa(p.ParticipantID),
		"amount":         model.FormatAmount(p.Amount),
		"payment_date":   p.PaymentDate,
		"status":         p.Status,
	}
}
