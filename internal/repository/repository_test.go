package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/session-registration/internal/model"
	"github.com/example/session-registration/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	seed := []store.Row{
		{"id": "1", "name": "Web Development Basics", "date": "2024-04-01", "capacity": "30", "price": "99.99"},
		{"id": "2", "name": "Python for Beginners", "date": "2024-04-02", "capacity": "25", "price": "79.99"},
		{"id": "3", "name": "Data Science Introduction", "date": "2024-04-03", "capacity": "20", "price": "149.99"},
	}
	s := store.New(t.TempDir(), seed)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestStore(t))

	t.Run("list returns seeded sessions in order", func(t *testing.T) {
		sessions, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(sessions) != 3 {
			t.Fatalf("got %d sessions, want 3", len(sessions))
		}
		second := sessions[1]
		if second.Name != "Python for Beginners" || second.Price != 79.99 || second.Capacity != 25 {
			t.Errorf("unexpected session: %+v", second)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		session, err := repo.GetByID(ctx, "3")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if session.Name != "Data Science Introduction" {
			t.Errorf("name = %q", session.Name)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "99"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestParticipantRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := NewParticipantRepository(s)

	t.Run("create assigns sequential ids and today's date", func(t *testing.T) {
		today := time.Now().Format("2006-01-02")
		p, err := repo.Create(ctx, "Alice", "a@x.com", "2")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.ID != 1 {
			t.Errorf("id = %d, want 1", p.ID)
		}
		if p.RegistrationDate != today {
			t.Errorf("registration date = %q, want %q", p.RegistrationDate, today)
		}

		q, err := repo.Create(ctx, "Bob", "b@x.com", "1")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if q.ID != 2 {
			t.Errorf("second id = %d, want 2", q.ID)
		}
	})

	t.Run("get round-trips fields", func(t *testing.T) {
		p, err := repo.GetByID(ctx, 1)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if p.Name != "Alice" || p.Email != "a@x.com" || p.SessionID != "2" {
			t.Errorf("unexpected participant: %+v", p)
		}
	})

	t.Run("update mutates only name email session", func(t *testing.T) {
		before, _ := repo.GetByID(ctx, 1)
		if err := repo.Update(ctx, 1, "Alice B", "ab@x.com", "3"); err != nil {
			t.Fatalf("Update: %v", err)
		}
		after, err := repo.GetByID(ctx, 1)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if after.Name != "Alice B" || after.Email != "ab@x.com" || after.SessionID != "3" {
			t.Errorf("fields not updated: %+v", after)
		}
		if after.RegistrationDate != before.RegistrationDate {
			t.Errorf("registration date changed: %q -> %q", before.RegistrationDate, after.RegistrationDate)
		}
	})

	t.Run("update unknown id writes nothing", func(t *testing.T) {
		if err := repo.Update(ctx, 99, "X", "x@x.com", "1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		all, _ := repo.List(ctx)
		if len(all) != 2 {
			t.Errorf("row count changed: %d", len(all))
		}
	})

	t.Run("delete removes only the target", func(t *testing.T) {
		if err := repo.Delete(ctx, 1); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		all, _ := repo.List(ctx)
		if len(all) != 1 || all[0].ID != 2 {
			t.Errorf("unexpected rows after delete: %+v", all)
		}
		if _, err := repo.GetByID(ctx, 1); !errors.Is(err, ErrNotFound) {
			t.Errorf("deleted participant still found, err = %v", err)
		}
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		p, err := repo.Create(ctx, "Carol", "c@x.com", "1")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.ID != 3 {
			t.Errorf("id = %d, want 3", p.ID)
		}
	})
}

func TestPaymentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newTestStore(t))

	t.Run("create records completed payment", func(t *testing.T) {
		p, err := repo.Create(ctx, 1, 79.99)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.ID != 1 || p.ParticipantID != 1 || p.Amount != 79.99 {
			t.Errorf("unexpected payment: %+v", p)
		}
		if p.Status != model.PaymentCompleted {
			t.Errorf("status = %q, want %q", p.Status, model.PaymentCompleted)
		}
	})

	t.Run("amount text round-trips", func(t *testing.T) {
		got, err := repo.GetByParticipant(ctx, 1)
		if err != nil {
			t.Fatalf("GetByParticipant: %v", err)
		}
		if got.Amount != 79.99 {
			t.Errorf("amount = %v, want 79.99", got.Amount)
		}
	})

	t.Run("missing payment", func(t *testing.T) {
		if _, err := repo.GetByParticipant(ctx, 42); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete by participant removes every reference", func(t *testing.T) {
		if _, err := repo.Create(ctx, 2, 99.99); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.DeleteByParticipant(ctx, 1); err != nil {
			t.Fatalf("DeleteByParticipant: %v", err)
		}
		if _, err := repo.GetByParticipant(ctx, 1); !errors.Is(err, ErrNotFound) {
			t.Errorf("payment for 1 survived, err = %v", err)
		}
		if _, err := repo.GetByParticipant(ctx, 2); err != nil {
			t.Errorf("payment for 2 lost: %v", err)
		}
	})
}
