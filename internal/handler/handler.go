// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer, rendering HTML pages,
// redirects, and the certificate download.
package handler

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/session-registration/internal/certificate"
	"github.com/example/session-registration/internal/model"
	"github.com/example/session-registration/internal/repository"
	"github.com/example/session-registration/internal/service"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	msgGeneric          = "Something went wrong. Please try again."
	msgFieldsRequired   = "All fields are required!"
	msgParticipantGone  = "Participant not found!"
	msgUpdated          = "Participant updated successfully!"
	msgDeleted          = "Participant deleted successfully!"
	msgNoCertificate    = "Certificate is not available."
	msgCertificateError = "Could not generate the certificate. Please try again."
)

// RegistrationHandler holds all HTTP handlers for the registration app.
type RegistrationHandler struct {
	svc      *service.RegistrationService
	renderer *certificate.Renderer
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewRegistrationHandler constructs a RegistrationHandler and parses the
// embedded page templates.
func NewRegistrationHandler(svc *service.RegistrationService, renderer *certificate.Renderer, logger *slog.Logger) (*RegistrationHandler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &RegistrationHandler{svc: svc, renderer: renderer, tmpl: tmpl, logger: logger}, nil
}

// ─── Page data ────────────────────────────────────────────────────────────────

type indexData struct {
	Flash    *Flash
	Sessions []model.Session
}

type successData struct {
	Flash       *Flash
	Participant *model.Participant
	SessionName string
	Payment     *model.Payment
}

type participantsData struct {
	Flash        *Flash
	Participants []model.ParticipantView
}

type editData struct {
	Flash       *Flash
	Participant *model.Participant
	Sessions    []model.Session
}

func (h *RegistrationHandler) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render page", "template", name, "error", err)
	}
}

func participantID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Index handles GET /
// Renders the session list with the registration form.
func (h *RegistrationHandler) Index(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListSessions(r.Context())
	if err != nil {
		h.logger.Error("list sessions", "error", err)
		http.Error(w, "failed to load sessions", http.StatusInternalServerError)
		return
	}
	h.renderPage(w, "index.html", indexData{Flash: popFlash(w, r), Sessions: sessions})
}

// Register handles POST /register
// Creates a participant plus a completed payment and redirects to the
// confirmation page. Missing fields redirect back to the form with an error.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, flashError, msgGeneric)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	form := model.RegistrationForm{
		Name:      r.PostFormValue("name"),
		Email:     r.PostFormValue("email"),
		SessionID: r.PostFormValue("session"),
	}

	participant, err := h.svc.Register(r.Context(), form)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			setFlash(w, flashError, msgFieldsRequired)
		} else {
			h.logger.Error("register participant", "error", err)
			setFlash(w, flashError, msgGeneric)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/success/%d", participant.ID), http.StatusSeeOther)
}

// Success handles GET /success/{id}
// Shows the registration confirmation; unknown participants go back to the
// form.
func (h *RegistrationHandler) Success(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	participant, err := h.svc.Participant(r.Context(), id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Error("get participant", "id", id, "error", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	sessionName, err := h.svc.SessionName(r.Context(), participant.SessionID)
	if err != nil {
		h.logger.Error("get session name", "session", participant.SessionID, "error", err)
	}
	payment, err := h.svc.ParticipantPayment(r.Context(), id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.logger.Error("get payment", "participant", id, "error", err)
	}

	h.renderPage(w, "success.html", successData{
		Flash:       popFlash(w, r),
		Participant: participant,
		SessionName: sessionName,
		Payment:     payment,
	})
}

// Participants handles GET /participants
// Lists all participants with session name and payment status.
func (h *RegistrationHandler) Participants(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListParticipants(r.Context())
	if err != nil {
		h.logger.Error("list participants", "error", err)
		setFlash(w, flashError, msgGeneric)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.renderPage(w, "participants.html", participantsData{Flash: popFlash(w, r), Participants: views})
}

// EditForm handles GET /edit/{id}
// Shows the edit form, or redirects to the list when the participant is
// unknown.
func (h *RegistrationHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		http.Redirect(w, r, "/participants", http.StatusFound)
		return
	}
	h.showEditForm(w, r, id, popFlash(w, r))
}

func (h *RegistrationHandler) showEditForm(w http.ResponseWriter, r *http.Request, id int, flash *Flash) {
	participant, err := h.svc.Participant(r.Context(), id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Error("get participant", "id", id, "error", err)
		}
		http.Redirect(w, r, "/participants", http.StatusFound)
		return
	}
	sessions, err := h.svc.ListSessions(r.Context())
	if err != nil {
		h.logger.Error("list sessions", "error", err)
	}
	h.renderPage(w, "edit.html", editData{Flash: flash, Participant: participant, Sessions: sessions})
}

// EditSubmit handles POST /edit/{id}
// Applies the update; success and not-found redirect to the list, missing
// fields re-show the form with an error.
func (h *RegistrationHandler) EditSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		http.Redirect(w, r, "/participants", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		setFlash(w, flashError, msgGeneric)
		http.Redirect(w, r, "/participants", http.StatusSeeOther)
		return
	}

	err = h.svc.UpdateParticipant(r.Context(), id,
		r.PostFormValue("name"), r.PostFormValue("email"), r.PostFormValue("session"))
	switch {
	case err == nil:
		setFlash(w, flashSuccess, msgUpdated)
		http.Redirect(w, r, "/participants", http.StatusSeeOther)
	case errors.Is(err, service.ErrValidation):
		h.showEditForm(w, r, id, &Flash{Level: flashError, Message: msgFieldsRequired})
	case errors.Is(err, repository.ErrNotFound):
		setFlash(w, flashError, msgParticipantGone)
		http.Redirect(w, r, "/participants", http.StatusSeeOther)
	default:
		h.logger.Error("update participant", "id", id, "error", err)
		setFlash(w, flashError, msgGeneric)
		http.Redirect(w, r, "/participants", http.StatusSeeOther)
	}
}

// Delete handles POST /delete/{id}
// Removes the participant and any payment referencing it. Deliberately not
// reachable via GET: destructive actions should not sit behind a plain link.
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		http.Redirect(w, r, "/participants", http.StatusSeeOther)
		return
	}
	if err := h.svc.DeleteParticipant(r.Context(), id); err != nil {
		h.logger.Error("delete participant", "id", id, "error", err)
		setFlash(w, flashError, msgGeneric)
	} else {
		setFlash(w, flashSuccess, msgDeleted)
	}
	http.Redirect(w, r, "/participants", http.StatusSeeOther)
}

// Certificate handles GET /certificate/{id}
// Streams the PNG certificate as an attachment when the participant has a
// completed payment; otherwise redirects with an error flash.
func (h *RegistrationHandler) Certificate(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		setFlash(w, flashError, msgNoCertificate)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	details, err := h.svc.Certificate(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrCertificateUnavailable):
			setFlash(w, flashError, msgNoCertificate)
		default:
			h.logger.Error("certificate lookup", "id", id, "error", err)
			setFlash(w, flashError, msgGeneric)
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	png, err := h.renderer.Render(details.ParticipantName, details.SessionName, details.Date)
	if err != nil {
		h.logger.Error("render certificate", "id", id, "error", err)
		setFlash(w, flashError, msgCertificateError)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", certificate.FileName(details.ParticipantName)))
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
