package handler

import (
	"net/http"
	"net/url"
	"strings"
)

const flashCookie = "flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flash is a one-shot user-facing message carried across a redirect.
type Flash struct {
	Level   string
	Message string
}

// setFlash stores a flash message in a short-lived cookie, shown on the next
// rendered page.
func setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(level + "|" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

// popFlash reads and clears the flash cookie. Returns nil when no flash is
// pending.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(raw, "|")
	if !ok || message == "" {
		return nil
	}
	return &Flash{Level: level, Message: message}
}
