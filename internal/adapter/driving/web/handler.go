// Package web implements the HTML GUI driving adapter using templ components.
// Each sidebar view is one entry of a dispatch table keyed by view name.
package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/passpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/passpanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/passpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/passpanel/internal/application"
	"github.com/ericfisherdev/passpanel/internal/domain/port/driven"
)

const (
	sessionCookieName = "passpanel_session"
	pageTitle         = "My Password Manager"
)

// Handler is the web GUI driving adapter.
type Handler struct {
	vault    *application.VaultService
	gate     *application.Gate
	sessions *application.Sessions
	reveal   bool
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. reveal renders
// decrypted passwords as plain text instead of masked fields.
func NewHandler(
	vault *application.VaultService,
	gate *application.Gate,
	sessions *application.Sessions,
	reveal bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		vault:    vault,
		gate:     gate,
		sessions: sessions,
		reveal:   reveal,
		logger:   logger,
	}
}

// viewResult is what a view handler hands back for rendering.
type viewResult struct {
	status  int
	flash   *vm.Flash
	content templ.Component
}

// Index redirects to the home view.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, viewPath(viewHome), http.StatusSeeOther)
}

// ShowView renders the view named in the path.
func (h *Handler) ShowView(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, false)
}

// SubmitView runs the form action of the view named in the path.
func (h *Handler) SubmitView(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}
	h.dispatch(w, r, true)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, submit bool) {
	name := r.PathValue("name")
	v, ok := viewTable[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	token := csrfToken(w, r)
	action := v.show
	if submit {
		action = v.submit
	}
	res := action(h, r, token)

	h.render(w, r, res.status, vm.Layout{
		Title:     v.title + " · " + pageTitle,
		Heading:   v.heading,
		CSRFToken: token,
		Nav:       navItems(name),
		Unlocked:  true,
		Flash:     res.flash,
	}, res.content)
}

// SetupPage renders the first-run master password form.
func (h *Handler) SetupPage(w http.ResponseWriter, r *http.Request) {
	configured, err := h.gate.Configured(r.Context())
	if err != nil {
		h.fail(w, "failed to check master key", err)
		return
	}
	if configured {
		http.Redirect(w, r, "/unlock", http.StatusSeeOther)
		return
	}
	h.renderGate(w, r, http.StatusOK, true, nil)
}

// Setup persists the master password and unlocks the vault.
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	err := h.gate.Setup(r.Context(), r.PostFormValue("master_password"), r.PostFormValue("confirm_master_password"))
	switch {
	case errors.Is(err, application.ErrPassphraseEmpty), errors.Is(err, application.ErrPassphraseMismatch):
		h.renderGate(w, r, http.StatusBadRequest, true, &vm.Flash{
			Kind:    vm.FlashError,
			Message: "Please check, Passwords do not match or are empty!",
		})
		return
	case errors.Is(err, application.ErrAlreadyConfigured):
		http.Redirect(w, r, "/unlock", http.StatusSeeOther)
		return
	case err != nil:
		h.fail(w, "failed to set up master password", err)
		return
	}

	h.logger.Info("master password set up")
	h.startSession(w, r)
}

// UnlockPage renders the master password prompt.
func (h *Handler) UnlockPage(w http.ResponseWriter, r *http.Request) {
	configured, err := h.gate.Configured(r.Context())
	if err != nil {
		h.fail(w, "failed to check master key", err)
		return
	}
	if !configured {
		http.Redirect(w, r, "/setup", http.StatusSeeOther)
		return
	}
	h.renderGate(w, r, http.StatusOK, false, nil)
}

// Unlock verifies the master password and starts a session.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	ok, err := h.gate.Verify(r.Context(), r.PostFormValue("master_password"))
	if errors.Is(err, driven.ErrMasterKeyNotSet) {
		http.Redirect(w, r, "/setup", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, "failed to verify master password", err)
		return
	}
	if !ok {
		h.logger.Warn("master password rejected")
		h.renderGate(w, r, http.StatusUnauthorized, false, &vm.Flash{
			Kind:    vm.FlashError,
			Message: "Wrong master password.",
		})
		return
	}

	h.startSession(w, r)
}

// Lock ends the session.
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/unlock", http.StatusSeeOther)
}

// requireUnlocked sends the browser to /setup before first run and to
// /unlock without a valid session. Every view goes through it.
func (h *Handler) requireUnlocked(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configured, err := h.gate.Configured(r.Context())
		if err != nil {
			h.fail(w, "failed to check master key", err)
			return
		}
		if !configured {
			http.Redirect(w, r, "/setup", http.StatusSeeOther)
			return
		}

		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || h.sessions.Validate(cookie.Value) != nil {
			http.Redirect(w, r, "/unlock", http.StatusSeeOther)
			return
		}

		next(w, r)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	token, expires, err := h.sessions.Issue()
	if err != nil {
		h.fail(w, "failed to issue session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, viewPath(viewHome), http.StatusSeeOther)
}

func (h *Handler) renderGate(w http.ResponseWriter, r *http.Request, status int, setup bool, flash *vm.Flash) {
	token := csrfToken(w, r)
	gv := vm.GateView{Action: "/unlock", Setup: setup}
	heading := "Unlock"
	if setup {
		gv.Action = "/setup"
		heading = "Setup Master Password"
	}

	h.render(w, r, status, vm.Layout{
		Title:     heading + " · " + pageTitle,
		Heading:   heading,
		CSRFToken: token,
		Flash:     flash,
	}, pages.GateForm(gv, token))
}

// render buffers the page so a template failure can still become a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, layout vm.Layout, content templ.Component) {
	var buf bytes.Buffer
	if err := templates.Layout(layout, content).Render(r.Context(), &buf); err != nil {
		h.fail(w, "failed to render page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Pages may contain decrypted passwords.
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// outcome maps an operation error to a status and flash. Storage failures
// get one generic message per operation; the cause is only logged.
func (h *Handler) outcome(ctx context.Context, op, app string, err error) (int, *vm.Flash) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, &vm.Flash{Kind: vm.FlashError, Message: validationMessage(verr)}
	case errors.Is(err, driven.ErrCredentialExists):
		return http.StatusConflict, &vm.Flash{Kind: vm.FlashWarning, Message: app + " already has a stored credential."}
	case errors.Is(err, driven.ErrCredentialNotFound):
		return http.StatusNotFound, &vm.Flash{Kind: vm.FlashWarning, Message: "No credential is stored for " + app + "."}
	case errors.Is(err, driven.ErrDecrypt):
		h.logger.ErrorContext(ctx, "stored password cannot be decrypted", "op", op, "app", app, "error", err)
		return http.StatusInternalServerError, &vm.Flash{
			Kind:    vm.FlashError,
			Message: "The stored password for " + app + " cannot be decrypted with the configured key.",
		}
	default:
		h.logger.ErrorContext(ctx, "credential operation failed", "op", op, "app", app, "error", err)
		return http.StatusInternalServerError, &vm.Flash{Kind: vm.FlashWarning, Message: genericFailure[op]}
	}
}

var genericFailure = map[string]string{
	"add":    "Uh-Oh! Something went wrong, please try again",
	"update": "There was a problem updating the database, please try again!",
	"delete": "An error occurred, please try again.",
	"fetch":  "Could not read the database, please try again.",
}

func validationMessage(verr *application.ValidationError) string {
	if verr.Field == "confirm" {
		return "Passwords don't match! Try again."
	}
	return verr.Message
}
