package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfisherdev/passpanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/passpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/passpanel/internal/application"
)

const (
	viewHome     = "home"
	viewAdd      = "add"
	viewUpdate   = "update"
	viewDelete   = "delete"
	viewGenerate = "generate"
)

// viewAction handles one request against a view and returns what to render.
type viewAction func(h *Handler, r *http.Request, csrfToken string) viewResult

type view struct {
	title   string
	icon    string
	heading string
	show    viewAction
	submit  viewAction
}

// viewOrder is the sidebar order.
var viewOrder = []string{viewHome, viewAdd, viewUpdate, viewDelete, viewGenerate}

var viewTable = map[string]view{
	viewHome: {
		title:   "Home",
		icon:    "🏠",
		heading: "Find Credential 🔎",
		show:    (*Handler).showHome,
		submit:  (*Handler).submitHome,
	},
	viewAdd: {
		title:   "Add Account",
		icon:    "➕",
		heading: "Add New Credential",
		show:    (*Handler).showAdd,
		submit:  (*Handler).submitAdd,
	},
	viewUpdate: {
		title:   "Update Password",
		icon:    "🔃",
		heading: "Update Password 🔃",
		show:    (*Handler).showUpdate,
		submit:  (*Handler).submitUpdate,
	},
	viewDelete: {
		title:   "Delete Account",
		icon:    "🗑",
		heading: "Delete Credential 🗑",
		show:    (*Handler).showDelete,
		submit:  (*Handler).submitDelete,
	},
	viewGenerate: {
		title:   "Generate Password",
		icon:    "🔐",
		heading: "Password Generator",
		show:    (*Handler).showGenerate,
		submit:  (*Handler).submitGenerate,
	},
}

func viewPath(name string) string {
	return "/view/" + name
}

// summary loads the vault summary. On failure it returns a result the caller
// should render instead of the view.
func (h *Handler) summary(r *http.Request, op string) (*application.Summary, *viewResult) {
	s, err := h.vault.Summary(r.Context())
	if err != nil {
		status, flash := h.outcome(r.Context(), op, "", err)
		return nil, &viewResult{status: status, flash: flash}
	}
	return s, nil
}

// --- Home ---

func (h *Handler) showHome(r *http.Request, csrfToken string) viewResult {
	return h.home(r, csrfToken, http.StatusOK, nil, "", nil)
}

func (h *Handler) submitHome(r *http.Request, csrfToken string) viewResult {
	app := r.PostFormValue("app_name")
	cred, err := h.vault.Reveal(r.Context(), app)
	if err != nil {
		status, flash := h.outcome(r.Context(), "fetch", app, err)
		return h.home(r, csrfToken, status, flash, app, nil)
	}
	return h.home(r, csrfToken, http.StatusOK, nil, app, toCredentialView(cred, h.reveal))
}

func (h *Handler) home(r *http.Request, csrfToken string, status int, flash *vm.Flash, selected string, cred *vm.CredentialView) viewResult {
	s, fail := h.summary(r, "fetch")
	if fail != nil {
		return *fail
	}
	return viewResult{
		status: status,
		flash:  flash,
		content: pages.HomeContent(vm.HomeView{
			AppNames:   s.AppNames,
			Selected:   selectedOrFirst(s.AppNames, selected),
			Credential: cred,
			HelpHTML:   helpHTML(viewHome),
		}, csrfToken),
	}
}

// --- Add ---

func (h *Handler) showAdd(r *http.Request, csrfToken string) viewResult {
	return h.add(r, csrfToken, http.StatusOK, nil, vm.AddView{})
}

func (h *Handler) submitAdd(r *http.Request, csrfToken string) viewResult {
	app := strings.TrimSpace(r.PostFormValue("app_name"))
	user := strings.TrimSpace(r.PostFormValue("user_name"))

	err := h.vault.Add(r.Context(), app, user, r.PostFormValue("password"))
	if err != nil {
		status, flash := h.outcome(r.Context(), "add", app, err)
		// Keep what was typed so a duplicate or missing field is easy to fix.
		return h.add(r, csrfToken, status, flash, vm.AddView{AppName: app, Username: user})
	}

	h.logger.InfoContext(r.Context(), "credential added", "app", app)
	return h.add(r, csrfToken, http.StatusOK, &vm.Flash{
		Kind:    vm.FlashSuccess,
		Message: app + "'s credentials are added successfully to the database!",
	}, vm.AddView{})
}

func (h *Handler) add(r *http.Request, csrfToken string, status int, flash *vm.Flash, form vm.AddView) viewResult {
	s, fail := h.summary(r, "add")
	if fail != nil {
		return *fail
	}
	form.Count = s.Count
	return viewResult{status: status, flash: flash, content: pages.AddContent(form, csrfToken)}
}

// --- Update ---

func (h *Handler) showUpdate(r *http.Request, csrfToken string) viewResult {
	return h.update(r, csrfToken, http.StatusOK, nil, "")
}

func (h *Handler) submitUpdate(r *http.Request, csrfToken string) viewResult {
	app := r.PostFormValue("app_name")

	err := h.vault.ChangePassword(r.Context(), app, r.PostFormValue("password"), r.PostFormValue("confirm_password"))
	if err != nil {
		status, flash := h.outcome(r.Context(), "update", app, err)
		return h.update(r, csrfToken, status, flash, app)
	}

	h.logger.InfoContext(r.Context(), "credential password updated", "app", app)
	return h.update(r, csrfToken, http.StatusOK, &vm.Flash{
		Kind:    vm.FlashSuccess,
		Message: app + "'s password is updated!",
	}, app)
}

func (h *Handler) update(r *http.Request, csrfToken string, status int, flash *vm.Flash, selected string) viewResult {
	s, fail := h.summary(r, "update")
	if fail != nil {
		return *fail
	}
	return viewResult{
		status: status,
		flash:  flash,
		content: pages.UpdateContent(vm.UpdateView{
			AppNames: s.AppNames,
			Selected: selectedOrFirst(s.AppNames, selected),
		}, csrfToken),
	}
}

// --- Delete ---

func (h *Handler) showDelete(r *http.Request, csrfToken string) viewResult {
	return h.remove(r, csrfToken, http.StatusOK, nil, "")
}

func (h *Handler) submitDelete(r *http.Request, csrfToken string) viewResult {
	app := r.PostFormValue("app_name")

	if err := h.vault.Remove(r.Context(), app); err != nil {
		status, flash := h.outcome(r.Context(), "delete", app, err)
		return h.remove(r, csrfToken, status, flash, app)
	}

	h.logger.InfoContext(r.Context(), "credential deleted", "app", app)
	return h.remove(r, csrfToken, http.StatusOK, &vm.Flash{
		Kind:    vm.FlashSuccess,
		Message: app + "'s Credential is successfully removed from database!",
	}, "")
}

func (h *Handler) remove(r *http.Request, csrfToken string, status int, flash *vm.Flash, selected string) viewResult {
	s, fail := h.summary(r, "delete")
	if fail != nil {
		return *fail
	}
	return viewResult{
		status: status,
		flash:  flash,
		content: pages.DeleteContent(vm.DeleteView{
			AppNames: s.AppNames,
			Selected: selectedOrFirst(s.AppNames, selected),
			ShowAll:  r.URL.Query().Get("full") == "1",
		}, csrfToken),
	}
}

// --- Generate ---

func (h *Handler) showGenerate(_ *http.Request, csrfToken string) viewResult {
	return viewResult{
		status:  http.StatusOK,
		content: pages.GenerateContent(generateView(application.DefaultPasswordLength, ""), csrfToken),
	}
}

func (h *Handler) submitGenerate(r *http.Request, csrfToken string) viewResult {
	length := application.DefaultPasswordLength
	if raw := r.PostFormValue("length"); raw != "" {
		// On overflow Atoi returns the nearest bound, which then clamps.
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return viewResult{
				status:  http.StatusBadRequest,
				flash:   &vm.Flash{Kind: vm.FlashError, Message: "Password length must be a number."},
				content: pages.GenerateContent(generateView(length, ""), csrfToken),
			}
		}
		length = application.ClampPasswordLength(n)
	}

	password, err := application.GeneratePassword(length)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "password generation failed", "error", err)
		return viewResult{
			status:  http.StatusInternalServerError,
			flash:   &vm.Flash{Kind: vm.FlashError, Message: "Could not generate a password, please try again."},
			content: pages.GenerateContent(generateView(length, ""), csrfToken),
		}
	}

	return viewResult{
		status:  http.StatusOK,
		content: pages.GenerateContent(generateView(length, password), csrfToken),
	}
}

func generateView(length int, password string) vm.GenerateView {
	v := vm.GenerateView{
		Length:   length,
		Min:      application.MinPasswordLength,
		Max:      application.MaxPasswordLength,
		Password: password,
	}
	if password != "" {
		v.TipHTML = helpHTML(viewGenerate)
	}
	return v
}
