// Package viewmodel defines presentation-ready structs for the templ components.
// View models decouple rendering from application and domain types.
package viewmodel

// FlashKind selects the styling of a Flash.
type FlashKind string

// Flash kinds, matching the outcome categories of a form submission.
const (
	FlashSuccess FlashKind = "success"
	FlashInfo    FlashKind = "info"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown above the view content.
type Flash struct {
	Kind    FlashKind
	Message string
}

// NavItem is one entry of the sidebar menu.
type NavItem struct {
	Title  string
	Icon   string
	URL    string
	Active bool
}

// Layout holds everything the page chrome needs.
type Layout struct {
	Title     string
	Heading   string
	CSRFToken string
	Nav       []NavItem // empty while locked
	Unlocked  bool
	Flash     *Flash
}

// CredentialView is a revealed credential. Reveal renders the password as
// plain text instead of a masked field.
type CredentialView struct {
	AppName  string
	Username string
	Password string
	Reveal   bool
}

// HomeView is the lookup view.
type HomeView struct {
	AppNames   []string
	Selected   string
	Credential *CredentialView
	HelpHTML   string
}

// AddView is the add-account form.
type AddView struct {
	Count    int
	AppName  string
	Username string
}

// UpdateView is the change-password form.
type UpdateView struct {
	AppNames []string
	Selected string
}

// DeleteView is the delete-account form. ShowAll lists every stored
// application name above the form.
type DeleteView struct {
	AppNames []string
	Selected string
	ShowAll  bool
}

// GenerateView is the password generator.
type GenerateView struct {
	Length   int
	Min      int
	Max      int
	Password string
	TipHTML  string
}

// GateView backs the setup and unlock forms.
type GateView struct {
	Action string
	Setup  bool
}
