package web

import (
	vm "github.com/ericfisherdev/passpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/passpanel/internal/application"
)

// toCredentialView converts a revealed credential for display.
func toCredentialView(cred *application.RevealedCredential, reveal bool) *vm.CredentialView {
	if cred == nil {
		return nil
	}
	return &vm.CredentialView{
		AppName:  cred.AppName,
		Username: cred.Username,
		Password: cred.Password,
		Reveal:   reveal,
	}
}

// navItems builds the sidebar menu in dispatch-table order, marking active.
func navItems(active string) []vm.NavItem {
	items := make([]vm.NavItem, 0, len(viewOrder))
	for _, name := range viewOrder {
		v := viewTable[name]
		items = append(items, vm.NavItem{
			Title:  v.title,
			Icon:   v.icon,
			URL:    viewPath(name),
			Active: name == active,
		})
	}
	return items
}

// selectedOrFirst keeps the user's selection when it still exists, otherwise
// falls back to the first name so a select box always has a value.
func selectedOrFirst(names []string, selected string) string {
	for _, n := range names {
		if n == selected {
			return selected
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}
