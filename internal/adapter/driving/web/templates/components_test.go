package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "github.com/ericfisherdev/passpanel/internal/adapter/driving/web/viewmodel"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestFlashMessage_EscapesMessage(t *testing.T) {
	out := render(t, FlashMessage(vm.Flash{Kind: vm.FlashWarning, Message: "<b>x</b>"}))

	assert.Equal(t, `<div role="status" class="flash" data-kind="warning">&lt;b&gt;x&lt;/b&gt;</div>`, out)
}

func TestCSRFField(t *testing.T) {
	out := render(t, CSRFField(`a"b`))

	assert.Equal(t, `<input type="hidden" name="csrf_token" value="a&#34;b">`, out)
}

func TestSelectBox_MarksSelected(t *testing.T) {
	out := render(t, SelectBox("app_name", "Pick", []string{"Bank", "Mail"}, "Mail"))

	assert.Contains(t, out, `<option value="Bank">Bank</option>`)
	assert.Contains(t, out, `<option value="Mail" selected>Mail</option>`)
}

func TestField_OmitsEmptyAttributes(t *testing.T) {
	out := render(t, Field("password", "password", "Password", "", ""))
	assert.Contains(t, out, `<input type="password" id="password" name="password">`)

	out = render(t, Field("text", "app_name", "App", "Git<Hub>", "Facebook"))
	assert.Contains(t, out, `value="Git&lt;Hub&gt;" placeholder="Facebook">`)
}

func TestLayout_LockedHidesSidebar(t *testing.T) {
	out := render(t, Layout(vm.Layout{Title: "Unlock", Heading: "Unlock"}, nil))

	assert.Contains(t, out, "<title>Unlock</title>")
	assert.Contains(t, out, "<h2>Unlock</h2>")
	assert.NotContains(t, out, "<aside>")
	assert.NotContains(t, out, `action="/lock"`)
}

func TestLayout_UnlockedRendersNavAndContent(t *testing.T) {
	l := vm.Layout{
		Title:     "Home",
		CSRFToken: "tok",
		Unlocked:  true,
		Nav: []vm.NavItem{
			{Title: "Home", Icon: "🏠", URL: "/view/home", Active: true},
			{Title: "Add Account", Icon: "➕", URL: "/view/add"},
		},
		Flash: &vm.Flash{Kind: vm.FlashSuccess, Message: "done"},
	}

	out := render(t, Layout(l, templ.Raw("<p>body</p>")))

	assert.Contains(t, out, `<a href="/view/home" class="active">🏠 Home</a>`)
	assert.Contains(t, out, `<a href="/view/add">➕ Add Account</a>`)
	assert.Contains(t, out, `<input type="hidden" name="csrf_token" value="tok">`)
	assert.Contains(t, out, `data-kind="success">done</div><p>body</p></main>`)
}
