package web

import (
	"context"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/passpanel/internal/adapter/driven/cipher"
	"github.com/ericfisherdev/passpanel/internal/adapter/driven/keyfile"
	"github.com/ericfisherdev/passpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/passpanel/internal/application"
	"github.com/ericfisherdev/passpanel/internal/domain/model"
)

const testMaster = "correct horse battery staple"

// --- Test helpers ---

type testClient struct {
	t      *testing.T
	db     *sqlite.DB
	srv    *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T, reveal bool) *testClient {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.NewDB(context.Background(), filepath.Join(dir, "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.RunMigrations(db.Writer))

	key := make([]byte, cipher.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	c, err := cipher.NewAESGCM(key)
	require.NoError(t, err)

	sessions, err := application.NewSessions(time.Minute)
	require.NoError(t, err)

	h := NewHandler(
		application.NewVaultService(sqlite.NewCredentialRepo(db), c),
		application.NewGate(keyfile.NewStore(filepath.Join(dir, "master.json"))),
		sessions,
		reveal,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t:   t,
		db:  db,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) get(path string) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.client.Get(c.srv.URL + path)
	require.NoError(c.t, err)
	return resp, readBody(c.t, resp)
}

// post submits a form with the CSRF token from the cookie jar.
func (c *testClient) post(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get(csrfFormField) == "" {
		form.Set(csrfFormField, c.cookie(csrfCookieName))
	}
	resp, err := c.client.PostForm(c.srv.URL+path, form)
	require.NoError(c.t, err)
	return resp, readBody(c.t, resp)
}

func (c *testClient) cookie(name string) string {
	u, _ := url.Parse(c.srv.URL)
	for _, ck := range c.client.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// setup runs first-run setup and leaves the client unlocked.
func (c *testClient) setup() {
	c.t.Helper()
	c.get("/setup")
	resp, _ := c.post("/setup", url.Values{
		"master_password":         {testMaster},
		"confirm_master_password": {testMaster},
	})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(c.t, "/view/home", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// --- Gate ---

func TestGate_FirstRunRedirectsToSetup(t *testing.T) {
	c := newTestServer(t, false)

	for _, path := range []string{"/", "/view/home", "/view/generate", "/unlock"} {
		resp, _ := c.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/setup", resp.Header.Get("Location"), path)
	}
}

func TestGate_SetupRejectsMismatch(t *testing.T) {
	c := newTestServer(t, false)
	c.get("/setup")

	resp, body := c.post("/setup", url.Values{
		"master_password":         {"one"},
		"confirm_master_password": {"two"},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Passwords do not match or are empty")

	resp, _ = c.get("/view/home")
	assert.Equal(t, "/setup", resp.Header.Get("Location"), "nothing persisted")
}

func TestGate_SetupThenHome(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, body := c.get("/view/home")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, "My Password Manager")
	assert.Contains(t, body, "Database is empty.")

	resp, _ = c.get("/setup")
	assert.Equal(t, "/unlock", resp.Header.Get("Location"), "setup is first-run only")
}

func TestGate_SessionCookieFollowsTTL(t *testing.T) {
	c := newTestServer(t, false)
	c.get("/setup")

	resp, _ := c.post("/setup", url.Values{
		"master_password":         {testMaster},
		"confirm_master_password": {testMaster},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.Equal(t, int(time.Minute.Seconds()), session.MaxAge)
	assert.True(t, session.HttpOnly)
}

func TestGate_LockAndUnlock(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, _ := c.post("/lock", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = c.get("/view/add")
	assert.Equal(t, "/unlock", resp.Header.Get("Location"))

	resp, body := c.post("/unlock", url.Values{"master_password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Wrong master password.")

	resp, _ = c.post("/unlock", url.Values{"master_password": {testMaster}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = c.get("/view/add")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGate_ForgedSessionRejected(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	u, _ := url.Parse(c.srv.URL)
	c.client.Jar.SetCookies(u, []*http.Cookie{{Name: sessionCookieName, Value: "not.a.token", Path: "/"}})

	resp, _ := c.get("/view/home")
	assert.Equal(t, "/unlock", resp.Header.Get("Location"))
}

func TestCSRF_ForgedTokenRejected(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, _ := c.post("/view/add", url.Values{
		csrfFormField: {"forged"},
		"app_name":    {"GitHub"},
		"user_name":   {"dev@x.com"},
		"password":    {"hunter2"},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, body := c.get("/view/add")
	assert.Contains(t, body, "Available credentials in database: 0")
}

func TestUnknownView(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, _ := c.get("/view/settings")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// --- Views ---

func TestViews_CredentialLifecycle(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, body := c.post("/view/add", url.Values{
		"app_name":  {"GitHub"},
		"user_name": {"dev@x.com"},
		"password":  {"hunter2"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "GitHub&#39;s credentials are added successfully to the database!")
	assert.Contains(t, body, "Available credentials in database: 1")

	resp, body = c.post("/view/add", url.Values{
		"app_name":  {"GitHub"},
		"user_name": {"other"},
		"password":  {"x"},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "already has a stored credential")
	assert.Contains(t, body, "Available credentials in database: 1")

	resp, body = c.post("/view/home", url.Values{"app_name": {"GitHub"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "dev@x.com")
	assert.Contains(t, body, `<input type="password" id="revealed_password" readonly autocomplete="off" value="hunter2">`)

	resp, body = c.post("/view/update", url.Values{
		"app_name":         {"GitHub"},
		"password":         {"newpass1"},
		"confirm_password": {"newpass2"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Passwords don&#39;t match! Try again.")

	resp, body = c.post("/view/update", url.Values{
		"app_name":         {"GitHub"},
		"password":         {"newpass1"},
		"confirm_password": {"newpass1"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "GitHub&#39;s password is updated!")

	_, body = c.post("/view/home", url.Values{"app_name": {"GitHub"}})
	assert.Contains(t, body, `value="newpass1"`)

	resp, body = c.post("/view/delete", url.Values{"app_name": {"GitHub"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "GitHub&#39;s Credential is successfully removed from database!")
	assert.Contains(t, body, "Database is empty.")

	resp, _ = c.post("/view/home", url.Values{"app_name": {"GitHub"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestViews_AddValidation(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, body := c.post("/view/add", url.Values{
		"app_name":  {"   "},
		"user_name": {"dev"},
		"password":  {"pw"},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "application is required")
	assert.Contains(t, body, "Available credentials in database: 0")
}

func TestViews_AddKeepsInputVerbatim(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, body := c.post("/view/add", url.Values{
		"app_name":  {"  a<b  "},
		"user_name": {"Jane <jane@x.com>"},
		"password":  {"p<q>r"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "a&lt;b&#39;s credentials are added successfully")

	cred, err := sqlite.NewCredentialRepo(c.db).Fetch(context.Background(), "a<b")
	require.NoError(t, err)
	assert.Equal(t, "Jane <jane@x.com>", cred.Username)

	_, body = c.get("/view/delete?full=1")
	assert.Contains(t, body, "<td>a&lt;b</td>")

	_, body = c.post("/view/home", url.Values{"app_name": {"a<b"}})
	assert.Contains(t, body, "<code>Jane &lt;jane@x.com&gt;</code>")
	assert.Contains(t, body, `value="p&lt;q&gt;r"`)
}

func TestViews_UndecryptableCredential(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	require.NoError(t, sqlite.NewCredentialRepo(c.db).Insert(context.Background(), model.Credential{
		AppName:           "Legacy",
		Username:          "old",
		EncryptedPassword: "not-an-envelope",
	}))

	resp, body := c.post("/view/home", url.Values{"app_name": {"Legacy"}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "cannot be decrypted with the configured key")
	assert.NotContains(t, body, `id="revealed_password"`)

	resp, body = c.get("/view/home")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "cannot be decrypted")
}

func TestViews_UpdateMissingAccount(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, _ := c.post("/view/update", url.Values{
		"app_name":         {"Nowhere"},
		"password":         {"a"},
		"confirm_password": {"a"},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestViews_DeleteFullListing(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	for _, app := range []string{"Bank", "Mail"} {
		resp, _ := c.post("/view/add", url.Values{"app_name": {app}, "user_name": {"u"}, "password": {"p"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	_, body := c.get("/view/delete")
	assert.NotContains(t, body, "<table>")

	_, body = c.get("/view/delete?full=1")
	assert.Contains(t, body, "<td>Bank</td>")
	assert.Contains(t, body, "<td>Mail</td>")
}

func TestViews_RevealPlainText(t *testing.T) {
	c := newTestServer(t, true)
	c.setup()

	resp, _ := c.post("/view/add", url.Values{"app_name": {"GitHub"}, "user_name": {"dev"}, "password": {"hunter2"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := c.post("/view/home", url.Values{"app_name": {"GitHub"}})
	assert.Contains(t, body, `<code id="revealed_password">hunter2</code>`)
}

var generatedRe = regexp.MustCompile(`<code id="generated_password">([^<]*)</code>`)

func TestViews_Generate(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	tests := []struct {
		length string
		want   int
	}{
		{"16", 16},
		{"100", application.MaxPasswordLength},
		{"1", application.MinPasswordLength},
		{"99999999999999999999", application.MaxPasswordLength},
		{"-99999999999999999999", application.MinPasswordLength},
		{"", application.DefaultPasswordLength},
	}

	for _, tt := range tests {
		t.Run("length="+tt.length, func(t *testing.T) {
			resp, body := c.post("/view/generate", url.Values{"length": {tt.length}})
			require.Equal(t, http.StatusOK, resp.StatusCode)

			m := generatedRe.FindStringSubmatch(body)
			require.Len(t, m, 2)
			password := html.UnescapeString(m[1])
			assert.Len(t, password, tt.want)
			for _, r := range password {
				assert.True(t, strings.ContainsRune(application.PasswordPool, r), "unexpected %q", r)
			}
		})
	}
}

func TestViews_GenerateRejectsNonNumeric(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	resp, body := c.post("/view/generate", url.Values{"length": {"twelve"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotContains(t, body, `id="generated_password"`)
}

func TestViews_NavMarksActive(t *testing.T) {
	c := newTestServer(t, false)
	c.setup()

	_, body := c.get("/view/update")
	assert.Contains(t, body, `<a href="/view/update" class="active">`)
	for _, name := range viewOrder {
		assert.Contains(t, body, `href="`+viewPath(name)+`"`)
	}
}
