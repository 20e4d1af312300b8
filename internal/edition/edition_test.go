// AngelaMos | 2026
// edition_test.go

package edition_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/edition-console/internal/backend"
	"github.com/carterperez-dev/templates/edition-console/internal/backend/backendtest"
	"github.com/carterperez-dev/templates/edition-console/internal/config"
	"github.com/carterperez-dev/templates/edition-console/internal/edition"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
	"github.com/carterperez-dev/templates/edition-console/internal/view"
)

const token = "tok-root"

type flashRecorder struct {
	mu      sync.Mutex
	flashes []view.Flash
}

func (f *flashRecorder) Flash(_ http.ResponseWriter, _ *http.Request, kind, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flashes = append(f.flashes, view.Flash{Kind: kind, Message: message})
}

func (f *flashRecorder) last() view.Flash {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.flashes) == 0 {
		return view.Flash{}
	}
	return f.flashes[len(f.flashes)-1]
}

type mutationCounter struct {
	mu   sync.Mutex
	seen []string
}

func (m *mutationCounter) ObserveMutation(op, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, op+":"+outcome)
}

type harness struct {
	router    http.Handler
	backend   *backendtest.Server
	flashes   *flashRecorder
	mutations *mutationCounter
}

func newHarness(t *testing.T, role string) *harness {
	t.Helper()

	srv := backendtest.New(t)
	srv.AddAccount("root@example.com", "pw", token, backend.UserDTO{
		ID: "1", Email: "root@example.com", Name: "Root", Role: "super-admin",
	})

	client, err := backend.NewClient(config.BackendConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	renderer, err := view.New("Console")
	require.NoError(t, err)

	flashes := &flashRecorder{}
	mutations := &mutationCounter{}
	handler := edition.NewHandler(edition.NewService(client, mutations), renderer, flashes)

	principal := &middleware.Principal{UserID: "1", Name: "Root", Role: role, Token: token}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithPrincipal(r.Context(), principal)))
		})
	})
	handler.RegisterRoutes(r, middleware.RequireRole("super-admin"))

	return &harness{router: r, backend: srv, flashes: flashes, mutations: mutations}
}

func (h *harness) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (h *harness) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) seed() {
	h.backend.AddEdition(backend.EditionDTO{
		Name: "Acme Standard", Slug: "acme-standard", Status: "active",
		Features: backend.EditionFeaturesDTO{CoBranding: true, NotesModule: true},
	})
	h.backend.AddEdition(backend.EditionDTO{Name: "Legacy", Slug: "legacy", Status: "deleted"})
	h.backend.AddEdition(backend.EditionDTO{Name: "Archive", Slug: "archive", IsDeleted: backend.NewFlag(true)})
}

func rowFor(id string) string {
	return `data-edition-id="` + id + `"`
}

func TestListHidesDeletedUntilToggled(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.get(t, "/editions")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="editions-view"`)
	assert.Contains(t, body, "Acme Standard")
	assert.Contains(t, body, "Co-branding, Notes module")
	assert.NotContains(t, body, "Legacy")
	assert.NotContains(t, body, "Archive")
	assert.Contains(t, body, "Showing 1 of 3 editions")

	rec = h.get(t, "/editions?show_deleted=true")
	body = rec.Body.String()
	assert.Contains(t, body, rowFor("2")+` data-status="deleted"`)
	assert.Contains(t, body, rowFor("3")+` data-status="deleted"`)
	assert.Contains(t, body, "/editions/2/restore")
	assert.Contains(t, body, "Showing 3 of 3 editions")
}

func TestListSearchMatchesNameAndSlug(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	body := h.get(t, "/editions?q=ACME&show_deleted=true").Body.String()
	assert.Contains(t, body, "Acme Standard")
	assert.NotContains(t, body, "Legacy")

	body = h.get(t, "/editions?q=legacy&show_deleted=true").Body.String()
	assert.Contains(t, body, rowFor("2"))
	assert.NotContains(t, body, rowFor("1"))
}

func TestListJSON(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	req := httptest.NewRequest(http.MethodGet, "/editions?show_deleted=true", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                `json:"success"`
		Data    edition.ListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Data.Total)
	require.Len(t, body.Data.Editions, 3)
	assert.True(t, body.Data.Editions[0].Features.CoBranding)
	assert.Equal(t, edition.StatusDeleted, body.Data.Editions[2].Status)
}

func TestListBackendFailureShowsError(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.backend.FailNext(http.StatusServiceUnavailable, "backend is down")

	rec := h.get(t, "/editions")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend is down")
}

func TestCreateRejectsBlankNameWithoutBackendCall(t *testing.T) {
	h := newHarness(t, "super-admin")

	rec := h.post(t, "/editions", url.Values{"name": {"   "}, "co_branding": {"on"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="edition-form-view"`)
	assert.Contains(t, rec.Body.String(), "name is required")
	assert.Zero(t, h.backend.RequestCount())
	assert.Empty(t, h.mutations.seen)
}

func TestCreateSendsSlugAndFeatures(t *testing.T) {
	h := newHarness(t, "super-admin")

	rec := h.post(t, "/editions", url.Values{
		"name":                {"Café Pro"},
		"description":         {"  premium tier "},
		"co_branding":         {"on"},
		"ems_response_report": {"on"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/editions", rec.Header().Get("Location"))
	assert.Equal(t, view.FlashSuccess, h.flashes.last().Kind)
	assert.Contains(t, h.flashes.last().Message, "Café Pro")

	created, ok := h.backend.Edition("1")
	require.True(t, ok)
	assert.Equal(t, "Café Pro", created.Name)
	assert.Equal(t, "cafe-pro", created.Slug)
	assert.Equal(t, "premium tier", created.Description)
	assert.Equal(t, "active", created.Status)
	assert.True(t, created.Features.CoBranding)
	assert.True(t, created.Features.EMSResponseReport)
	assert.False(t, created.Features.NotesModule)

	reqs := h.backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+token, reqs[0].Authorization)
	assert.Equal(t, []string{"create:success"}, h.mutations.seen)
}

func (h *harness) postJSON(t *testing.T, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateFromJSONBody(t *testing.T) {
	h := newHarness(t, "super-admin")

	rec := h.postJSON(t, "/editions", `{"name":" Gold Plus ","coBranding":true,"notesModule":true}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gold Plus")

	created, ok := h.backend.Edition("1")
	require.True(t, ok)
	assert.Equal(t, "Gold Plus", created.Name)
	assert.Equal(t, "gold-plus", created.Slug)
	assert.True(t, created.Features.CoBranding)
	assert.True(t, created.Features.NotesModule)
	assert.False(t, created.Features.CustomFields)
}

func TestUpdateFromJSONBody(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.postJSON(t, "/editions/1", `{"name":"Acme Premium","documentManagement":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	updated, ok := h.backend.Edition("1")
	require.True(t, ok)
	assert.Equal(t, "acme-premium", updated.Slug)
	assert.True(t, updated.Features.DocumentManagement)
	assert.False(t, updated.Features.CoBranding)
}

func TestMalformedJSONBodyIsRejected(t *testing.T) {
	h := newHarness(t, "super-admin")

	rec := h.postJSON(t, "/editions", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, h.backend.RequestCount())
}

func TestEditPrefillsForm(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.get(t, "/editions/1/edit")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/editions/1"`)
	assert.Contains(t, body, `value="Acme Standard"`)
}

func TestEditUnknownEditionRedirects(t *testing.T) {
	h := newHarness(t, "super-admin")

	rec := h.get(t, "/editions/99/edit")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/editions", rec.Header().Get("Location"))
	assert.Equal(t, view.FlashError, h.flashes.last().Kind)
}

func TestUpdateRegeneratesSlug(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.post(t, "/editions/1", url.Values{"name": {"Acme Premium"}, "notes_module": {"on"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	updated, ok := h.backend.Edition("1")
	require.True(t, ok)
	assert.Equal(t, "Acme Premium", updated.Name)
	assert.Equal(t, "acme-premium", updated.Slug)
	assert.False(t, updated.Features.CoBranding)
	assert.True(t, updated.Features.NotesModule)
}

func TestUpdateBackendErrorKeepsInput(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()
	h.backend.FailNext(http.StatusConflict, "slug already taken")

	rec := h.post(t, "/editions/1", url.Values{"name": {"Legacy"}})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "slug already taken")
	assert.Contains(t, rec.Body.String(), `value="Legacy"`)
	assert.Equal(t, []string{"update:error"}, h.mutations.seen)
}

func TestSoftDeleteThenShowDeleted(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.post(t, "/editions/1/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, view.FlashSuccess, h.flashes.last().Kind)

	assert.NotContains(t, h.get(t, "/editions").Body.String(), rowFor("1"))

	body := h.get(t, "/editions?show_deleted=true").Body.String()
	assert.Contains(t, body, rowFor("1")+` data-status="deleted"`)
}

func TestSoftDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.post(t, "/editions/1/delete", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, view.FlashError, h.flashes.last().Kind)
	assert.Zero(t, h.backend.RequestCount())
}

func TestConfirmDeletePage(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.get(t, "/editions/1/delete")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Delete Acme Standard?")
}

func TestRestore(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.post(t, "/editions/2/restore", nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	restored, _ := h.backend.Edition("2")
	assert.Equal(t, "active", restored.Status)
	assert.Contains(t, h.get(t, "/editions").Body.String(), rowFor("2")+` data-status="active"`)
}

func TestRestoreFailureFlashesError(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()
	h.backend.FailNext(http.StatusInternalServerError, "restore failed upstream")

	rec := h.post(t, "/editions/2/restore", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, view.Flash{Kind: view.FlashError, Message: "restore failed upstream"}, h.flashes.last())
}

func TestPermanentDeleteRequiresExactPhrase(t *testing.T) {
	for _, phrase := range []string{"", "delete", "DELETE ", "Delete"} {
		t.Run(phrase, func(t *testing.T) {
			h := newHarness(t, "super-admin")
			h.seed()

			rec := h.post(t, "/editions/2/permanent", url.Values{"confirmation": {phrase}})

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), `id="edition-purge-view"`)
			for _, req := range h.backend.Requests() {
				assert.NotEqual(t, http.MethodDelete, req.Method)
			}
			_, exists := h.backend.Edition("2")
			assert.True(t, exists)
		})
	}
}

func TestPermanentDeleteRemovesEdition(t *testing.T) {
	h := newHarness(t, "super-admin")
	h.seed()

	rec := h.post(t, "/editions/2/permanent", url.Values{"confirmation": {"DELETE"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/editions?show_deleted=true", rec.Header().Get("Location"))

	body := h.get(t, "/editions?show_deleted=true").Body.String()
	assert.NotContains(t, body, rowFor("2"))
	assert.Contains(t, body, "Showing 2 of 2 editions")
	assert.Equal(t, []string{"purge:success"}, h.mutations.seen)
}

func TestGateRejectsOtherRoles(t *testing.T) {
	h := newHarness(t, "edition-admin")

	rec := h.get(t, "/editions")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
	assert.Zero(t, h.backend.RequestCount())
}
