package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/homeflix/internal/blob"
	"github.com/example/homeflix/internal/member"
	"github.com/example/homeflix/internal/platform/auth"
	"github.com/example/homeflix/internal/rtstore"
	"github.com/example/homeflix/internal/session"
	"github.com/example/homeflix/internal/tokens"
)

// ─── fixture ───

type fixture struct {
	router chi.Router
	store  rtstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := rtstore.NewMemory()
	t.Cleanup(store.Close)

	log := zap.NewNop()
	reg, err := session.NewRegistry(store, log, "admin")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	t.Cleanup(reg.Close)

	local, err := blob.NewLocal(t.TempDir(), "http://localhost:8080/blobs")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	secret := []byte("test-secret")
	r := chi.NewRouter()
	Mount(r, Deps{
		Registry: reg,
		Store:    store,
		Blobs:    local,
		Tokens:   tokens.Service{Secret: secret, SessionTTL: time.Hour},
		Verifier: auth.JWTVerifier{Secret: secret},
		Log:      log,
	})
	return &fixture{router: r, store: store}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewBuffer(b)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

// login retries until the seeded user has synced into the registry.
func (f *fixture) login(t *testing.T, password string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rr := f.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"password": password})
		if rr.Code == http.StatusOK {
			var resp struct {
				Token string `json:"token"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode login response: %v", err)
			}
			return resp.Token
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("login with %q never succeeded", password)
	return ""
}

func (f *fixture) seedViewer(t *testing.T, password string) {
	t.Helper()
	m := member.Member{Name: "Ada", Password: password, Role: member.RoleViewer}
	if _, err := f.store.Append(context.Background(), rtstore.CollectionUsers, m); err != nil {
		t.Fatalf("seed viewer: %v", err)
	}
}

// ─── auth ───

func TestLoginHandler_OKAndRejected(t *testing.T) {
	f := newFixture(t)
	f.seedViewer(t, "sesame")

	token := f.login(t, "sesame")
	if token == "" {
		t.Fatal("empty token")
	}

	rr := f.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"password": "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "INVALID_PASSWORD") {
		t.Fatalf("missing error code in %s", rr.Body.String())
	}

	rr = f.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", rr.Code)
	}
}

func TestLogoutHandler_InvalidatesSession(t *testing.T) {
	f := newFixture(t)
	f.seedViewer(t, "pw")
	token := f.login(t, "pw")

	if rr := f.do(t, http.MethodPost, "/v1/auth/logout", token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rr.Code)
	}
	if rr := f.do(t, http.MethodGet, "/v1/view", token, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("view after logout: %d", rr.Code)
	}
}

func TestView_RequiresToken(t *testing.T) {
	f := newFixture(t)
	if rr := f.do(t, http.MethodGet, "/v1/view", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodGet, "/v1/view", "garbage", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rr.Code)
	}
}

// ─── viewer flow ───

func TestViewFlow_TabAndSeries(t *testing.T) {
	f := newFixture(t)
	f.seedViewer(t, "pw")
	ctx := context.Background()
	for _, it := range []map[string]any{
		{"title": "Solaris", "type": "movie", "video": "v1"},
		{"title": "Ep1", "type": "series", "seriesName": "Dark", "season": 1, "episode": 1, "video": "v2"},
	} {
		if _, err := f.store.Append(ctx, rtstore.CollectionItems, it); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
	token := f.login(t, "pw")

	var v session.View
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rr := f.do(t, http.MethodGet, "/v1/view", token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("view: %d", rr.Code)
		}
		if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
			t.Fatalf("decode view: %v", err)
		}
		if len(v.Entities) == 2 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if len(v.Entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(v.Entities))
	}

	if rr := f.do(t, http.MethodPost, "/v1/view/tab", token, map[string]string{"tab": "nope"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid tab: %d", rr.Code)
	}
	if rr := f.do(t, http.MethodPost, "/v1/view/tab", token, map[string]string{"tab": "series"}); rr.Code != http.StatusNoContent {
		t.Fatalf("switch tab: %d", rr.Code)
	}
	if rr := f.do(t, http.MethodPost, "/v1/view/series/open", token, map[string]string{"seriesName": "Dark"}); rr.Code != http.StatusNoContent {
		t.Fatalf("open series: %d", rr.Code)
	}
	if rr := f.do(t, http.MethodPost, "/v1/view/series/open", token, map[string]string{"seriesName": "Nope"}); rr.Code != http.StatusNotFound {
		t.Fatalf("open unknown series: %d", rr.Code)
	}
	if rr := f.do(t, http.MethodPost, "/v1/view/series/close", token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("close series: %d", rr.Code)
	}
}

// ─── admin guard ───

func TestAdminRoutes_ForbiddenForViewer(t *testing.T) {
	f := newFixture(t)
	f.seedViewer(t, "pw")
	token := f.login(t, "pw")

	item := map[string]any{"title": "X", "type": "movie", "video": "v"}
	if rr := f.do(t, http.MethodPost, "/v1/items", token, item); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodGet, "/v1/members", token, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestAdminFlow_ItemsAndMembers(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "admin") // bootstrap

	item := map[string]any{"title": "Solaris", "type": "movie", "video": "v1"}
	rr := f.do(t, http.MethodPost, "/v1/items", token, item)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add item: %d: %s", rr.Code, rr.Body.String())
	}
	var created struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil || created.Key == "" {
		t.Fatalf("add item response: %v %q", err, created.Key)
	}

	if rr := f.do(t, http.MethodPost, "/v1/items", token, map[string]any{"type": "movie", "video": "v"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing title: %d", rr.Code)
	}
	if rr := f.do(t, http.MethodDelete, "/v1/items/"+created.Key, token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete item: %d", rr.Code)
	}

	rr = f.do(t, http.MethodPost, "/v1/members", token, map[string]string{"name": "Ada", "password": "pw"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add member: %d: %s", rr.Code, rr.Body.String())
	}
	var newMember struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&newMember); err != nil {
		t.Fatalf("decode member: %v", err)
	}

	// Wait for the new member to sync, then verify the duplicate
	// password is rejected: it would shadow an existing login.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rr = f.do(t, http.MethodGet, "/v1/members", token, nil)
		if strings.Contains(rr.Body.String(), `"Ada"`) {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	rr = f.do(t, http.MethodPost, "/v1/members", token, map[string]string{"name": "Eve", "password": "pw"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate password: %d", rr.Code)
	}

	if rr := f.do(t, http.MethodPatch, "/v1/members/"+newMember.Key, token, map[string]string{"name": "Ada L."}); rr.Code != http.StatusNoContent {
		t.Fatalf("patch member: %d: %s", rr.Code, rr.Body.String())
	}
	if rr := f.do(t, http.MethodPatch, "/v1/members/nope", token, map[string]string{"name": "X"}); rr.Code != http.StatusNotFound {
		t.Fatalf("patch unknown member: %d", rr.Code)
	}

	// The admin listing includes the plaintext password.
	rr = f.do(t, http.MethodGet, "/v1/members", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list members: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"password":"pw"`) {
		t.Fatalf("members listing lacks password: %s", rr.Body.String())
	}
}

func TestUploadThumbnail(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "admin")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("thumbnail", "poster.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/uploads/thumbnail", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("upload: %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.URL, "http://localhost:8080/blobs/thumbnails/") {
		t.Fatalf("url = %q", resp.URL)
	}

	rr = f.do(t, http.MethodPost, "/v1/uploads/thumbnail", token, map[string]string{"not": "multipart"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("non-multipart upload: %d", rr.Code)
	}
}
