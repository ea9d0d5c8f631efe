package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"incident-portal/internal/audit"
	"incident-portal/internal/auth"
	"incident-portal/internal/incidents"
	"incident-portal/internal/rbac"
	"incident-portal/internal/session"
	"incident-portal/internal/tenancy"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func int64p(v int64) *int64 { return &v }

// denyAfter allows the first n attempts per key, then denies.
type denyAfter struct {
	n      int
	seen   map[string]int
	resets []string
}

func (d *denyAfter) Allow(ctx context.Context, key string) (bool, error) {
	if d.seen == nil {
		d.seen = map[string]int{}
	}
	d.seen[key]++
	return d.seen[key] <= d.n, nil
}

func (d *denyAfter) Reset(ctx context.Context, key string) error {
	d.resets = append(d.resets, key)
	return nil
}

type handlerFixture struct {
	router    *gin.Engine
	codec     *auth.Codec
	directory *tenancy.MemoryDirectory
	throttle  *denyAfter
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidations()

	codec, err := auth.NewCodec(auth.CodecConfig{Secret: "secret"})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	store := session.NewMemoryStore(
		session.User{ID: 1, TenantID: int64p(5), Email: "member@acme.test", PasswordHash: string(hash), Role: rbac.RoleResponder, IsActive: true},
	)
	directory := tenancy.NewMemoryDirectory(
		tenancy.Tenant{ID: 5, Subdomain: "acme", IsActive: true},
		tenancy.Tenant{ID: 6, Subdomain: "dormant", IsActive: false},
	)
	registry := rbac.NewRegistry(rbac.Defaults())
	auditSvc := audit.NewService(audit.NewMemoryRepo())
	issuer := session.NewIssuer(store, registry, directory, codec, auditSvc)

	throttle := &denyAfter{n: 3}
	h := Handlers{
		Issuer:    issuer,
		Throttle:  throttle,
		Tenants:   directory,
		Incidents: incidents.NewService(incidents.NewMemoryRepo()),
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	pipeline := auth.NewPipeline(codec, tenancy.NewResolver(directory, time.Second), auditSvc, h.Log)

	r := gin.New()
	r.POST("/v1/auth/login", pipeline.Public(), h.Login)
	r.POST("/v1/incidents", pipeline.Protect(rbac.Named(rbac.PermIncidentsWrite)), auth.RequireTenant(), h.ReportIncident)
	r.GET("/v1/incidents", pipeline.Protect(rbac.Named(rbac.PermIncidentsRead)), auth.RequireTenant(), h.ListIncidents)

	return &handlerFixture{router: r, codec: codec, directory: directory, throttle: throttle}
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	f := newHandlerFixture(t)

	w := postLogin(f.router, `{"email":"member@acme.test","password":"correct horse","tenant_id":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body)
	}

	var body struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.Token == "" || body.ExpiresAt.IsZero() {
		t.Fatalf("incomplete session payload: %s", w.Body)
	}
	if len(f.throttle.resets) != 1 {
		t.Fatalf("expected throttle reset after success, got %v", f.throttle.resets)
	}
}

func TestLoginResolvesTenantSubdomain(t *testing.T) {
	f := newHandlerFixture(t)

	w := postLogin(f.router, `{"email":"member@acme.test","password":"correct horse","tenant":"Acme"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body)
	}
}

// Every login failure kind must produce the same status and body.
func TestLoginFailureKindsShareOnePayload(t *testing.T) {
	f := newHandlerFixture(t)
	f.throttle.n = 100

	cases := map[string]string{
		"wrong password":    `{"email":"member@acme.test","password":"nope","tenant_id":5}`,
		"unknown account":   `{"email":"ghost@acme.test","password":"nope","tenant_id":5}`,
		"missing selector":  `{"email":"member@acme.test","password":"correct horse"}`,
		"inactive tenant":   `{"email":"member@acme.test","password":"correct horse","tenant_id":6}`,
		"unknown subdomain": `{"email":"member@acme.test","password":"correct horse","tenant":"nosuch"}`,
	}

	var bodies []string
	for name, payload := range cases {
		w := postLogin(f.router, payload)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401 (body %s)", name, w.Code, w.Body)
		}
		bodies = append(bodies, w.Body.String())
	}
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Fatalf("failure payloads differ: %q vs %q", bodies[0], b)
		}
	}
}

func TestLoginThrottled(t *testing.T) {
	f := newHandlerFixture(t)

	payload := `{"email":"member@acme.test","password":"nope","tenant_id":5}`
	for i := 0; i < 3; i++ {
		if w := postLogin(f.router, payload); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d", i, w.Code)
		}
	}
	w := postLogin(f.router, payload)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestLoginRejectsBadPayload(t *testing.T) {
	f := newHandlerFixture(t)

	for name, payload := range map[string]string{
		"not json":    `{`,
		"no email":    `{"password":"x"}`,
		"bad email":   `{"email":"not-an-email","password":"x"}`,
		"zero tenant": `{"email":"a@b.test","password":"x","tenant_id":0}`,
	} {
		if w := postLogin(f.router, payload); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func (f *handlerFixture) memberToken(t *testing.T) string {
	t.Helper()
	perms, _ := rbac.NewRegistry(rbac.Defaults()).Expand(rbac.RoleResponder)
	token, _, err := f.codec.Encode(time.Now(), auth.Claims{
		SubjectID:   1,
		TenantID:    int64p(5),
		Role:        rbac.RoleResponder,
		Permissions: perms.Strings(),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return token
}

func TestReportAndListIncidents(t *testing.T) {
	f := newHandlerFixture(t)
	token := f.memberToken(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/incidents", strings.NewReader(`{"title":"switch down","severity":"high"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("report: status = %d (body %s)", w.Code, w.Body)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/incidents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d (body %s)", w.Code, w.Body)
	}

	var body struct {
		Incidents []incidents.Incident `json:"incidents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(body.Incidents) != 1 || body.Incidents[0].TenantID != 5 {
		t.Fatalf("unexpected incidents: %+v", body.Incidents)
	}
}

func TestReportIncidentRejectsUnknownSeverity(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/incidents", strings.NewReader(`{"title":"x","severity":"urgent"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.memberToken(t))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
