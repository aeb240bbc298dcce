package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accredis/internal/access"
	clinichandler "accredis/internal/clinic/handler"
	clinicservice "accredis/internal/clinic/service"
	clinicstore "accredis/internal/clinic/store/clinic"
	profilestore "accredis/internal/clinic/store/profile"
	documenthandler "accredis/internal/document/handler"
	documentservice "accredis/internal/document/service"
	auditstore "accredis/internal/document/store/audit"
	documentstore "accredis/internal/document/store/document"
	jwttoken "accredis/internal/jwt_token"
	"accredis/internal/platform/metrics"
	riskexport "accredis/internal/risk/export"
	riskhandler "accredis/internal/risk/handler"
	riskservice "accredis/internal/risk/service"
	riskstore "accredis/internal/risk/store"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/audit/publishers/compliance"
	auditmemory "accredis/pkg/platform/audit/store/memory"
	"accredis/pkg/testutil"
)

type app struct {
	router http.Handler
	tokens *jwttoken.JWTService
	trail  *auditmemory.InMemoryStore
}

func newApp(t *testing.T, health map[string]HealthCheck) *app {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	clinics := clinicstore.NewInMemory()
	profiles := profilestore.NewInMemory()
	documents := documentstore.NewInMemory()
	trail := auditmemory.NewInMemoryStore()
	publisher := compliance.New(trail)
	enforcer := access.NewEnforcer(logger, access.NewMetrics(reg))
	resolver := access.NewResolver(profiles, clinics, access.WithLogger(logger))

	clinicSvc := clinicservice.New(clinics, profiles,
		clinicservice.WithEnforcer(enforcer),
		clinicservice.WithAuditPublisher(publisher),
		clinicservice.WithPrincipalInvalidator(resolver),
		clinicservice.WithLogger(logger),
	)
	documentSvc := documentservice.New(documents, auditstore.NewInMemory(),
		documentservice.WithEnforcer(enforcer),
		documentservice.WithAuditPublisher(publisher),
		documentservice.WithLogger(logger),
	)
	riskSvc := riskservice.New(riskstore.NewInMemory(), documents,
		riskservice.WithEnforcer(enforcer),
		riskservice.WithAuditPublisher(publisher),
		riskservice.WithLogger(logger),
	)

	tokens := jwttoken.NewJWTService("router-test-key", "accredis")
	router := NewRouter(Dependencies{
		Logger:      logger,
		Metrics:     metrics.New(reg),
		Gatherer:    reg,
		CORSOrigins: []string{"http://localhost:3000"},
		Validator:   jwttoken.NewJWTServiceAdapter(tokens),
		Principals:  resolver,
		Health:      health,
		Handlers: []Registrar{
			clinichandler.New(clinicSvc, logger),
			documenthandler.New(documentSvc, logger),
			riskhandler.New(riskSvc, logger),
		},
	})
	return &app{router: router, tokens: tokens, trail: trail}
}

func (a *app) as(t *testing.T, userID id.UserID, req *http.Request) *http.Request {
	t.Helper()
	token, err := a.tokens.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (a *app) do(t *testing.T, userID id.UserID, method, path string, body any) map[string]any {
	t.Helper()
	rr := testutil.DoRequest(a.router, a.as(t, userID, testutil.NewJSONRequest(t, method, path, body)))
	require.Less(t, rr.Code, 300, "%s %s: %s", method, path, rr.Body.String())
	return *testutil.UnmarshalResponse[map[string]any](t, rr)
}

func TestRouter_Operational(t *testing.T) {
	a := newApp(t, map[string]HealthCheck{"postgres": func(context.Context) error { return nil }})

	t.Run("health is requested without a token", func(t *testing.T) {
		rr := testutil.DoRequest(a.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("metrics are scraped", func(t *testing.T) {
		testutil.DoRequest(a.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		rr := testutil.DoRequest(a.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		assert.Contains(t, rr.Body.String(), "accredis_http_request_duration_seconds")
	})

	t.Run("an api route is called without a token", func(t *testing.T) {
		rr := testutil.DoRequest(a.router, testutil.NewRequest(t, http.MethodGet, "/documents"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("the route does not exist", func(t *testing.T) {
		rr := testutil.DoRequest(a.router, testutil.NewRequest(t, http.MethodGet, "/nowhere"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestRouter_DegradedHealth(t *testing.T) {
	a := newApp(t, map[string]HealthCheck{"redis": func(context.Context) error { return errors.New("dial tcp: refused") }})

	rr := testutil.DoRequest(a.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(t, rr, "status", "degraded")
}

func TestRouter_OwnerScenario(t *testing.T) {
	a := newApp(t, nil)
	owner := id.NewUserID()
	staff := id.NewUserID()
	outsider := id.NewUserID()

	var clinicID, docID string
	sc := testutil.NewScenario(t)

	sc.Given("an owner registers a clinic", func(t *testing.T) {
		a.do(t, owner, http.MethodPost, "/profile", map[string]any{"first_name": "Ada", "last_name": "Ng", "role": "owner"})
		clinic := a.do(t, owner, http.MethodPost, "/clinics", map[string]any{
			"name": "Harbour Dental", "address": "1 Quay St", "state": "NSW",
		})
		clinicID = clinic["id"].(string)
		assert.Equal(t, "harbour-dental", clinic["slug"])

		profile := a.do(t, owner, http.MethodGet, "/profile", nil)
		assert.Equal(t, clinicID, profile["clinic_id"])
	})

	sc.When("staff draft a document and the owner publishes it", func(t *testing.T) {
		a.do(t, staff, http.MethodPost, "/profile", map[string]any{
			"first_name": "Sam", "last_name": "Lee", "role": "staff", "clinic_id": clinicID,
		})
		doc := a.do(t, staff, http.MethodPost, "/documents", map[string]any{
			"title": "Sterilisation Procedure", "content": "## Purpose\nAutoclave cycles.", "category": "procedure",
		})
		docID = doc["id"].(string)
		assert.Equal(t, clinicID, doc["clinic_id"])

		a.do(t, staff, http.MethodPost, "/documents/"+docID+"/transition", map[string]any{"status": "review"})

		rr := testutil.DoRequest(a.router, a.as(t, staff, testutil.NewJSONRequest(t, http.MethodPost,
			"/documents/"+docID+"/transition", map[string]any{"status": "published"})))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")

		published := a.do(t, owner, http.MethodPost, "/documents/"+docID+"/transition", map[string]any{"status": "published"})
		assert.Equal(t, "published", published["status"])
		assert.Equal(t, true, published["signature_current"])
	})

	sc.Then("the document is invisible outside the clinic", func(t *testing.T) {
		rr := testutil.DoRequest(a.router, a.as(t, outsider, testutil.NewRequest(t, http.MethodGet, "/documents/"+docID)))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	sc.And("risks link the document and export as a workbook", func(t *testing.T) {
		risk := a.do(t, staff, http.MethodPost, "/risks", map[string]any{
			"title": "Autoclave failure", "description": "Instruments not sterile", "category": "clinical",
			"severity": 5, "likelihood": 3, "linked_docs": []string{docID},
		})
		assert.Equal(t, float64(15), risk["risk_score"])
		assert.Equal(t, "high", risk["tier"])

		rr := testutil.DoRequest(a.router, a.as(t, owner, testutil.NewRequest(t, http.MethodGet, "/risks/export")))
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, riskexport.ContentType, rr.Header().Get("Content-Type"))
	})

	sc.Then("every mutation reached the audit trail", func(t *testing.T) {
		assert.Len(t, a.trail.All(), 8)
	})
}
