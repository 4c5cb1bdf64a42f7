package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/auth"
	"retail-crm/internal/calls"
	"retail-crm/internal/campaigns"
	"retail-crm/internal/pipeline"
	"retail-crm/internal/prospects"
	"retail-crm/internal/telephony"

	"github.com/gin-gonic/gin"
)

type stubProvider struct {
	placeErr   error
	detailsErr error
}

func (p *stubProvider) PlaceCall(ctx context.Context, req telephony.CallRequest) (telephony.CallResponse, error) {
	if p.placeErr != nil {
		return telephony.CallResponse{}, p.placeErr
	}
	return telephony.CallResponse{CallID: "bland-1", Status: "queued"}, nil
}

func (p *stubProvider) GetCallDetails(ctx context.Context, id string) (telephony.CallDetails, error) {
	return telephony.CallDetails{}, p.detailsErr
}

func (p *stubProvider) EndCall(ctx context.Context, id string) error { return nil }

type heldLocker struct{}

func (heldLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	return "", false, nil
}

func (heldLocker) Release(ctx context.Context, key, token string) error { return nil }

type fixture struct {
	router    *gin.Engine
	handlers  Handlers
	prospects *prospects.MemoryRepo
	acts      *activities.MemoryRepo
	provider  *stubProvider
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T, locker calls.Locker, seedCalls ...calls.Call) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		prospects: prospects.NewMemoryRepo(
			prospects.Prospect{ID: "p1", BusinessName: "Iron Gym", Phone: strPtr("+15550001"), StoreType: prospects.StoreTypeGym, PipelineStage: prospects.StageLead, Source: prospects.SourceManual, CreatedAt: created, UpdatedAt: created},
			prospects.Prospect{ID: "p2", BusinessName: "Main St Pharmacy", StoreType: prospects.StoreTypePharmacy, PipelineStage: prospects.StageContacted, Source: prospects.SourceManual, CreatedAt: created, UpdatedAt: created},
		),
		acts:     activities.NewMemoryRepo(),
		provider: &stubProvider{},
	}
	callRepo := calls.NewMemoryRepo(seedCalls...)
	actSvc := activities.NewService(f.acts)
	pipe := pipeline.NewService(f.prospects, actSvc, nil)

	h := Handlers{
		Prospects:  prospects.NewService(f.prospects, nil),
		Pipeline:   pipe,
		Activities: actSvc,
		Calls:      calls.NewManager(callRepo, f.prospects, actSvc, f.provider, nil),
		Webhooks: calls.NewIngestor(calls.IngestorDeps{
			Calls:      callRepo,
			Prospects:  f.prospects,
			Activities: actSvc,
			Pipeline:   pipe,
			Locker:     locker,
		}),
	}

	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/api/prospects", h.ListProspects)
	r.GET("/api/prospects/:id", h.GetProspect)
	r.PATCH("/api/prospects/:id/stage", h.MoveStage)
	r.PATCH("/api/pipeline/:id/move", h.MoveStage)
	r.GET("/api/activities/prospect/:prospectId", h.ProspectActivities)
	r.POST("/api/calls", h.InitiateCall)
	r.GET("/api/calls/:id", h.GetCall)
	r.POST("/api/webhooks/bland", h.BlandWebhook)
	f.router = r
	f.handlers = h
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestListProspects_FiltersByStage(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodGet, "/api/prospects?stage=contacted", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[[]prospects.Prospect](t, w)
	if len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("expected only p2, got %+v", got)
	}
}

func TestListProspects_RejectsUnknownSortColumn(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodGet, "/api/prospects?sort_by=password", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetProspect_NotFound(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodGet, "/api/prospects/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	body := decode[map[string]string](t, w)
	if body["error"] == "" {
		t.Fatalf("expected error message, got %v", body)
	}
}

func TestMoveStage_InvalidStageWritesNothing(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPatch, "/api/prospects/p1/stage", `{"stage":"won"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if f.prospects.StageWrites() != 0 {
		t.Fatalf("expected no stage writes")
	}
}

func TestMoveStage_PipelineRouteRecordsActivity(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPatch, "/api/pipeline/p1/move", `{"pipeline_stage":"contacted"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	p := decode[prospects.Prospect](t, w)
	if p.PipelineStage != prospects.StageContacted {
		t.Fatalf("expected contacted, got %s", p.PipelineStage)
	}

	w = f.do(http.MethodGet, "/api/activities/prospect/p1", "")
	acts := decode[[]activities.Activity](t, w)
	if len(acts) != 1 || acts[0].Type != activities.TypeStageChange {
		t.Fatalf("expected one stage_change activity, got %+v", acts)
	}
}

func TestInitiateCall_ProviderFailureIsBadGateway(t *testing.T) {
	f := newFixture(t, nil)
	f.provider.placeErr = errors.New("bland: 500 internal")

	w := f.do(http.MethodPost, "/api/calls", `{"prospect_id":"p1"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestInitiateCall_NoPhoneIsBadRequest(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPost, "/api/calls", `{"prospect_id":"p2"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestInitiateCall_Created(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPost, "/api/calls", `{"prospect_id":"p1","team_member_id":"m1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	c := decode[calls.Call](t, w)
	if c.Status != calls.CallStatusQueued || c.BlandCallID == nil || *c.BlandCallID != "bland-1" {
		t.Fatalf("unexpected call: %+v", c)
	}
}

func withIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), userID, role))
		c.Next()
	}
}

func TestInitiateCall_DefaultsTeamMemberToCaller(t *testing.T) {
	f := newFixture(t, nil)
	r := gin.New()
	r.Use(withIdentity("m-7", "rep"))
	r.POST("/api/calls", f.handlers.InitiateCall)
	f.router = r

	w := f.do(http.MethodPost, "/api/calls", `{"prospect_id":"p1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	c := decode[calls.Call](t, w)
	if c.TeamMemberID == nil || *c.TeamMemberID != "m-7" {
		t.Fatalf("expected caller as team member, got %v", c.TeamMemberID)
	}

	w = f.do(http.MethodPost, "/api/calls", `{"prospect_id":"p1","team_member_id":"m-9"}`)
	c = decode[calls.Call](t, w)
	if c.TeamMemberID == nil || *c.TeamMemberID != "m-9" {
		t.Fatalf("expected explicit team member kept, got %v", c.TeamMemberID)
	}
}

func TestCreateCampaign_DefaultsCreatorToCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := Handlers{Campaigns: campaigns.NewService(campaigns.NewMemoryRepo(), nil, nil, nil)}
	r := gin.New()
	r.Use(withIdentity("m-7", "manager"))
	r.POST("/api/campaigns", h.CreateCampaign)

	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", strings.NewReader(`{"name":"Spring gyms","prospect_ids":["p1"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[campaigns.Campaign](t, w)
	if got.CreatedBy == nil || *got.CreatedBy != "m-7" {
		t.Fatalf("expected caller as creator, got %v", got.CreatedBy)
	}
}

func TestGetCall_MarksStaleWhenProviderDown(t *testing.T) {
	f := newFixture(t, nil, calls.Call{ID: "c1", BlandCallID: strPtr("b1"), Direction: calls.DirectionOutbound, Status: calls.CallStatusQueued})
	f.provider.detailsErr = errors.New("dial tcp: timeout")

	w := f.do(http.MethodGet, "/api/calls/c1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Call-Stale") != "true" {
		t.Fatalf("expected stale header")
	}
}

func TestBlandWebhook_AcknowledgesBadDeliveries(t *testing.T) {
	f := newFixture(t, nil)

	for _, body := range []string{`{not json`, `{"status":"completed"}`} {
		w := f.do(http.MethodPost, "/api/webhooks/bland", body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", body, w.Code)
		}
		got := decode[map[string]any](t, w)
		if got["received"] != false {
			t.Fatalf("%s: expected received=false, got %v", body, got)
		}
	}
}

func TestBlandWebhook_UnknownCallAcknowledged(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPost, "/api/webhooks/bland", `{"call_id":"nope","status":"completed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decode[struct {
		Received bool               `json:"received"`
		Result   calls.IngestResult `json:"result"`
	}](t, w)
	if !got.Received || got.Result.Matched {
		t.Fatalf("expected unmatched ack, got %+v", got)
	}
}

func TestBlandWebhook_AdvancesInterestedProspect(t *testing.T) {
	f := newFixture(t, nil, calls.Call{ID: "c2", ProspectID: strPtr("p2"), BlandCallID: strPtr("b2"), Direction: calls.DirectionOutbound, Status: calls.CallStatusInProgress})

	w := f.do(http.MethodPost, "/api/webhooks/bland",
		`{"call_id":"b2","status":"completed","call_length":61.2,"concatenated_transcript":"Sure, send me the price sheet."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	p, err := f.prospects.Get(context.Background(), "p2")
	if err != nil {
		t.Fatalf("get prospect: %v", err)
	}
	if p.PipelineStage != prospects.StageInterested {
		t.Fatalf("expected interested, got %s", p.PipelineStage)
	}
}

func TestBlandWebhook_OversizedBodyIsRetried(t *testing.T) {
	f := newFixture(t, nil, calls.Call{ID: "c2", ProspectID: strPtr("p2"), BlandCallID: strPtr("b2"), Direction: calls.DirectionOutbound, Status: calls.CallStatusInProgress})
	h := f.handlers
	h.MaxWebhookBytes = 1 << 10
	r := gin.New()
	r.POST("/api/webhooks/bland", h.BlandWebhook)
	f.router = r

	body := `{"call_id":"b2","status":"completed","concatenated_transcript":"send me ` + strings.Repeat("a", 2<<10) + `"}`
	w := f.do(http.MethodPost, "/api/webhooks/bland", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 so the provider retries, got %d: %s", w.Code, w.Body.String())
	}
	p, err := f.prospects.Get(context.Background(), "p2")
	if err != nil {
		t.Fatalf("get prospect: %v", err)
	}
	if p.PipelineStage != prospects.StageContacted {
		t.Fatalf("expected stage untouched, got %s", p.PipelineStage)
	}
}

func TestBlandWebhook_HeldLockIsConflict(t *testing.T) {
	f := newFixture(t, heldLocker{}, calls.Call{ID: "c1", BlandCallID: strPtr("b1"), Direction: calls.DirectionOutbound, Status: calls.CallStatusQueued})

	w := f.do(http.MethodPost, "/api/webhooks/bland", `{"call_id":"b1","status":"completed"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		ping Pinger
		want int
	}{
		{name: "no datastore check", want: http.StatusOK},
		{name: "healthy", ping: func(context.Context) error { return nil }, want: http.StatusOK},
		{name: "degraded", ping: func(context.Context) error { return errors.New("db down") }, want: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", Handlers{Ping: tc.ping}.Health)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}
