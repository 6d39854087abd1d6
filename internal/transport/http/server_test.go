package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"incident-training-service/internal/app"
	"incident-training-service/internal/domain"
	"incident-training-service/internal/infra/memory"
)

func newTestServices() Services {
	store := memory.NewStore()
	cache := memory.NewScenarioRepository(store, time.Minute)
	reports := app.NewReportService(store, store, store)
	feeds := app.NewFeedService(memory.NewFeedStore(), reports, nil)
	return Services{
		Scenarios: app.NewScenarioService(store, cache, store),
		Directory: app.NewDirectoryService(store),
		Incidents: app.NewIncidentService(store, cache, store, feeds),
		Reports:   reports,
		Feeds:     feeds,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer(newTestServices(), nil))
	t.Cleanup(server.Close)
	return server
}

// call sends body as JSON and decodes the response into out when non-nil.
func call(t *testing.T, server *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type fixture struct {
	roleID     string
	userID     string
	scenario   domain.Scenario
	incidentID string
}

func seedFixture(t *testing.T, server *httptest.Server) fixture {
	t.Helper()
	var role domain.Role
	if code := call(t, server, http.MethodPost, "/api/roles", map[string]any{"name": "SOC Analyst", "clearance": "Confidential"}, &role); code != http.StatusCreated {
		t.Fatalf("create role: status %d", code)
	}
	if role.Clearance != domain.ClearanceConfidential {
		t.Fatalf("clearance not parsed: %v", role.Clearance)
	}
	var user domain.User
	if code := call(t, server, http.MethodPost, "/api/users", map[string]any{"username": "alice", "email": "alice@example.com", "roleId": role.ID}, &user); code != http.StatusCreated {
		t.Fatalf("create user: status %d", code)
	}

	var created map[string]string
	spec := map[string]any{
		"title": "Credential stuffing",
		"risk":  "high",
		"questions": []map[string]any{
			{
				"text":     "Block the source?",
				"priority": "Critical",
				"roleIds":  []string{role.ID},
				"answerOptions": []map[string]any{
					{"text": "Rate-limit and block", "weight": 10, "isCorrect": true},
					{"text": "Do nothing", "weight": 0},
				},
			},
		},
	}
	if code := call(t, server, http.MethodPost, "/api/scenarios", spec, &created); code != http.StatusCreated {
		t.Fatalf("create scenario: status %d", code)
	}
	var scenario domain.Scenario
	if code := call(t, server, http.MethodGet, "/api/scenarios/"+created["id"], nil, &scenario); code != http.StatusOK {
		t.Fatalf("get scenario: status %d", code)
	}

	var incident incidentView
	if code := call(t, server, http.MethodPost, "/api/incidents", map[string]any{"scenarioId": scenario.ID}, &incident); code != http.StatusCreated {
		t.Fatalf("start incident: status %d", code)
	}
	return fixture{roleID: role.ID, userID: user.ID, scenario: scenario, incidentID: incident.ID}
}

func TestCreateScenarioRejectsInvalidDefinition(t *testing.T) {
	server := newTestServer(t)
	var body map[string]string
	spec := map[string]any{
		"title": "Broken",
		"questions": []map[string]any{
			{"text": "Q", "answerOptions": []map[string]any{{"text": "A"}}},
		},
	}
	code := call(t, server, http.MethodPost, "/api/scenarios", spec, &body)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(body["error"], "invalid scenario definition") {
		t.Fatalf("expected validation reason, got %q", body["error"])
	}

	if code := call(t, server, http.MethodPost, "/api/scenarios", map[string]any{"title": "x", "bogus": 1}, nil); code != http.StatusBadRequest {
		t.Fatalf("expected unknown field to be rejected, got %d", code)
	}
}

func TestIncidentResponseFlow(t *testing.T) {
	server := newTestServer(t)
	fx := seedFixture(t, server)
	q := fx.scenario.Questions[0]
	if q.MaxPoints != 10 || q.Priority != domain.PriorityCritical {
		t.Fatalf("unexpected stored question %+v", q)
	}

	var detail domain.Detail
	code := call(t, server, http.MethodPost, "/api/incidents/"+fx.incidentID+"/responses", map[string]any{
		"userId":         fx.userID,
		"questionId":     q.ID,
		"answerOptionId": q.Options[0].ID,
	}, &detail)
	if code != http.StatusCreated {
		t.Fatalf("record response: status %d", code)
	}
	if detail.Points != 10 || detail.Verdict != domain.VerdictCorrect {
		t.Fatalf("unexpected detail %+v", detail)
	}

	var incident incidentView
	if code := call(t, server, http.MethodGet, "/api/incidents/"+fx.incidentID, nil, &incident); code != http.StatusOK {
		t.Fatalf("get incident: status %d", code)
	}
	if incident.EffectiveStatus != domain.StatusCompleted || incident.Status != domain.StatusInProgress {
		t.Fatalf("expected stored InProgress and effective Completed, got %v/%v", incident.Status, incident.EffectiveStatus)
	}

	var outcomes []domain.Outcome
	if code := call(t, server, http.MethodGet, "/api/results", nil, &outcomes); code != http.StatusOK {
		t.Fatalf("results: status %d", code)
	}
	if len(outcomes) != 1 || outcomes[0].Pct != 100 || outcomes[0].Status != domain.OutcomePass || outcomes[0].RoleName != "SOC Analyst" {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}

	var perIncident []domain.Outcome
	if code := call(t, server, http.MethodGet, "/api/incidents/"+fx.incidentID+"/results", nil, &perIncident); code != http.StatusOK || len(perIncident) != 1 {
		t.Fatalf("incident results: status %d, %d outcomes", code, len(perIncident))
	}

	var userDetail domain.UserDetail
	if code := call(t, server, http.MethodGet, "/api/users/"+fx.userID+"/results", nil, &userDetail); code != http.StatusOK {
		t.Fatalf("user results: status %d", code)
	}
	if len(userDetail.CompletedIncidents) != 1 || len(userDetail.PendingIncidents) != 0 {
		t.Fatalf("unexpected user detail %+v", userDetail)
	}

	if code := call(t, server, http.MethodPost, "/api/incidents/"+fx.incidentID+"/complete", nil, &incident); code != http.StatusOK {
		t.Fatalf("complete: status %d", code)
	}
	var errBody map[string]string
	code = call(t, server, http.MethodPost, "/api/incidents/"+fx.incidentID+"/responses", map[string]any{
		"userId":         fx.userID,
		"questionId":     q.ID,
		"answerOptionId": q.Options[1].ID,
	}, &errBody)
	if code != http.StatusConflict {
		t.Fatalf("expected 409 after completion, got %d (%v)", code, errBody)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	server := newTestServer(t)
	fx := seedFixture(t, server)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown scenario", http.MethodGet, "/api/scenarios/nope", nil, http.StatusNotFound},
		{"unknown incident", http.MethodGet, "/api/incidents/nope", nil, http.StatusNotFound},
		{"unknown incident results", http.MethodGet, "/api/incidents/nope/results", nil, http.StatusNotFound},
		{"unknown user results", http.MethodGet, "/api/users/nope/results", nil, http.StatusNotFound},
		{"start without scenario", http.MethodPost, "/api/incidents", map[string]any{}, http.StatusBadRequest},
		{"blank username", http.MethodPost, "/api/users", map[string]any{"username": " "}, http.StatusBadRequest},
		{"bad clearance", http.MethodPost, "/api/roles", map[string]any{"name": "x", "clearance": "TopSecret"}, http.StatusBadRequest},
		{"unknown question", http.MethodPost, "/api/incidents/" + fx.incidentID + "/responses", map[string]any{"userId": fx.userID, "questionId": "nope", "answerText": "x"}, http.StatusNotFound},
		{"unknown user answer", http.MethodPost, "/api/incidents/" + fx.incidentID + "/responses", map[string]any{"userId": "nope", "questionId": "q", "answerText": "x"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := call(t, server, tt.method, tt.path, tt.body, nil); code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)
	resp, err := server.Client().Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
