package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecedu/pathway-advisor/internal/advisor"
	"github.com/aztecedu/pathway-advisor/internal/catalog"
	"github.com/aztecedu/pathway-advisor/internal/domain"
	"github.com/aztecedu/pathway-advisor/internal/identity"
	"github.com/aztecedu/pathway-advisor/internal/intake"
	"github.com/aztecedu/pathway-advisor/internal/llm"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Lesson{
		{Course: "Pre-HSE Math", Subject: "Math", Unit: "Foundations", Lesson: "Fractions", Code: "M-101", Description: "fractions", Pillar: catalog.PillarAcademic},
		{Course: "CBCS Certification", Subject: "Coding", Unit: "Unit 2", Lesson: "Medical Coding Sets", Code: "C-22", Description: "coding and coding guidelines", Pillar: catalog.PillarCTE},
	})
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	// Stand-in for the identity middleware: a fixed learner ID.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(identity.WithLearnerID(req.Context(), "anon_test")))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func offlineHandler(cat *catalog.Catalog) *Handler {
	svc := advisor.NewService(intake.FollowupStatic, nil, llm.Config{Enabled: false}, nil, nil, nil, nil)
	return NewHandler(svc, nil, cat, nil)
}

func TestChatWelcomesEmptyBody(t *testing.T) {
	router := newTestRouter(offlineHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, intake.WelcomeMessage, resp.Reply)
}

func TestChatMalformedJSONStillReplies(t *testing.T) {
	router := newTestRouter(offlineHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("not json at all"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, intake.WelcomeMessage, resp.Reply)
}

func TestChatAdvancesIntake(t *testing.T) {
	router := newTestRouter(offlineHandler(nil))

	body, err := json.Marshal(map[string]interface{}{
		"messages": []map[string]string{
			{"role": "user", "content": "CBCS"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Reply, "high-school diploma")
}

func TestChatRateLimited(t *testing.T) {
	svc := advisor.NewService(intake.FollowupStatic, nil, llm.Config{Enabled: false}, nil, nil, nil, nil)
	h := NewHandler(svc, nil, nil, NewRateLimiter(1, time.Minute))
	router := newTestRouter(h)

	for i, wantStatus := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, wantStatus, rec.Code, "request %d", i)
	}
}

func TestChatRecoversWithApology(t *testing.T) {
	// A nil service panics on use; the handler must answer with the fixed
	// apology instead of crashing the request.
	router := newTestRouter(NewHandler(nil, nil, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp chatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, apologyReply, resp.Reply)
}

func TestHealthEndpoint(t *testing.T) {
	r := chi.NewRouter()
	NewHealthHandler(nil, nil).RegisterHealth(r)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
}

func TestNormalizeTranscript(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Transcript
	}{
		{
			name: "messages not an array",
			raw:  `"surprise"`,
			want: nil,
		},
		{
			name: "non-string content becomes empty",
			raw:  `[{"role": "user", "content": 42}]`,
			want: domain.Transcript{{Role: domain.RoleLearner, Text: ""}},
		},
		{
			name: "unknown role treated as learner",
			raw:  `[{"role": "system", "content": "hello"}]`,
			want: domain.Transcript{{Role: domain.RoleLearner, Text: "hello"}},
		},
		{
			name: "assistant role preserved",
			raw:  `[{"role": "assistant", "content": "hi"}, {"role": "user", "content": "yo"}]`,
			want: domain.Transcript{
				{Role: domain.RoleAssistant, Text: "hi"},
				{Role: domain.RoleLearner, Text: "yo"},
			},
		},
		{
			name: "non-object entry becomes blank learner message",
			raw:  `["just a string"]`,
			want: domain.Transcript{{Role: domain.RoleLearner, Text: ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeTranscript(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConversationsUnavailableWithoutStore(t *testing.T) {
	router := newTestRouter(offlineHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchLessons(t *testing.T) {
	router := newTestRouter(offlineHandler(testCatalog()))

	req := httptest.NewRequest(http.MethodGet, "/api/lessons/search?q=coding&pillar=cte", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Lessons []catalog.Lesson `json:"lessons"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Lessons, 1)
	assert.Equal(t, "C-22", resp.Lessons[0].Code)
}

func TestSearchLessonsWithoutCatalog(t *testing.T) {
	router := newTestRouter(offlineHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/lessons/search?q=coding", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCourseSequence(t *testing.T) {
	router := newTestRouter(offlineHandler(testCatalog()))

	req := httptest.NewRequest(http.MethodGet, "/api/courses/Pre-HSE%20Math/sequence", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/courses/Nope/sequence", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyLocatorEndpoint(t *testing.T) {
	router := newTestRouter(offlineHandler(testCatalog()))

	req := httptest.NewRequest(http.MethodPost, "/api/tools/locator", strings.NewReader(`{"reading": 7, "math": 8}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var placement catalog.Placement
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&placement))
	assert.Equal(t, "Intermediate", placement.EntryUnit)

	// Out-of-range scores are a client error.
	req = httptest.NewRequest(http.MethodPost, "/api/tools/locator", strings.NewReader(`{"reading": 99, "math": 8}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemediationEndpointValidation(t *testing.T) {
	router := newTestRouter(offlineHandler(testCatalog()))

	req := httptest.NewRequest(http.MethodPost, "/api/tools/remediation", strings.NewReader(`{"exam": "CBCS"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"exam": "CBCS", "domain_scores": {"coding and coding guidelines": 50}}`
	req = httptest.NewRequest(http.MethodPost, "/api/tools/remediation", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan catalog.RemediationPlan
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&plan))
	assert.Contains(t, plan.RecommendedLessons, "C-22")
}

func TestProgramRequirementsEndpoint(t *testing.T) {
	router := newTestRouter(offlineHandler(testCatalog()))

	req := httptest.NewRequest(http.MethodGet, "/api/tools/program-requirements", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var reqs catalog.ProgramRequirements
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reqs))
	assert.Equal(t, "CBCS", reqs.Exam)
	assert.Equal(t, 160, reqs.HoursRequired)
}
