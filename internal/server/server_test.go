package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/geeddi-ai/geeddi-server/internal/course"
	"github.com/geeddi-ai/geeddi-server/internal/feedback"
	"github.com/geeddi-ai/geeddi-server/internal/session"
	"github.com/geeddi-ai/geeddi-server/internal/topics"
)

type stubGenerator struct {
	course *course.Course
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, _, _ string) (*course.Course, error) {
	return g.course, g.err
}

func (g *stubGenerator) Explain(_ context.Context, _ course.QuizItem, _, _ string) (string, error) {
	return "because", nil
}

func testCourse() *course.Course {
	return &course.Course{
		Title:           "Intro to Go",
		Outline:         []string{"basics"},
		Lessons:         []course.Lesson{{Title: "L1", Content: "c"}},
		LessonSummaries: []string{"s"},
		Summary:         "done",
		Quiz: []course.QuizItem{
			{Question: "Q1", Type: course.TypeTrueFalse, Options: []string{"True", "False"}, CorrectAnswer: "True"},
		},
	}
}

func newTestServer(t *testing.T, gen session.Generator) (*Server, *session.Manager) {
	t.Helper()

	manager, err := session.NewManager(session.ManagerConfig{Generator: gen, StageDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	catalog, err := topics.NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	srv, err := New(Config{
		Sessions: manager,
		Feedback: feedback.NewMemoryStore(),
		Topics:   catalog,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, manager
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, mux *http.ServeMux, lang string) string {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/sessions", fmt.Sprintf(`{"language":%q}`, lang))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	return resp.ID
}

// waitGenerated polls the session until generation settles.
func waitGenerated(t *testing.T, m *session.Manager, id string) {
	t.Helper()
	sess, ok := m.Get(id)
	if !ok {
		t.Fatalf("session %s not found", id)
	}
	deadline := time.Now().Add(2 * time.Second)
	for sess.Snapshot().Generating || sess.Snapshot().Course == nil && sess.Snapshot().ErrorMessage == "" {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for generation")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{course: testCourse()})
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{course: testCourse()})
	srv.ready = map[string]ReadyCheck{
		"database": func(context.Context) error { return errors.New("connection refused") },
	}

	rec := doJSON(t, srv.Routes(), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "database") {
		t.Errorf("body %s should name the failing check", rec.Body)
	}
}

func TestTopics_UnknownLanguageFallsBack(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{course: testCourse()})
	mux := srv.Routes()

	rec := doJSON(t, mux, http.MethodGet, "/api/topics?lang=fr", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Language string   `json:"language"`
		Topics   []string `json:"topics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding topics: %v", err)
	}
	if resp.Language != "en" {
		t.Errorf("language = %q, want en fallback", resp.Language)
	}
	if len(resp.Topics) == 0 {
		t.Error("expected default topics")
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{course: testCourse()})
	mux := srv.Routes()

	id := createSession(t, mux, "so")

	rec := doJSON(t, mux, http.MethodGet, "/api/sessions/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get session status = %d", rec.Code)
	}
	var resp struct {
		State session.State `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if resp.State.Language != "so" {
		t.Errorf("language = %q, want so", resp.State.Language)
	}

	rec = doJSON(t, mux, http.MethodDelete, "/api/sessions/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, mux, http.MethodGet, "/api/sessions/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestGenerateCourse(t *testing.T) {
	srv, manager := newTestServer(t, &stubGenerator{course: testCourse()})
	mux := srv.Routes()
	id := createSession(t, mux, "en")

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/course", `{"topic":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty topic status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/course", `{"topic":"Go"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body %s", rec.Code, rec.Body)
	}

	waitGenerated(t, manager, id)

	rec = doJSON(t, mux, http.MethodGet, "/api/sessions/"+id, "")
	var resp struct {
		State session.State `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if resp.State.Course == nil || resp.State.Course.Title != "Intro to Go" {
		t.Errorf("course not present in state: %+v", resp.State)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/sessions/missing/course", `{"topic":"Go"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", rec.Code)
	}
}

func TestGenerateCourse_ConflictWhileInFlight(t *testing.T) {
	block := make(chan struct{})
	gen := &blockingGenerator{course: testCourse(), block: block}
	srv, _ := newTestServer(t, gen)
	mux := srv.Routes()
	id := createSession(t, mux, "en")

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/course", `{"topic":"Go"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	rec = doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/course", `{"topic":"Go"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("second request status = %d, want 409", rec.Code)
	}
	close(block)
}

type blockingGenerator struct {
	course *course.Course
	block  chan struct{}
}

func (g *blockingGenerator) Generate(_ context.Context, _, _ string) (*course.Course, error) {
	<-g.block
	return g.course, nil
}

func (g *blockingGenerator) Explain(_ context.Context, _ course.QuizItem, _, _ string) (string, error) {
	return "", nil
}

func TestAnswer(t *testing.T) {
	srv, manager := newTestServer(t, &stubGenerator{course: testCourse()})
	mux := srv.Routes()
	id := createSession(t, mux, "en")

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/quiz/0/answer", `{"option":"True"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("answer before course status = %d, want 409", rec.Code)
	}

	doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/course", `{"topic":"Go"}`)
	waitGenerated(t, manager, id)

	rec = doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/quiz/9/answer", `{"option":"True"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/quiz/0/answer", `{"option":"Maybe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown option status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/quiz/0/answer", `{"option":"True"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Result  string `json:"result"`
		Applied bool   `json:"applied"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding answer: %v", err)
	}
	if resp.Result != "correct" || !resp.Applied {
		t.Errorf("result = %q applied = %v, want correct/true", resp.Result, resp.Applied)
	}

	// Second selection on the same question is a no-op.
	rec = doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/quiz/0/answer", `{"option":"False"}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding answer: %v", err)
	}
	if resp.Applied {
		t.Error("re-answering must not apply")
	}
}

func TestExport(t *testing.T) {
	srv, manager := newTestServer(t, &stubGenerator{course: testCourse()})
	mux := srv.Routes()
	id := createSession(t, mux, "en")

	rec := doJSON(t, mux, http.MethodGet, "/api/sessions/"+id+"/export", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("export before course status = %d, want 409", rec.Code)
	}

	doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/course", `{"topic":"Go"}`)
	waitGenerated(t, manager, id)

	rec = doJSON(t, mux, http.MethodGet, "/api/sessions/"+id+"/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/markdown" {
		t.Errorf("Content-Type = %q, want text/markdown", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "Geeddi-AI-Course-Intro-to-Go.md") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "# Intro to Go") {
		t.Errorf("markdown body missing title: %s", rec.Body)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/sessions/"+id+"/export?format=plaintext", "")
	if got := rec.Header().Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", got)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/sessions/"+id+"/export?format=docx", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", rec.Code)
	}
}

func TestFeedback(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{course: testCourse()})
	mux := srv.Routes()

	rec := doJSON(t, mux, http.MethodGet, "/api/feedback?courseTitle=Intro+to+Go", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp feedbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding feedback: %v", err)
	}
	if resp.Found {
		t.Error("feedback should not exist yet")
	}

	rec = doJSON(t, mux, http.MethodPut, "/api/feedback?courseTitle=Intro+to+Go", `{"rating":0,"comment":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid rating status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPut, "/api/feedback?courseTitle=Intro+to+Go&lessonIndex=2", `{"rating":4,"comment":"nice"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body)
	}

	// Lesson feedback does not leak into the course-level key.
	rec = doJSON(t, mux, http.MethodGet, "/api/feedback?courseTitle=Intro+to+Go", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding feedback: %v", err)
	}
	if resp.Found {
		t.Error("course-level feedback should still be missing")
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/feedback?courseTitle=Intro+to+Go&lessonIndex=2", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding feedback: %v", err)
	}
	if !resp.Found || resp.Rating != 4 || resp.Comment != "nice" {
		t.Errorf("feedback = %+v, want found rating 4 comment nice", resp)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/feedback", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing courseTitle status = %d, want 400", rec.Code)
	}
}

func TestEvents_StreamsGeneration(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{course: testCourse()})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	mux := srv.Routes()
	id := createSession(t, mux, "en")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + id + "/events"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.CloseNow()

	rec := doJSON(t, mux, http.MethodPost, "/api/sessions/"+id+"/course", `{"topic":"Go"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("generate status = %d", rec.Code)
	}

	var ev session.Event
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if ev.Type != session.EventGenerationStarted {
		t.Errorf("first event = %q, want %q", ev.Type, session.EventGenerationStarted)
	}

	for ev.Type != session.EventGenerationSucceeded {
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			t.Fatalf("reading event: %v", err)
		}
	}
	if ev.Course == nil || ev.Course.Title != "Intro to Go" {
		t.Errorf("succeeded event missing course: %+v", ev)
	}
}

func TestEvents_UnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{course: testCourse()})
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/sessions/missing/events", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
