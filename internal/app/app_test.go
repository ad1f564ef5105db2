package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/testutil"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Notices []util.Notice   `json:"notices"`
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
	csrf  string
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		JWT:       config.JWTConfig{Secret: "integration-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir(), MaxUploadMB: 1},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
		Security:  config.SecurityConfig{CSRFEnabled: true, CSRFTTL: time.Hour},
		Learning:  config.LearningConfig{QuizAttemptLimit: 3, UnpassedQuizPenalty: 5},
	}
	return build(cfg, testutil.NewDB(t), nil, testutil.NewMemoryStore())
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, "/api"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.csrf != "" {
		req.Header.Set(util.CSRFHeader, c.csrf)
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		c.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func (c *client) must(method, path string, body interface{}, want int, out interface{}) envelope {
	c.t.Helper()
	code, env := c.do(method, path, body)
	if code != want {
		c.t.Fatalf("%s %s: status %d (%s), want %d", method, path, code, env.Message, want)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return env
}

// signUp registers and signs in a user, returning an authenticated client.
func signUp(t *testing.T, a *App, email, role string) *client {
	t.Helper()
	anon := &client{t: t, h: a.Router}
	anon.must("POST", "/signup", gin.H{
		"firstName": "T", "lastName": role, "email": email, "password": "password123", "role": role,
	}, http.StatusCreated, nil)

	var login struct {
		Token     string `json:"token"`
		CSRFToken string `json:"csrfToken"`
	}
	anon.must("POST", "/signin", gin.H{"email": email, "password": "password123"}, http.StatusOK, &login)
	return &client{t: t, h: a.Router, token: login.Token, csrf: login.CSRFToken}
}

type idOnly struct {
	ID uint `json:"id"`
}

// seedQuizCourse builds a one-page course whose only chapter has the
// Paris/42 quiz.
func seedQuizCourse(t *testing.T, educator *client) (course, chapter, page idOnly, questions [2]idOnly) {
	t.Helper()
	educator.must("POST", "/createnewcourse", gin.H{"name": "Geography"}, http.StatusCreated, &course)
	educator.must("POST", "/addchapters", gin.H{"courseId": course.ID, "chapterName": "Capitals", "description": "d"}, http.StatusCreated, &chapter)
	educator.must("POST", "/addpages", gin.H{"chapterId": chapter.ID, "title": "France", "content": "Paris"}, http.StatusCreated, &page)
	educator.must("POST", fmt.Sprintf("/chapters/%d/quiz/add", chapter.ID), gin.H{"question": "Capital of France?", "answer": "Paris"}, http.StatusCreated, &questions[0])
	educator.must("POST", fmt.Sprintf("/chapters/%d/quiz/add", chapter.ID), gin.H{"question": "Six times seven?", "answer": "42"}, http.StatusCreated, &questions[1])
	return
}

func TestLearningFlow(t *testing.T) {
	a := newTestApp(t)
	educator := signUp(t, a, "teacher@example.com", "educator")
	student := signUp(t, a, "student@example.com", "student")
	course, chapter, page, qs := seedQuizCourse(t, educator)

	env := student.must("POST", fmt.Sprintf("/enroll/%d", course.ID), nil, http.StatusOK, nil)
	if len(env.Notices) != 1 || env.Notices[0].Message != "enrolled successfully" {
		t.Fatalf("unexpected notices %+v", env.Notices)
	}
	env = student.must("POST", fmt.Sprintf("/enroll/%d", course.ID), nil, http.StatusOK, nil)
	if len(env.Notices) != 1 || env.Notices[0].Message != "already enrolled" {
		t.Fatalf("second enroll should be reported as existing, got %+v", env.Notices)
	}

	student.must("POST", fmt.Sprintf("/pages/%d/complete", page.ID), nil, http.StatusOK, nil)

	var view struct {
		Enrolled bool `json:"enrolled"`
		Progress struct {
			Percent int `json:"percent"`
		} `json:"progress"`
	}
	student.must("GET", fmt.Sprintf("/courses/%d", course.ID), nil, http.StatusOK, &view)
	if !view.Enrolled || view.Progress.Percent != 95 {
		t.Fatalf("expected 95%% (one unpassed quiz), got %+v", view)
	}

	wrong := gin.H{"answers": []gin.H{{"questionId": qs[0].ID, "answer": "paris"}, {"questionId": qs[1].ID, "answer": "41"}}}
	var result struct {
		Score    int    `json:"score"`
		State    string `json:"state"`
		Rejected bool   `json:"rejected"`
		Answers  []struct {
			Answer string `json:"answer"`
		} `json:"answers"`
		AttemptsUsed int `json:"attemptsUsed"`
	}
	quizPath := fmt.Sprintf("/chapters/%d/quiz", chapter.ID)
	for i := 0; i < 3; i++ {
		student.must("POST", quizPath, wrong, http.StatusOK, &result)
	}
	if result.Score != 1 || result.State != "exhausted" || result.AttemptsUsed != 3 {
		t.Fatalf("unexpected state after three attempts %+v", result)
	}

	result.Answers = nil
	student.must("POST", quizPath, wrong, http.StatusOK, &result)
	if !result.Rejected || result.AttemptsUsed != 3 || len(result.Answers) != 2 {
		t.Fatalf("fourth submission should be rejected with answers, got %+v", result)
	}
}

func TestAuthorizationTable(t *testing.T) {
	a := newTestApp(t)
	educator := signUp(t, a, "owner@example.com", "educator")
	other := signUp(t, a, "other@example.com", "educator")
	student := signUp(t, a, "learner@example.com", "student")
	anon := &client{t: t, h: a.Router}
	course, chapter, page, _ := seedQuizCourse(t, educator)

	cases := []struct {
		name   string
		c      *client
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"anonymous dashboard", anon, "GET", "/dashboard", nil, http.StatusUnauthorized},
		{"student creates course", student, "POST", "/createnewcourse", gin.H{"name": "Mine"}, http.StatusForbidden},
		{"educator enrolls", educator, "POST", fmt.Sprintf("/enroll/%d", course.ID), nil, http.StatusForbidden},
		{"non-owner renames", other, "POST", fmt.Sprintf("/courses/%d/edit", course.ID), gin.H{"name": "Stolen"}, http.StatusForbidden},
		{"non-owner deletes chapter", other, "POST", fmt.Sprintf("/chapters/%d/delete", chapter.ID), nil, http.StatusForbidden},
		{"non-owner edits page", other, "POST", fmt.Sprintf("/pages/%d/edit", page.ID), gin.H{"title": "x", "content": "y"}, http.StatusForbidden},
		{"unenrolled completes page", student, "POST", fmt.Sprintf("/pages/%d/complete", page.ID), nil, http.StatusForbidden},
		{"unknown course", student, "GET", "/courses/99999", nil, http.StatusNotFound},
		{"malformed id", student, "GET", "/courses/abc", nil, http.StatusBadRequest},
		{"duplicate course name", other, "POST", "/createnewcourse", gin.H{"name": "Geography"}, http.StatusConflict},
		{"missing chapter name", educator, "POST", "/addchapters", gin.H{"courseId": course.ID}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if code, env := tc.c.do(tc.method, tc.path, tc.body); code != tc.want {
			t.Errorf("%s: got %d (%s), want %d", tc.name, code, env.Message, tc.want)
		}
	}

	var outline struct {
		Course struct {
			Name string `json:"name"`
		} `json:"course"`
	}
	educator.must("GET", fmt.Sprintf("/courses/%d", course.ID), nil, http.StatusOK, &outline)
	if outline.Course.Name != "Geography" {
		t.Fatalf("course changed by a rejected request: %+v", outline)
	}
}

func TestCSRFRejectedBeforeHandler(t *testing.T) {
	a := newTestApp(t)
	educator := signUp(t, a, "csrf@example.com", "educator")

	forged := &client{t: t, h: a.Router, token: educator.token, csrf: "forged"}
	code, env := forged.do("POST", "/createnewcourse", gin.H{"name": "Forged"})
	if code != http.StatusForbidden || env.Message != "invalid csrf token" {
		t.Fatalf("expected 403 invalid csrf token, got %d %q", code, env.Message)
	}

	var courses []idOnly
	educator.must("GET", "/mycourses", nil, http.StatusOK, &courses)
	if len(courses) != 0 {
		t.Fatalf("forged request reached the handler: %+v", courses)
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	a := newTestApp(t)
	student := signUp(t, a, "bye@example.com", "student")

	student.must("GET", "/profile", nil, http.StatusOK, nil)
	student.must("POST", "/signout", nil, http.StatusOK, nil)
	if code, _ := student.do("GET", "/profile", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after sign-out, got %d", code)
	}
}

func TestSignInFailureIsUniform(t *testing.T) {
	a := newTestApp(t)
	signUp(t, a, "known@example.com", "student")
	anon := &client{t: t, h: a.Router}

	code1, env1 := anon.do("POST", "/signin", gin.H{"email": "known@example.com", "password": "nope-nope"})
	code2, env2 := anon.do("POST", "/signin", gin.H{"email": "ghost@example.com", "password": "nope-nope"})
	if code1 != http.StatusUnauthorized || code2 != http.StatusUnauthorized || env1.Message != env2.Message {
		t.Fatalf("expected identical 401s, got %d %q / %d %q", code1, env1.Message, code2, env2.Message)
	}
}

func TestEveryRouteHasAPolicy(t *testing.T) {
	a := newTestApp(t)
	registered := map[string]bool{}
	for _, r := range a.Router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, r := range routeTable(&controllers{}) {
		if !registered[r.method+" /api"+r.path] {
			t.Errorf("route %s %s missing from router", r.method, r.path)
		}
	}
}
