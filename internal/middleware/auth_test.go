package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type fakeTokens map[string]*util.Claims

func (f fakeTokens) ParseToken(ctx context.Context, token string) (*util.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

type fakeCSRF struct{ valid string }

func (f fakeCSRF) ValidateCSRF(ctx context.Context, userID uint, token string) error {
	if token != f.valid {
		return util.ErrInvalidCSRFToken
	}
	return nil
}

func newRouter(g Guards) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) { util.Success(c, nil) }
	r.GET("/public", append(g.Chain(Public), ok)...)
	r.GET("/me", append(g.Chain(SignedIn), ok)...)
	r.POST("/learn", append(g.Chain(StudentOnly), ok)...)
	r.POST("/author", append(g.Chain(EducatorOnly), ok)...)
	return r
}

func do(r http.Handler, method, path, token, csrf string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set(util.CSRFHeader, csrf)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPolicies(t *testing.T) {
	tokens := fakeTokens{
		"student":  {UserID: 1, Role: model.Student},
		"educator": {UserID: 2, Role: model.Educator},
	}
	r := newRouter(Guards{Tokens: tokens, CSRF: fakeCSRF{valid: "ok"}})

	cases := []struct {
		method, path, token, csrf string
		want                      int
	}{
		{"GET", "/public", "", "", http.StatusOK},
		{"GET", "/me", "", "", http.StatusUnauthorized},
		{"GET", "/me", "forged", "", http.StatusUnauthorized},
		{"GET", "/me", "student", "", http.StatusOK},
		{"POST", "/learn", "student", "ok", http.StatusOK},
		{"POST", "/learn", "educator", "ok", http.StatusForbidden},
		{"POST", "/author", "student", "ok", http.StatusForbidden},
		{"POST", "/author", "educator", "ok", http.StatusOK},
		{"POST", "/author", "educator", "", http.StatusForbidden},
		{"POST", "/author", "educator", "stale", http.StatusForbidden},
		{"POST", "/author", "", "ok", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if got := do(r, tc.method, tc.path, tc.token, tc.csrf); got != tc.want {
			t.Errorf("%s %s token=%q csrf=%q: got %d, want %d", tc.method, tc.path, tc.token, tc.csrf, got, tc.want)
		}
	}
}

func TestPolicies_CSRFDisabled(t *testing.T) {
	r := newRouter(Guards{Tokens: fakeTokens{"educator": {UserID: 2, Role: model.Educator}}})
	if got := do(r, "POST", "/author", "educator", ""); got != http.StatusOK {
		t.Fatalf("expected 200 with csrf disabled, got %d", got)
	}
}
