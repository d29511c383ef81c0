package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"lifeboard/internal/auth"
	"lifeboard/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	if f.verifyFn != nil {
		return f.verifyFn(token)
	}
	return &auth.Claims{UserID: "u-1", Role: "user"}, nil
}

func protectedRouter(v middlewares.TokenVerifier) *gin.Engine {
	r := gin.New()

	mw := middlewares.NewAuthMiddleware(v)

	r.GET("/private", mw.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": id, "role": role})
	})

	return r
}

func TestRequireAuthMissingHeader(t *testing.T) {
	r := protectedRouter(&fakeVerifier{})

	cases := []struct {
		name   string
		header string
	}{
		{name: "absent", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "bearer without token", header: "Bearer "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
			}
		})
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	r := protectedRouter(&fakeVerifier{
		verifyFn: func(string) (*auth.Claims, error) {
			return nil, errors.New("expired")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer bad-token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthStashesIdentity(t *testing.T) {
	r := protectedRouter(&fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			if token != "good-token" {
				t.Fatalf("verifier got token %q", token)
			}
			return &auth.Claims{UserID: "u-42", Role: "admin"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if want := `"userId":"u-42"`; !strings.Contains(body, want) {
		t.Fatalf("body %s missing %s", body, want)
	}
	if want := `"role":"admin"`; !strings.Contains(body, want) {
		t.Fatalf("body %s missing %s", body, want)
	}
}

func TestRequireRole(t *testing.T) {
	mw := middlewares.NewAuthMiddleware(&fakeVerifier{})

	r := gin.New()
	r.GET("/admin",
		middlewares.WithIdentity("u-1", "user"),
		mw.RequireRole("admin"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}
