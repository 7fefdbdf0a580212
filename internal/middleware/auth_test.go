package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/middleware"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api", middleware.AuthMiddleware(cfg))
	api.GET("/me", func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID})
	})
	api.GET("/teacher-only", middleware.RoleMiddleware(model.Teacher), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func testToken(t *testing.T, cfg *config.Config, role model.UserRole) string {
	t.Helper()
	user := &model.User{Role: role, Email: "u@example.com"}
	user.ID = 7
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret-key-32-characters!"
	router := newAuthRouter(cfg)

	// 无 token
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	// 伪造 token
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}

	// 合法 token，Header 方式
	token := testToken(t, cfg, model.Student)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 合法 token，query 方式
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me?token="+token, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 via query token, got %d", w.Code)
	}
}

func TestRoleMiddleware(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret-key-32-characters!"
	router := newAuthRouter(cfg)

	cases := []struct {
		role model.UserRole
		want int
	}{
		{model.Student, http.StatusForbidden},
		{model.Teacher, http.StatusOK},
		{model.Admin, http.StatusOK}, // 管理员放行一切
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/teacher-only", nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, cfg, c.role))
		router.ServeHTTP(w, req)
		if w.Code != c.want {
			t.Fatalf("role %s: expected %d, got %d", c.role, c.want, w.Code)
		}
	}
}
