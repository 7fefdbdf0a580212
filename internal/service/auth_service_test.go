package service_test

import (
	"testing"
	"time"

	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"
)

func newAuthFixture(t *testing.T) (*service.AuthService, *testRepos, *config.Config) {
	t.Helper()
	db := newTestDB(t)
	repos := newTestRepos(db)
	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret-key-32-characters!"
	cfg.JWT.ExpireTime = time.Hour
	return service.NewAuthService(repos.user, cfg), repos, cfg
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, cfg := newAuthFixture(t)

	user := &model.User{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     model.Student,
	}
	if err := svc.Register(user); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}

	token, logged, err := svc.Login("alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("wrong user returned: %+v", logged)
	}

	claims, err := util.ParseJWT(token, cfg.JWT.Secret)
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.Student {
		t.Fatalf("claims wrong: %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	first := &model.User{Name: "A", Email: "dup@example.com", Password: "x", Role: model.Student}
	if err := svc.Register(first); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	second := &model.User{Name: "B", Email: "dup@example.com", Password: "y", Role: model.Teacher}
	if err := svc.Register(second); err != util.ErrEmailRegistered {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
}

func TestLoginRejectsBadPasswordAndDisabled(t *testing.T) {
	svc, repos, _ := newAuthFixture(t)

	user := &model.User{Name: "A", Email: "a@example.com", Password: "right", Role: model.Student}
	if err := svc.Register(user); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := svc.Login("a@example.com", "wrong"); err == nil {
		t.Fatal("expected error for wrong password")
	}
	if _, _, err := svc.Login("missing@example.com", "right"); err == nil {
		t.Fatal("expected error for unknown email")
	}

	user.Disabled = true
	if err := repos.user.Update(user); err != nil {
		t.Fatalf("disable user: %v", err)
	}
	if _, _, err := svc.Login("a@example.com", "right"); err == nil {
		t.Fatal("expected error for disabled account")
	}
}
