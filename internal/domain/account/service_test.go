package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fonoapp/suite/internal/platform/auth"
	"github.com/fonoapp/suite/internal/platform/db"
)

type mockRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[int64]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context) ([]*User, error) {
	var out []*User
	for i := int64(1); i <= m.nextID; i++ {
		if u, ok := m.users[i]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestService() *Service {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewService(newMockRepo(), issuer, "default")
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &RegisterInput{
		FullName: "Ana Mora",
		Email:    "Ana@Example.com",
		Password: "s3cret1",
		Role:     auth.RoleTherapist,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("expected lower-cased email, got %s", u.Email)
	}
	if u.PasswordHash == "s3cret1" {
		t.Error("password must be hashed")
	}

	token, err := svc.Login(ctx, &Credentials{Username: "ana@example.com", Password: "s3cret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.AccessToken == "" || token.TokenType != "bearer" {
		t.Errorf("unexpected token response: %+v", token)
	}
}

func TestService_Login_TokenScopedToRequestTenant(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(newMockRepo(), issuer, "default")

	if _, err := svc.Register(context.Background(), &RegisterInput{
		FullName: "Ana", Email: "a@b.c", Password: "s3cret1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// A login resolved to a tenant stamps that tenant into the token.
	ctx := db.WithTenant(context.Background(), "clinic_norte")
	token, err := svc.Login(ctx, &Credentials{Username: "a@b.c", Password: "s3cret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := issuer.Verify(token.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.TenantID != "clinic_norte" {
		t.Errorf("expected tenant clinic_norte, got %q", claims.TenantID)
	}

	// Without a resolved tenant the default applies.
	token, err = svc.Login(context.Background(), &Credentials{Username: "a@b.c", Password: "s3cret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err = issuer.Verify(token.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.TenantID != "default" {
		t.Errorf("expected default tenant, got %q", claims.TenantID)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := RegisterInput{FullName: "Ana", Email: "ana@example.com", Password: "s3cret1"}
	if _, err := svc.Register(ctx, &in); err != nil {
		t.Fatalf("register: %v", err)
	}

	dup := RegisterInput{FullName: "Other", Email: "ANA@example.com", Password: "s3cret2"}
	if _, err := svc.Register(ctx, &dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []RegisterInput{
		{FullName: "", Email: "a@b.c", Password: "s3cret1"},
		{FullName: "Ana", Email: "not-an-email", Password: "s3cret1"},
		{FullName: "Ana", Email: "a@b.c", Password: "short"},
		{FullName: "Ana", Email: "a@b.c", Password: "s3cret1", Role: "wizard"},
	}
	for i, in := range cases {
		var ve *ValidationError
		if _, err := svc.Register(ctx, &in); !errors.As(err, &ve) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestService_Register_DefaultRole(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), &RegisterInput{
		FullName: "Ana", Email: "a@b.c", Password: "s3cret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != auth.RoleTherapist {
		t.Errorf("expected default role therapist, got %s", u.Role)
	}
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterInput{FullName: "Ana", Email: "a@b.c", Password: "s3cret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, &Credentials{Username: "a@b.c", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, &Credentials{Username: "missing@b.c", Password: "s3cret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
