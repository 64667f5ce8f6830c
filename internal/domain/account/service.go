package account

import (
	"context"
	"errors"
	"strings"

	"github.com/fonoapp/suite/internal/platform/auth"
	"github.com/fonoapp/suite/internal/platform/db"
)

// ValidationError marks a bad registration input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

var validRoles = map[string]bool{
	auth.RoleAdmin:     true,
	auth.RoleTherapist: true,
	auth.RoleAssistant: true,
	auth.RolePatient:   true,
}

// Service handles registration and authentication of staff accounts.
type Service struct {
	repo          Repository
	issuer        *auth.TokenIssuer
	defaultTenant string
}

func NewService(repo Repository, issuer *auth.TokenIssuer, defaultTenant string) *Service {
	return &Service{repo: repo, issuer: issuer, defaultTenant: defaultTenant}
}

// Register creates a new account. Emails are unique; a duplicate yields
// ErrEmailTaken.
func (s *Service) Register(ctx context.Context, in *RegisterInput) (*User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.FullName == "" {
		return nil, &ValidationError{Field: "full_name", Msg: "is required"}
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, &ValidationError{Field: "email", Msg: "must be a valid email"}
	}
	if len(in.Password) < 6 {
		return nil, &ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}
	if in.Role == "" {
		in.Role = auth.RoleTherapist
	}
	if !validRoles[in.Role] {
		return nil, &ValidationError{Field: "role", Msg: "is not a known role"}
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: hash,
	}
	// The unique index on email backs up the existence check against
	// concurrent registrations.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues an access token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, creds *Credentials) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Username))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, creds.Password) {
		return nil, ErrInvalidCredentials
	}

	// The token is scoped to the tenant the login request resolved to, so
	// later requests carrying it land on the same schema.
	tenant := db.TenantFromContext(ctx)
	if tenant == "" {
		tenant = s.defaultTenant
	}
	token, err := s.issuer.Issue(u.ID, u.Email, u.Role, tenant)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// GetByEmail resolves the account behind an authenticated request.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// List returns all accounts ordered by id.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}
