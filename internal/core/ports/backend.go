package ports

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
)

// Credentials are the login form fields, forwarded to the backend verbatim.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration carries the self-service registration fields. Registration is
// patient-only; the backend assigns the role.
type Registration struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	PasswordConfirm  string `json:"password2"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	BloodType        string `json:"blood_type,omitempty"`
	Allergies        string `json:"allergies,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
}

// TokenPair is the backend's issued credential pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResult is the backend's response to a successful login or register.
type AuthResult struct {
	Message string             `json:"message,omitempty"`
	User    domain.UserProfile `json:"user"`
	Tokens  TokenPair          `json:"tokens"`
}

// AuthAPI is the slice of the clinic backend the session layer depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
	// Profile revalidates an access token by fetching the current user.
	Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error)
	// UpdateProfile applies a partial profile update and returns the full
	// replacement profile.
	UpdateProfile(ctx context.Context, accessToken string, patch map[string]any) (*domain.UserProfile, error)
}

// ResourceAPI is the generic passthrough surface for per-role collections.
// Payload shapes are the backend's contract; the portal only displays them,
// so responses stay raw.
type ResourceAPI interface {
	Get(ctx context.Context, accessToken, path string, query url.Values) (json.RawMessage, error)
	Post(ctx context.Context, accessToken, path string, body any) (json.RawMessage, error)
	Patch(ctx context.Context, accessToken, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, accessToken, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, accessToken, path string) error
}

// Backend is the complete upstream API client contract.
type Backend interface {
	AuthAPI
	ResourceAPI
}
