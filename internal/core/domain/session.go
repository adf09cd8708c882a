package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionState represents the lifecycle state of a browser session as the
// portal believes it to be.
type SessionState string

const (
	StateUninitialized   SessionState = "uninitialized"
	StateLoading         SessionState = "loading"
	StateAuthenticated   SessionState = "authenticated"
	StateUnauthenticated SessionState = "unauthenticated"
)

// validStateTransitions defines the allowed session state machine moves.
// Startup always passes through loading; login/register may flip an
// unauthenticated session straight to authenticated.
var validStateTransitions = map[SessionState][]SessionState{
	StateUninitialized:   {StateLoading},
	StateLoading:         {StateAuthenticated, StateUnauthenticated},
	StateAuthenticated:   {StateUnauthenticated},
	StateUnauthenticated: {StateAuthenticated},
}

// CanTransitionTo reports whether moving from the current state to next is a
// legal transition.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range validStateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SessionState) String() string {
	return string(s)
}

// SessionRecord is the durable shape of a session: the three values the
// persisted store holds together. All three present is the sole persisted
// invariant; a record missing any of them is treated as absent.
type SessionRecord struct {
	AccessToken  string
	RefreshToken string
	UserJSON     string
}

// Complete reports whether all three persisted values are present.
func (r SessionRecord) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && r.UserJSON != ""
}

// TokenExpiry extracts the exp claim from a JWT without verifying its
// signature. The portal holds no signing secret (token issuance is the
// backend's), so the claim is only trusted for storage TTL hints.
func TokenExpiry(raw string) (time.Time, bool) {
	var claims jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
