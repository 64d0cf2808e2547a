// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Identity

// Principal is the authenticated caller attached to a request context.
//
// It is built from verified token claims alone. No database read happens on
// the request path.
type Principal struct {
	UserID      string
	Email       string
	Nickname    string
	IsSuperuser bool
	Authorities []Authority
}

// HasAuthority reports whether p was granted authority.
func (p *Principal) HasAuthority(authority Authority) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// # Request Authentication Result

// AuthState is the outcome of inspecting a request's bearer token.
type AuthState int

const (
	// AuthNoToken means the request carried no bearer token.
	AuthNoToken AuthState = iota
	// AuthInvalidToken means a bearer token was present but unusable.
	AuthInvalidToken
	// AuthValidToken means the token verified and was not revoked.
	AuthValidToken
)

// String returns the state as used in logs and metric labels.
func (s AuthState) String() string {
	switch s {
	case AuthNoToken:
		return "no_token"
	case AuthInvalidToken:
		return "invalid_token"
	case AuthValidToken:
		return "valid_token"
	default:
		return "unknown"
	}
}

// AuthResult is produced once per request by the authentication middleware and
// consumed by authorization checks downstream.
type AuthResult struct {
	State AuthState

	// Principal is set only when State is AuthValidToken.
	Principal *Principal

	// Reason explains an AuthInvalidToken result for logging.
	Reason string
}

// Authenticated reports whether r carries a usable identity.
func (r AuthResult) Authenticated() bool {
	return r.State == AuthValidToken && r.Principal != nil
}
