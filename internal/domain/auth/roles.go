package auth

import "fmt"

// Role is the staff role stored on a clinician account and carried in tokens.
type Role string

const (
	// RoleClinician may manage patients and run lesion analyses.
	RoleClinician Role = "clinician"
	// RoleAssistant keeps patient records and reads results but cannot submit images.
	RoleAssistant Role = "assistant"
)

// Scope names one protected capability of the API.
type Scope string

const (
	ScopePatientsRead    Scope = "patients:read"
	ScopePatientsWrite   Scope = "patients:write"
	ScopeDetectionsRead  Scope = "detections:read"
	ScopeDetectionsWrite Scope = "detections:write"
)

var roleScopes = map[Role][]Scope{
	RoleClinician: {ScopePatientsRead, ScopePatientsWrite, ScopeDetectionsRead, ScopeDetectionsWrite},
	RoleAssistant: {ScopePatientsRead, ScopePatientsWrite, ScopeDetectionsRead},
}

// ParseRole validates raw; an empty value means RoleClinician.
func ParseRole(raw string) (Role, error) {
	if raw == "" {
		return RoleClinician, nil
	}
	role := Role(raw)
	if _, ok := roleScopes[role]; !ok {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Allows reports whether the role grants scope. Unknown roles grant nothing.
func (r Role) Allows(scope Scope) bool {
	for _, s := range roleScopes[r] {
		if s == scope {
			return true
		}
	}
	return false
}

// Scopes lists what the role grants.
func (r Role) Scopes() []Scope {
	return append([]Scope(nil), roleScopes[r]...)
}
