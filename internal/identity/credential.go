package identity

import "strings"

type CredentialKind int

const (
	CredentialNone CredentialKind = iota
	CredentialBearer
	CredentialSessionCookie
)

// Credential is the single candidate credential extracted from a request.
// It is derived per request and never persisted.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// ExtractCredential applies the hybrid credential policy, bearer first:
// a well-formed Authorization header wins, otherwise the session cookie,
// otherwise no credential. A malformed Authorization header (wrong field
// count or scheme) counts as absent and does not short-circuit the fallback.
func ExtractCredential(authorization, sessionCookie string) Credential {
	if tok := parseBearer(authorization); tok != "" {
		return Credential{Kind: CredentialBearer, Value: tok}
	}
	if sessionCookie != "" {
		return Credential{Kind: CredentialSessionCookie, Value: sessionCookie}
	}
	return Credential{Kind: CredentialNone}
}

// parseBearer returns the token from "Bearer <token>" or "" when the header
// is absent or malformed. Exactly two whitespace-separated fields, scheme
// compared case-insensitively.
func parseBearer(authorization string) string {
	if authorization == "" {
		return ""
	}
	parts := strings.Fields(authorization)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
