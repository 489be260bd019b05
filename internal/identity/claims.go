package identity

// VerifiedClaims is the decoded, provider-verified claim set for one request.
// UID is the only required field; the rest are best-effort profile hints.
// Raw keeps the full claim map for downstream consumers that need
// provider-specific claims this struct does not name.
type VerifiedClaims struct {
	UID            string
	Email          string
	DisplayName    string
	PhotoURL       string
	SignInProvider string

	Raw map[string]any
}

// claimsFromRaw lifts the named fields out of a raw provider claim map.
// Claim names follow the provider's ID-token layout: "user_id"/"sub" for the
// subject, "name", "picture", and a nested "firebase.sign_in_provider" tag.
func claimsFromRaw(raw map[string]any) VerifiedClaims {
	c := VerifiedClaims{Raw: raw}

	if v, ok := raw["user_id"].(string); ok && v != "" {
		c.UID = v
	} else if v, ok := raw["sub"].(string); ok {
		c.UID = v
	}
	if v, ok := raw["email"].(string); ok {
		c.Email = v
	}
	if v, ok := raw["name"].(string); ok {
		c.DisplayName = v
	}
	if v, ok := raw["picture"].(string); ok {
		c.PhotoURL = v
	}
	if fb, ok := raw["firebase"].(map[string]any); ok {
		if v, ok := fb["sign_in_provider"].(string); ok {
			c.SignInProvider = v
		}
	}
	return c
}
