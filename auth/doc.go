// Package auth issues and verifies HS256 JSON Web Tokens and serves the
// login, token refresh, logout and posts endpoints.
//
// Access tokens are short lived (15 seconds by default). Refresh tokens are
// long lived and only honoured while they are present in a TokenStore, so
// logging out revokes them. Signing keys are looked up by the kid header
// through a SecretStore, which lets keys rotate without invalidating tokens
// signed with older ones.
//
//	issuer, err := auth.NewIssuer(secrets, auth.Config{KeyID: "2024-01"})
//	h := auth.NewHandlers(issuer, auth.NewMemoryTokenStore(), auth.DefaultPosts)
//	err = h.Register(reg)
package auth
