package auth

// Identity is a verified caller identity. The fields are unexported so an
// Identity carrying a user ID can only be produced by this package after
// token verification; request payloads can never forge one. The zero value
// means unauthenticated.
type Identity struct {
	uid         string
	displayName string
}

// UID returns the authenticated principal id.
func (id Identity) UID() string { return id.uid }

// DisplayName returns the display name carried by the verified token.
func (id Identity) DisplayName() string { return id.displayName }

// IsZero reports whether the identity is absent (unauthenticated request).
func (id Identity) IsZero() bool { return id.uid == "" }
