package domain

// Identity is what a verified access token asserts about the caller.
type Identity struct {
	UserID   string
	TenantID string
	Role     Role
}

// RequestMeta is recorded alongside refresh tokens and revocations.
type RequestMeta struct {
	IP        string
	UserAgent string
}
