package interfaces

// CredentialProvider supplies the opaque bearer credential for backend
// calls. Auth/session management is an external collaborator; the pipeline
// only consumes the token. Implementations must be safe for concurrent use.
type CredentialProvider interface {
	// Token returns the current bearer token, or empty when unauthenticated.
	Token() string
}

// StaticCredential is a CredentialProvider for a fixed token (config-supplied).
type StaticCredential string

func (s StaticCredential) Token() string {
	return string(s)
}
