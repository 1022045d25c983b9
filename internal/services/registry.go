package services

// ServiceContainer holds every service the handlers depend on.
type ServiceContainer struct {
	AuthService  AuthService
	UserService  UserService
	TokenService *TokenService
	Credentials  *CredentialStore
}
