package contextkeys

// Keys under which the auth middleware stores the caller's identity in gin.Context.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
	RolesKey  = "roles"
)
