package rbac

// Team roles carried in the bearer token.
const (
	RoleRep     = "rep"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
