package entity

// Roles reconocidos por el núcleo de producción.
const (
	RoleAdmin       = "admin"
	RoleSupervisor  = "supervisor"
	RoleInspector   = "inspector"
	RoleVendor      = "vendor"
	RoleStorekeeper = "bodeguero"
)

// Actor quién ejecuta una operación (viene de los claims del JWT).
type Actor struct {
	UserID string
	Name   string
	Role   string
}

// Label nombre para auditoría.
func (a Actor) Label() string {
	if a.Name != "" {
		return a.Name
	}
	if a.UserID != "" {
		return a.UserID
	}
	return "system"
}

// IsAdmin indica si el actor puede ejecutar operaciones administrativas.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
