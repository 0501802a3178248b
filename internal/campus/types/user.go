package types

// Role is the user's standing on campus. Staff and admins operate scan
// stations; members are scanned.
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// CanOperateStation reports whether the role may look users up and record
// access events.
func (r Role) CanOperateStation() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User is the public view of an account. It never carries a credential.
type User struct {
	ID      int64  `json:"user_id"`
	Name    string `json:"nombre"`
	Email   string `json:"correo"`
	Program string `json:"carrera"`
	Role    Role   `json:"rol"`
	Code    string `json:"codigo_barra"`
}

type RegisterRequest struct {
	Name     string `json:"nombre" validate:"required,max=120"`
	Email    string `json:"correo" validate:"required,email,max=254"`
	Code     string `json:"codigo_barra" validate:"required,max=64"`
	Program  string `json:"carrera" validate:"required,max=120"`
	Role     Role   `json:"rol" validate:"required,oneof=member staff admin"`
	Password string `json:"contrasena" validate:"required,min=8,max=72"`
}

type RegisterResponse struct {
	Success bool `json:"success"`
}

type LoginRequest struct {
	Email    string `json:"correo" validate:"required,email"`
	Password string `json:"contrasena" validate:"required"`
}

type LoginResponse struct {
	User  User   `json:"usuario"`
	Token string `json:"token,omitempty"`
}

// UserResponse wraps a lookup result the way the station expects it.
type UserResponse struct {
	User *User `json:"usuario"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
