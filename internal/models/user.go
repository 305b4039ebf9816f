package models

// UserRole - роль пользователя
type UserRole string

const (
	RoleCitizen  UserRole = "CITIZEN"
	RoleEmployee UserRole = "EMPLOYEE"
	RoleEmployer UserRole = "EMPLOYER" // муниципалитет
)

// Valid сообщает, входит ли роль в допустимый набор
func (r UserRole) Valid() bool {
	switch r {
	case RoleCitizen, RoleEmployee, RoleEmployer:
		return true
	}
	return false
}

// User - участник системы. Points начисляются только за отчеты граждан.
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	Points int      `json:"points"`
	Avatar string   `json:"avatar"`
}
