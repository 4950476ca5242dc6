package models

// Role — закрытый набор ролей пользователя
type Role string

const (
	RoleStudent Role = "student"
	RoleSeller  Role = "seller"
	RoleAdmin   Role = "admin"
)

// Valid проверяет, что роль входит в известный набор
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User представляет учетную запись (студент, продавец или администратор)
type User struct {
	ID         int64
	Username   string
	PassHash   []byte
	Role       Role
	RollNumber *string // номер студенческого билета, есть только у студентов
}
