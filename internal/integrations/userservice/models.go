package userservice

// Роли пользователей в UserService
const (
	RoleStudent = "student"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

// User модель пользователя из UserService
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"` // student | trainer | admin
}

// IsAdmin возвращает true, если пользователь - администратор
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsTrainer возвращает true, если пользователь - тренер
func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

// Trainer профиль тренера с почасовой ставкой
type Trainer struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourlyRate"`
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
