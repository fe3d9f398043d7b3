package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"               json:"id"`
	Name        string    `gorm:"size:200;not null;index"                json:"name"`
	Description string    `gorm:"size:1000"                              json:"description"`
	Price       float64   `gorm:"type:numeric(10,2);not null;check:price > 0" json:"price"`
	Category    string    `gorm:"size:100;index"                         json:"category"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0"    json:"stock"`
	ImageURL    string    `gorm:"size:2048"                              json:"image_url"`
	CreatedAt   time.Time `gorm:"index"                                  json:"created_at"`
	UpdatedAt   time.Time `                                              json:"updated_at"`
}

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"            json:"id"`
	Username     string     `gorm:"size:30;not null;uniqueIndex:idx_users_username" json:"username"`
	Email        string     `gorm:"size:255;not null;uniqueIndex:idx_users_email"   json:"email"`
	PasswordHash string     `gorm:"not null"                            json:"-"`
	Role         string     `gorm:"size:16;not null;default:user"       json:"role"`
	CreatedAt    time.Time  `                                           json:"created_at"`
	LastLogin    *time.Time `                                           json:"last_login"`
}

// PublicUser is the only user shape that leaves the service.
type PublicUser struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
