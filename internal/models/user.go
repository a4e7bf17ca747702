package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Staff roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleKitchen = "kitchen"
)

// ValidRole reports whether role is one of the staff roles
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleKitchen:
		return true
	}
	return false
}

// User is a staff member allowed into the kitchen or managers' dashboards
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:'kitchen'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SetPassword stores the bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
