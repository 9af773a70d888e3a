package models

import (
	"gorm.io/gorm"
)

// User types
const (
	UserTypeSeeker    = "seeker"
	UserTypeDeveloper = "developer"
	UserTypeAgent     = "agent"
	UserTypeAgency    = "agency"
)

// User is the minimal account record the engine needs to attribute
// authenticated actions. Registration, password handling and token issuance
// live in the auth service; this engine only verifies bearer credentials
// against it.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	UserType     string `gorm:"not null;default:'seeker'" json:"user_type"` // seeker, developer, agent, agency

	IsActive     bool `gorm:"default:true" json:"is_active"`
	TokenVersion int  `gorm:"default:0" json:"-"`
}
