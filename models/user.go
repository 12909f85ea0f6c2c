package models

import "time"

const UserTable = "users"

// Account approval states.
const (
	UserPending  = "PENDING"
	UserApproved = "APPROVED"
	UserRejected = "REJECTED"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	FullName     string `gorm:"size:255;not null" json:"fullName"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	UniversityID int64  `gorm:"uniqueIndex;not null" json:"universityId"`
	Password     string `gorm:"not null" json:"-"`

	Status string `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Role   string `gorm:"size:20;not null;default:'USER'" json:"role"`

	LastActivityDate *time.Time `gorm:"index" json:"lastActivityDate,omitempty"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	LoginCount       int64      `gorm:"not null;default:0" json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

func (u *User) IsApproved() bool { return u.Status == UserApproved }
func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
