package models

import (
	"time"

	"github.com/google/uuid"
)

// Role labels what a user is allowed to do on the marketplace.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleRetailer Role = "retailer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleConsumer, RoleRetailer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// User represents a marketplace account.
type User struct {
	BaseModel
	Username        string   `gorm:"uniqueIndex" json:"username"`
	FullName        string   `json:"full_name"`
	Email           string   `gorm:"uniqueIndex" json:"email"`
	Phone           string   `gorm:"uniqueIndex" json:"phone"`
	PasswordHash    string   `json:"-"`
	Role            Role     `gorm:"type:varchar(10)" json:"role"`
	IsEmailVerified bool     `json:"is_email_verified"`
	IsPhoneVerified bool     `json:"is_phone_verified"`
	IsActive        bool     `gorm:"default:true" json:"is_active"`
	IsStaff         bool     `json:"-"`
	LocationLat     *float64 `json:"location_lat,omitempty"`
	LocationLng     *float64 `json:"location_lng,omitempty"`
}

// IsVerified reports whether at least one contact channel is confirmed.
func (u *User) IsVerified() bool {
	return u.IsEmailVerified || u.IsPhoneVerified
}

// Staff reports whether the user may act on admin routes.
func (u *User) Staff() bool {
	return u.Role == RoleAdmin || u.IsStaff
}

// AuthToken is the single session token issued to a user. Refresh and
// logout operate on this row, so tokens can actually be revoked.
type AuthToken struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Token  string    `gorm:"uniqueIndex" json:"-"`
}

// OTPType says which contact channel an OTP proves control of.
type OTPType string

const (
	OTPTypeEmail OTPType = "email"
	OTPTypePhone OTPType = "phone"
)

// OTPVerification keeps track of one-time codes sent to users.
type OTPVerification struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	OTPCode    string    `gorm:"type:varchar(6)" json:"-"`
	OTPType    OTPType   `gorm:"type:varchar(10)" json:"otp_type"`
	Contact    string    `gorm:"index" json:"contact"`
	IsVerified bool      `json:"is_verified"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its validity window.
func (o *OTPVerification) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// PasswordResetToken tracks a forgot-password session for one contact.
type PasswordResetToken struct {
	BaseModel
	Contact   string     `gorm:"index" json:"contact"`
	Token     string     `gorm:"uniqueIndex" json:"-"`
	Code      string     `gorm:"type:varchar(6)" json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
