package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the lifecycle stage of a business profile.
type VerificationStatus string

const (
	StatusPending     VerificationStatus = "pending"
	StatusUnderReview VerificationStatus = "under_review"
	StatusApproved    VerificationStatus = "approved"
	StatusRejected    VerificationStatus = "rejected"
	StatusSuspended   VerificationStatus = "suspended"
)

// AdminDecidableStatus reports whether s may be set through the admin
// verify endpoint.
func AdminDecidableStatus(s VerificationStatus) bool {
	switch s {
	case StatusApproved, StatusRejected, StatusUnderReview:
		return true
	}
	return false
}

// BusinessType categorizes what a vendor sells.
type BusinessType string

const (
	BusinessRestaurant  BusinessType = "restaurant"
	BusinessGrocery     BusinessType = "grocery"
	BusinessPharmacy    BusinessType = "pharmacy"
	BusinessElectronics BusinessType = "electronics"
	BusinessClothing    BusinessType = "clothing"
	BusinessBakery      BusinessType = "bakery"
	BusinessButchery    BusinessType = "butchery"
	BusinessHardware    BusinessType = "hardware"
	BusinessOther       BusinessType = "other"
)

// ValidBusinessType reports whether t is a known business category.
func ValidBusinessType(t BusinessType) bool {
	switch t {
	case BusinessRestaurant, BusinessGrocery, BusinessPharmacy,
		BusinessElectronics, BusinessClothing, BusinessBakery,
		BusinessButchery, BusinessHardware, BusinessOther:
		return true
	}
	return false
}

// BusinessProfile is a vendor's registered business, one per user.
type BusinessProfile struct {
	BaseModel
	UserID                uuid.UUID          `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	User                  *User              `json:"-"`
	BusinessName          string             `json:"business_name"`
	BusinessType          BusinessType       `gorm:"type:varchar(50)" json:"business_type"`
	BusinessDescription   string             `json:"business_description"`
	TINNumber             string             `gorm:"column:tin_number;uniqueIndex" json:"tin_number"`
	BusinessLicenseNumber string             `gorm:"uniqueIndex" json:"business_license_number"`
	BusinessAddress       string             `json:"business_address"`
	BusinessPhone         string             `json:"business_phone"`
	BusinessEmail         string             `json:"business_email"`
	LocationLat           *float64           `json:"location_lat,omitempty"`
	LocationLng           *float64           `json:"location_lng,omitempty"`
	VerificationStatus    VerificationStatus `gorm:"type:varchar(20);default:pending;index" json:"verification_status"`
	VerificationNotes     string             `json:"verification_notes"`
	VerifiedAt            *time.Time         `json:"verified_at"`
	VerifiedByID          *uuid.UUID         `gorm:"type:uuid" json:"verified_by"`
	Documents             []BusinessDocument `json:"documents,omitempty"`
}

// DocumentType classifies an uploaded verification document.
type DocumentType string

const (
	DocBusinessLicense   DocumentType = "business_license"
	DocTINCertificate    DocumentType = "tin_certificate"
	DocTradePermit       DocumentType = "trade_permit"
	DocHealthCertificate DocumentType = "health_certificate"
	DocFireSafety        DocumentType = "fire_safety"
	DocOther             DocumentType = "other"
)

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case DocBusinessLicense, DocTINCertificate, DocTradePermit,
		DocHealthCertificate, DocFireSafety, DocOther:
		return true
	}
	return false
}

// BusinessDocument is one uploaded piece of verification evidence.
// Documents are never deleted; per-document verification is a flag only.
type BusinessDocument struct {
	BaseModel
	BusinessProfileID uuid.UUID    `gorm:"type:uuid;index" json:"business_profile_id"`
	DocumentType      DocumentType `gorm:"type:varchar(50)" json:"document_type"`
	FileKey           string       `json:"file_key"`
	DocumentName      string       `json:"document_name"`
	IsVerified        bool         `json:"is_verified"`
}
