package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oda/internal/models"
	"github.com/example/oda/internal/utils"
)

// OTPValidity is how long a code stays usable after issuing.
const OTPValidity = 5 * time.Minute

// OTPService issues and verifies one-time codes.
type OTPService struct {
	db *gorm.DB
}

// NewOTPService constructs an OTPService.
func NewOTPService(db *gorm.DB) *OTPService {
	return &OTPService{db: db}
}

// Issue creates a fresh OTP for the given user and contact. Older codes
// for the same contact are left alone; Verify always picks the latest.
func (s *OTPService) Issue(userID uuid.UUID, otpType models.OTPType, contact string) (*models.OTPVerification, error) {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return nil, err
	}

	otp := &models.OTPVerification{
		UserID:    userID,
		OTPCode:   code,
		OTPType:   otpType,
		Contact:   contact,
		ExpiresAt: time.Now().Add(OTPValidity),
	}

	if err := s.db.Create(otp).Error; err != nil {
		return nil, err
	}

	return otp, nil
}

// Verify consumes the most recent unverified code matching contact, code
// and type. Returns gorm.ErrRecordNotFound when nothing matches and
// ErrOTPExpired when the match is stale.
func (s *OTPService) Verify(contact, code string, otpType models.OTPType) (*models.OTPVerification, error) {
	var otp models.OTPVerification
	err := s.db.Where("contact = ? AND otp_code = ? AND otp_type = ? AND is_verified = ?",
		contact, code, otpType, false).
		Order("created_at desc").
		First(&otp).Error
	if err != nil {
		return nil, err
	}

	if otp.Expired(time.Now()) {
		return nil, ErrOTPExpired
	}

	otp.IsVerified = true
	if err := s.db.Save(&otp).Error; err != nil {
		return nil, err
	}

	return &otp, nil
}
