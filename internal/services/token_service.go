package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oda/internal/models"
	"github.com/example/oda/internal/utils"
)

// TokenService manages the one session token each user holds. Tokens are
// signed JWTs persisted in auth_tokens so logout and refresh revoke them.
type TokenService struct {
	db        *gorm.DB
	jwtSecret string
	ttl       time.Duration
}

// NewTokenService constructs a TokenService.
func NewTokenService(db *gorm.DB, jwtSecret string, ttl time.Duration) *TokenService {
	return &TokenService{db: db, jwtSecret: jwtSecret, ttl: ttl}
}

// GetOrCreate returns the user's existing session token, or issues a new
// one when none exists. Login is idempotent this way.
func (s *TokenService) GetOrCreate(userID uuid.UUID) (string, error) {
	var existing models.AuthToken
	err := s.db.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		if _, parseErr := utils.ParseToken(s.jwtSecret, existing.Token); parseErr == nil {
			return existing.Token, nil
		}
		// Stored token expired, replace it.
		return s.Refresh(userID)
	}
	if err != gorm.ErrRecordNotFound {
		return "", err
	}

	signed, err := utils.GenerateToken(s.jwtSecret, userID, s.ttl)
	if err != nil {
		return "", err
	}

	record := models.AuthToken{UserID: userID, Token: signed}
	if err := s.db.Create(&record).Error; err != nil {
		return "", err
	}
	return signed, nil
}

// Refresh invalidates the current token and issues a new one. The delete
// and create run in one transaction so no stale token survives.
func (s *TokenService) Refresh(userID uuid.UUID) (string, error) {
	signed, err := utils.GenerateToken(s.jwtSecret, userID, s.ttl)
	if err != nil {
		return "", err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		record := models.AuthToken{UserID: userID, Token: signed}
		return tx.Create(&record).Error
	})
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Revoke deletes the user's session token. Idempotent: revoking an
// already logged-out user is not an error.
func (s *TokenService) Revoke(userID uuid.UUID) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error
}

// Valid reports whether the presented token is the user's live session
// token.
func (s *TokenService) Valid(userID uuid.UUID, token string) bool {
	var record models.AuthToken
	err := s.db.Where("user_id = ? AND token = ?", userID, token).First(&record).Error
	return err == nil
}
