package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/oda/internal/config"
	"github.com/example/oda/internal/middleware"
	"github.com/example/oda/internal/models"
	"github.com/example/oda/internal/services"
	"github.com/example/oda/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	otps     *services.OTPService
	tokens   *services.TokenService
	notifier *services.Notifier
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, otps *services.OTPService, tokens *services.TokenService, notifier *services.Notifier) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, otps: otps, tokens: tokens, notifier: notifier}
}

type registerRequest struct {
	Username        string      `json:"username"`
	FullName        string      `json:"full_name"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	Password        string      `json:"password"`
	PasswordConfirm string      `json:"password_confirm"`
	Role            models.Role `json:"role"`
}

// Register creates a new user account and issues one OTP per contact
// channel. Dispatch is best-effort; registration succeeds regardless.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	errs := utils.FieldErrors{}
	if req.Username == "" {
		errs.Add("username", "username is required")
	}
	if !utils.ValidEmail(req.Email) {
		errs.Add("email", "enter a valid email address")
	}
	if !utils.ValidPhone(req.Phone) {
		errs.Add("phone", "enter a valid phone number")
	}
	if msg := utils.CheckPasswordStrength(req.Password); msg != "" {
		errs.Add("password", msg)
	}
	if req.Password != req.PasswordConfirm {
		errs.Add("password_confirm", "passwords don't match")
	}
	if req.Role == "" {
		req.Role = models.RoleConsumer
	}
	if !models.ValidRole(req.Role) {
		errs.Add("role", "invalid role")
	}

	if errs.Empty() {
		var existing models.User
		if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			errs.Add("email", "a user with this email already exists")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := h.db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
			errs.Add("phone", "a user with this phone number already exists")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := h.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
			errs.Add("username", "a user with this username already exists")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
	}

	if !errs.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"errors":  errs,
		})
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         req.Role,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	emailOTP, err := h.otps.Issue(user.ID, models.OTPTypeEmail, user.Email)
	if err != nil {
		return err
	}
	phoneOTP, err := h.otps.Issue(user.ID, models.OTPTypePhone, user.Phone)
	if err != nil {
		return err
	}

	h.notifier.SendOTP(emailOTP)
	h.notifier.SendOTP(phoneOTP)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "user registered successfully, please verify your email and phone",
		"user_id": user.ID,
		"email":   user.Email,
		"phone":   user.Phone,
	})
}

type loginRequest struct {
	EmailOrPhone string `json:"email_or_phone"`
	Password     string `json:"password"`
}

// Login authenticates with email or phone plus password. An identifier
// containing "@" is treated as an email, anything else as a phone number.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.EmailOrPhone == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email_or_phone and password are required")
	}

	column := "phone"
	if strings.Contains(req.EmailOrPhone, "@") {
		column = "email"
	}

	var user models.User
	if err := h.db.Where(column+" = ?", req.EmailOrPhone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	if !user.IsActive {
		return fiber.NewError(fiber.StatusBadRequest, "user account is disabled")
	}

	if !user.IsVerified() {
		return fiber.NewError(fiber.StatusUnauthorized, "please verify your email or phone number before logging in")
	}

	token, err := h.tokens.GetOrCreate(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "login successful",
		"token":   token,
		"user":    publicUser(&user),
	})
}

type verifyOTPRequest struct {
	Contact string         `json:"contact"`
	OTPCode string         `json:"otp_code"`
	OTPType models.OTPType `json:"otp_type"`
}

// VerifyOTP consumes the latest matching unverified code and flips the
// user's corresponding verification flag.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.OTPType != models.OTPTypeEmail && req.OTPType != models.OTPTypePhone {
		return fiber.NewError(fiber.StatusBadRequest, "otp_type must be email or phone")
	}

	otp, err := h.otps.Verify(req.Contact, req.OTPCode, req.OTPType)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "invalid OTP")
		}
		if err == services.ErrOTPExpired {
			return fiber.NewError(fiber.StatusBadRequest, "OTP has expired")
		}
		return err
	}

	flag := "is_phone_verified"
	label := "phone"
	if otp.OTPType == models.OTPTypeEmail {
		flag = "is_email_verified"
		label = "email"
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", otp.UserID).
		Update(flag, true).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": label + " verified successfully",
	})
}

type resendOTPRequest struct {
	Contact string         `json:"contact"`
	OTPType models.OTPType `json:"otp_type"`
}

// ResendOTP issues a fresh code for a contact. Earlier codes stay in
// place; verification always picks the latest one.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	column := ""
	switch req.OTPType {
	case models.OTPTypeEmail:
		column = "email"
	case models.OTPTypePhone:
		column = "phone"
	default:
		return fiber.NewError(fiber.StatusBadRequest, "otp_type must be email or phone")
	}

	var user models.User
	if err := h.db.Where(column+" = ?", req.Contact).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	otp, err := h.otps.Issue(user.ID, req.OTPType, req.Contact)
	if err != nil {
		return err
	}

	h.notifier.SendOTP(otp)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to " + req.Contact,
	})
}

// RefreshToken invalidates the current session token and issues a new one.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	token, err := h.tokens.Refresh(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "token refreshed successfully",
		"token":   token,
	})
}

// Logout deletes the session token. Logging out twice is not an error.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.tokens.Revoke(userID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "logout successful",
	})
}

// PromoteToVendor upgrades a consumer or retailer to the vendor role.
// Admins keep their role. Exposed here so role mutation stays an explicit
// auth-component transition rather than a hidden side effect.
func PromoteToVendor(db *gorm.DB, user *models.User) error {
	if user.Role == models.RoleVendor || user.Role == models.RoleAdmin {
		return nil
	}
	user.Role = models.RoleVendor
	return db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("role", models.RoleVendor).Error
}

func publicUser(u *models.User) fiber.Map {
	return fiber.Map{
		"id":                u.ID,
		"username":          u.Username,
		"full_name":         u.FullName,
		"email":             u.Email,
		"phone":             u.Phone,
		"role":              u.Role,
		"is_email_verified": u.IsEmailVerified,
		"is_phone_verified": u.IsPhoneVerified,
		"created_at":        u.CreatedAt,
	}
}
