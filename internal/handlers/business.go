package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oda/internal/middleware"
	"github.com/example/oda/internal/models"
	"github.com/example/oda/internal/services"
	"github.com/example/oda/internal/utils"
)

// BusinessHandler manages vendor business onboarding endpoints.
type BusinessHandler struct {
	db       *gorm.DB
	storage  *services.StorageService
	telegram *services.TelegramService
}

// NewBusinessHandler constructs a BusinessHandler.
func NewBusinessHandler(db *gorm.DB, storage *services.StorageService, telegram *services.TelegramService) *BusinessHandler {
	return &BusinessHandler{db: db, storage: storage, telegram: telegram}
}

type registerBusinessRequest struct {
	BusinessName          string              `json:"business_name"`
	BusinessType          models.BusinessType `json:"business_type"`
	BusinessDescription   string              `json:"business_description"`
	TINNumber             string              `json:"tin_number"`
	BusinessLicenseNumber string              `json:"business_license_number"`
	BusinessAddress       string              `json:"business_address"`
	BusinessPhone         string              `json:"business_phone"`
	BusinessEmail         string              `json:"business_email"`
	LocationLat           *float64            `json:"location_lat"`
	LocationLng           *float64            `json:"location_lng"`
}

// RegisterBusiness creates the caller's business profile at status
// pending and promotes them to vendor.
func (h *BusinessHandler) RegisterBusiness(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	var existing models.BusinessProfile
	if err := h.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "user already has a business profile")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	var req registerBusinessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	errs := utils.FieldErrors{}
	if req.BusinessName == "" {
		errs.Add("business_name", "business name is required")
	}
	if !models.ValidBusinessType(req.BusinessType) {
		errs.Add("business_type", "invalid business type")
	}
	if req.TINNumber == "" {
		errs.Add("tin_number", "TIN number is required")
	}
	if req.BusinessLicenseNumber == "" {
		errs.Add("business_license_number", "business license number is required")
	}
	if req.BusinessEmail != "" && !utils.ValidEmail(req.BusinessEmail) {
		errs.Add("business_email", "enter a valid email address")
	}
	if req.BusinessPhone != "" && !utils.ValidPhone(req.BusinessPhone) {
		errs.Add("business_phone", "enter a valid phone number")
	}

	if errs.Empty() {
		if err := h.db.Where("tin_number = ?", req.TINNumber).First(&existing).Error; err == nil {
			errs.Add("tin_number", "a business with this TIN number already exists")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := h.db.Where("business_license_number = ?", req.BusinessLicenseNumber).First(&existing).Error; err == nil {
			errs.Add("business_license_number", "a business with this license number already exists")
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

	profile := models.BusinessProfile{
		UserID:                userID,
		BusinessName:          req.BusinessName,
		BusinessType:          req.BusinessType,
		BusinessDescription:   req.BusinessDescription,
		TINNumber:             req.TINNumber,
		BusinessLicenseNumber: req.BusinessLicenseNumber,
		BusinessAddress:       req.BusinessAddress,
		BusinessPhone:         req.BusinessPhone,
		BusinessEmail:         req.BusinessEmail,
		LocationLat:           req.LocationLat,
		LocationLng:           req.LocationLng,
		VerificationStatus:    models.StatusPending,
	}

	if err := h.db.Create(&profile).Error; err != nil {
		return err
	}

	if err := PromoteToVendor(h.db, &user); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":             true,
		"message":             "business registered successfully",
		"business_id":         profile.ID,
		"verification_status": profile.VerificationStatus,
	})
}

// UploadDocument accepts one multipart verification document, stores the
// file and advances a pending profile to under_review. The transition is
// a one-way ratchet: later uploads never move the status back.
func (h *BusinessHandler) UploadDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var profile models.BusinessProfile
	if err := h.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "no business profile found, please register your business first")
		}
		return err
	}

	if profile.VerificationStatus == models.StatusApproved {
		return fiber.NewError(fiber.StatusBadRequest, "business is already verified, no additional documents needed")
	}

	docType := models.DocumentType(c.FormValue("document_type"))
	if !models.ValidDocumentType(docType) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document type")
	}

	fileHeader, err := c.FormFile("document_file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "document_file is required")
	}

	docName := c.FormValue("document_name")
	if docName == "" {
		docName = fileHeader.Filename
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	key := fmt.Sprintf("business_documents/%s/%s%s", profile.ID, uuid.New(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")

	fileKey, err := h.storage.Save(c.Context(), file, key, contentType)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	document := models.BusinessDocument{
		BusinessProfileID: profile.ID,
		DocumentType:      docType,
		FileKey:           fileKey,
		DocumentName:      docName,
	}

	if err := h.db.Create(&document).Error; err != nil {
		return err
	}

	if profile.VerificationStatus == models.StatusPending {
		profile.VerificationStatus = models.StatusUnderReview
		if err := h.db.Model(&models.BusinessProfile{}).Where("id = ?", profile.ID).
			Update("verification_status", models.StatusUnderReview).Error; err != nil {
			return err
		}
		h.telegram.NotifyBusinessUnderReview(&profile)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":         true,
		"message":         "document uploaded successfully",
		"document_id":     document.ID,
		"document_type":   document.DocumentType,
		"business_status": profile.VerificationStatus,
	})
}

// VerificationStatus returns the caller's profile with document counts
// and verification progress.
func (h *BusinessHandler) VerificationStatus(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var profile models.BusinessProfile
	if err := h.db.Preload("Documents").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "no business profile found")
		}
		return err
	}

	total := len(profile.Documents)
	verified := 0
	documents := make([]fiber.Map, 0, total)
	for _, doc := range profile.Documents {
		if doc.IsVerified {
			verified++
		}

		url, err := h.storage.URL(c.Context(), doc.FileKey)
		if err != nil {
			url = ""
		}

		documents = append(documents, fiber.Map{
			"id":            doc.ID,
			"document_type": doc.DocumentType,
			"document_name": doc.DocumentName,
			"document_url":  url,
			"uploaded_at":   doc.CreatedAt,
			"is_verified":   doc.IsVerified,
		})
	}

	progress := 0.0
	if total > 0 {
		progress = float64(verified) / float64(total) * 100
	}

	return c.JSON(fiber.Map{
		"success":               true,
		"business_profile":      businessProfileResponse(&profile, documents),
		"verification_status":   profile.VerificationStatus,
		"verification_progress": progress,
		"total_documents":       total,
		"verified_documents":    verified,
	})
}

func businessProfileResponse(p *models.BusinessProfile, documents []fiber.Map) fiber.Map {
	resp := fiber.Map{
		"id":                      p.ID,
		"business_name":           p.BusinessName,
		"business_type":           p.BusinessType,
		"business_description":    p.BusinessDescription,
		"tin_number":              p.TINNumber,
		"business_license_number": p.BusinessLicenseNumber,
		"business_address":        p.BusinessAddress,
		"business_phone":          p.BusinessPhone,
		"business_email":          p.BusinessEmail,
		"location_lat":            p.LocationLat,
		"location_lng":            p.LocationLng,
		"verification_status":     p.VerificationStatus,
		"verification_notes":      p.VerificationNotes,
		"verified_at":             p.VerifiedAt,
		"created_at":              p.CreatedAt,
		"updated_at":              p.UpdatedAt,
	}
	if documents != nil {
		resp["documents"] = documents
	}
	if p.User != nil {
		resp["user_email"] = p.User.Email
		resp["user_phone"] = p.User.Phone
	}
	return resp
}

func profileCounts(p *models.BusinessProfile) (total, verified int, progress float64) {
	total = len(p.Documents)
	for _, doc := range p.Documents {
		if doc.IsVerified {
			verified++
		}
	}
	if total > 0 {
		progress = float64(verified) / float64(total) * 100
	}
	return total, verified, progress
}
