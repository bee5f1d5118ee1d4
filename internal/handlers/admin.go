package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/oda/internal/middleware"
	"github.com/example/oda/internal/models"
	"github.com/example/oda/internal/services"
	"github.com/example/oda/internal/utils"
)

// AdminHandler manages staff-only business verification endpoints.
type AdminHandler struct {
	db       *gorm.DB
	telegram *services.TelegramService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, telegram *services.TelegramService) *AdminHandler {
	return &AdminHandler{db: db, telegram: telegram}
}

// ListPendingBusinesses returns profiles awaiting a decision, newest
// first, paginated.
func (h *AdminHandler) ListPendingBusinesses(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.BusinessProfile{}).
		Where("verification_status IN ?", []models.VerificationStatus{
			models.StatusPending, models.StatusUnderReview,
		})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var profiles []models.BusinessProfile
	if err := query.Preload("Documents").Preload("User").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&profiles).Error; err != nil {
		return err
	}

	items := make([]fiber.Map, 0, len(profiles))
	for i := range profiles {
		profile := &profiles[i]
		resp := businessProfileResponse(profile, nil)
		totalDocs, verifiedDocs, progress := profileCounts(profile)
		resp["total_documents"] = totalDocs
		resp["verified_documents"] = verifiedDocs
		resp["verification_progress"] = progress
		items = append(items, resp)
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"pending_businesses": items,
		"count":              total,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateVerificationRequest struct {
	VerificationStatus models.VerificationStatus `json:"verification_status"`
	VerificationNotes  string                    `json:"verification_notes"`
}

// UpdateVerificationStatus records an admin decision. Approval stamps
// verified_at and verified_by; notes are always persisted.
func (h *AdminHandler) UpdateVerificationStatus(c *fiber.Ctx) error {
	adminID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	businessID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid business id")
	}

	var req updateVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !models.AdminDecidableStatus(req.VerificationStatus) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid verification status")
	}

	var profile models.BusinessProfile
	if err := h.db.First(&profile, "id = ?", businessID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "business not found")
		}
		return err
	}

	profile.VerificationStatus = req.VerificationStatus
	profile.VerificationNotes = req.VerificationNotes

	if req.VerificationStatus == models.StatusApproved {
		now := time.Now()
		profile.VerifiedAt = &now
		profile.VerifiedByID = &adminID
	}

	if err := h.db.Save(&profile).Error; err != nil {
		return err
	}

	h.telegram.NotifyBusinessDecision(&profile, req.VerificationStatus)

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "business verification status updated to " + string(req.VerificationStatus),
		"business_id": profile.ID,
		"new_status":  req.VerificationStatus,
	})
}
