package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"proplead/analytics"
	"proplead/config"
	"proplead/models"
	"proplead/utils"
)

type LeadController struct {
	DB           *gorm.DB
	Logger       *log.Logger
	ScoreWeights analytics.ScoreWeights
}

func NewLeadController(db *gorm.DB, logger *log.Logger) *LeadController {
	return &LeadController{
		DB:           db,
		Logger:       logger,
		ScoreWeights: analytics.DefaultScoreWeights(),
	}
}

// RecordAction is the write path: it folds one interaction event into the
// matching lead, creating the lead when the (seeker, listing) pair has none
// yet. The fold runs under a row lock so two concurrent actions on the same
// pair never lose an update.
func (lc *LeadController) RecordAction(c *fiber.Ctx) error {
	seekerID, _ := c.Locals("seekerID").(string)
	isAnonymous, _ := c.Locals("isAnonymous").(bool)
	if seekerID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Seeker identity is required", utils.ErrInvalidInput)
	}

	var input struct {
		ListingID   *uint  `json:"listing_id"`
		ListerID    uint   `json:"lister_id" validate:"required"`
		ListerType  string `json:"lister_type" validate:"required,oneof=developer agent agency"`
		ContextType string `json:"context_type" validate:"required,oneof=listing development profile"`
		ActionType  string `json:"action_type" validate:"required"`
		Channel     string `json:"channel" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// listing_id may be absent only for profile-level leads
	if input.ContextType != models.ContextTypeProfile && input.ListingID == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "listing_id is required for listing and development contexts", utils.ErrInvalidInput)
	}

	action := models.LeadAction{
		ActionType: input.ActionType,
		Channel:    input.Channel,
		Timestamp:  time.Now(),
	}
	if err := action.Validate(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid action", err)
	}

	// Soft listing validation: a stale listing reference is logged, and only
	// blocks the action when no lead exists for the pair yet.
	listingMissing := false
	if input.ListingID != nil {
		var count int64
		if err := lc.DB.Model(&models.Listing{}).Where("id = ?", *input.ListingID).Count(&count).Error; err == nil && count == 0 {
			listingMissing = true
			utils.LogEvent("action_on_missing_listing", map[string]interface{}{
				"listing_id": *input.ListingID,
				"seeker_id":  seekerID,
			})
		}
	}

	pairQuery, pairArgs := leadPairConditions(seekerID, input.ListingID, input.ListerID)

	var lead models.Lead
	fold := func() error {
		lead = models.Lead{}
		return lc.DB.Transaction(func(tx *gorm.DB) error {
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where(pairQuery, pairArgs...).
				First(&lead).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if listingMissing {
					return utils.ErrNotFound
				}
				lead = models.Lead{
					SeekerID:    seekerID,
					ListingID:   input.ListingID,
					ListerID:    input.ListerID,
					ListerType:  input.ListerType,
					ContextType: input.ContextType,
					IsAnonymous: isAnonymous,
				}
				if _, err := lead.TrackStatus(models.LeadStatusNew); err != nil {
					return err
				}
			case err != nil:
				return err
			}

			if err := lead.AppendAction(action); err != nil {
				return err
			}

			actions, err := lead.Actions()
			if err != nil {
				return err
			}
			lead.LeadScore = analytics.Score(actions, lc.ScoreWeights)

			return tx.Save(&lead).Error
		})
	}

	err := fold()
	// Two concurrent first actions for the same pair both miss the locked
	// read and race the insert; the unique pair index rejects the loser, and
	// a second pass finds the committed row and folds into it.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = fold()
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Listing not found", err)
		}
		utils.LogError("record_action_failed", err, map[string]interface{}{
			"seeker_id": seekerID,
		})
		return utils.ErrorResponse(c, utils.HTTPStatus(err), "Failed to record action", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// leadPairConditions identifies every row belonging to one lead pair.
// Listing-level leads are keyed on (seeker, listing); profile-level leads
// have no listing, so they are keyed per lister to keep one lister's profile
// actions from folding into another's row.
func leadPairConditions(seekerID string, listingID *uint, listerID uint) (string, []interface{}) {
	if listingID != nil {
		return "seeker_id = ? AND listing_id = ?", []interface{}{seekerID, *listingID}
	}
	return "seeker_id = ? AND listing_id IS NULL AND lister_id = ?", []interface{}{seekerID, listerID}
}

// GetLeads returns the lister's leads, most recent activity first, paginated.
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 1
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	var total int64
	if err := lc.DB.Model(&models.Lead{}).Where("lister_id = ?", user.ID).Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	var leads []models.Lead
	if err := lc.DB.Where("lister_id = ?", user.ID).
		Order("last_action_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("Listing").
		Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	return c.JSON(utils.SuccessResponse(utils.PaginatedResponse{
		Data:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND lister_id = ?", leadID, user.ID).
		Preload("Listing").
		First(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", utils.ErrNotFound)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// UpdateLeadStatus applies a status change to every lead sharing the seed
// lead's pair, not just the addressed row. Duplicate rows accumulated through
// historical inconsistency are kept consistent this way; callers must expect
// updated_count > 1. Each row commits in its own transaction, so on a
// mid-group failure the reported count matches what actually persisted.
func (lc *LeadController) UpdateLeadStatus(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var input struct {
		Status string `json:"status" validate:"required,min=2,max=40"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var seed models.Lead
	if err := lc.DB.Where("id = ? AND lister_id = ?", leadID, user.ID).First(&seed).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", utils.ErrNotFound)
	}

	pairQuery, pairArgs := leadPairConditions(seed.SeekerID, seed.ListingID, seed.ListerID)
	var ids []uint
	if err := lc.DB.Model(&models.Lead{}).
		Where(pairQuery, pairArgs...).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve lead group", err)
	}

	updated, err := applyStatusToGroup(ids, input.Status, lc.applyStatus)
	if err != nil {
		var partial *utils.PartialWriteError
		if errors.As(err, &partial) {
			utils.LogError("lead_status_partial_write", err, map[string]interface{}{
				"lead_id":       leadID,
				"updated_count": partial.Updated,
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success":       false,
				"error":         "Status update partially applied",
				"updated_count": partial.Updated,
			})
		}
		return utils.ErrorResponse(c, utils.HTTPStatus(err), "Failed to update status", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"status":        input.Status,
		"updated_count": updated,
	}))
}

// applyStatusToGroup fans a status change across every row of a pair, one
// row at a time. Rows already committed stay committed when a later row
// fails; the error carries the count that did persist.
func applyStatusToGroup(ids []uint, status string, apply func(id uint, status string) error) (int, error) {
	updated := 0
	for _, id := range ids {
		if err := apply(id, status); err != nil {
			return updated, &utils.PartialWriteError{Updated: updated, Cause: err}
		}
		updated++
	}
	return updated, nil
}

// applyStatus updates one group row in its own transaction. The row is
// re-read under lock so a concurrent action fold is not clobbered by the
// full-row save.
func (lc *LeadController) applyStatus(id uint, status string) error {
	return lc.DB.Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lead, id).Error; err != nil {
			return err
		}
		changed, err := lead.TrackStatus(status)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return tx.Save(&lead).Error
	})
}

// UpdateLeadNotes patches the free-form notes on a single lead.
func (lc *LeadController) UpdateLeadNotes(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var input struct {
		Notes string `json:"notes" validate:"max=5000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND lister_id = ?", leadID, user.ID).First(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", utils.ErrNotFound)
	}

	if err := lc.DB.Model(&lead).Update("notes", input.Notes).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update notes", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// GetLeadsByChannel groups the lister's leads by acquisition channel.
func (lc *LeadController) GetLeadsByChannel(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var leads []models.Lead
	if err := lc.DB.Where("lister_id = ?", user.ID).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	stats := analytics.AnalyzeByChannel(leads, config.AppConfig.HighValueScoreThreshold)
	return c.JSON(utils.SuccessResponse(stats))
}

// GetLeadsByContext groups the lister's leads by context type.
func (lc *LeadController) GetLeadsByContext(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var leads []models.Lead
	if err := lc.DB.Where("lister_id = ?", user.ID).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	stats := analytics.AnalyzeByContext(leads)
	return c.JSON(utils.SuccessResponse(stats))
}
