package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"proplead/models"
	"proplead/utils"
)

type ReminderController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReminderController(db *gorm.DB, logger *log.Logger) *ReminderController {
	return &ReminderController{
		DB:     db,
		Logger: logger,
	}
}

// reminderView decorates a stored reminder with the derived overdue flag.
type reminderView struct {
	models.Reminder
	IsOverdue bool `json:"is_overdue"`
}

func (rc *ReminderController) CreateReminder(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		LeadID       *uint   `json:"lead_id"`
		ReminderDate string  `json:"reminder_date" validate:"required"`
		ReminderTime *string `json:"reminder_time" validate:"omitempty,len=5"`
		Priority     string  `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
		NoteText     string  `json:"note_text" validate:"max=5000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	date, err := utils.ParseDate(input.ReminderDate)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reminder_date, expected YYYY-MM-DD", utils.ErrInvalidInput)
	}

	if input.LeadID != nil {
		var lead models.Lead
		if err := rc.DB.Where("id = ? AND lister_id = ?", *input.LeadID, user.ID).First(&lead).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", utils.ErrNotFound)
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = models.ReminderPriorityNormal
	}

	reminder := models.Reminder{
		ListerID:     user.ID,
		LeadID:       input.LeadID,
		ReminderDate: date,
		ReminderTime: input.ReminderTime,
		Status:       models.ReminderStatusIncomplete,
		Priority:     priority,
		NoteText:     input.NoteText,
	}
	if err := rc.DB.Create(&reminder).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create reminder", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(reminderView{
		Reminder:  reminder,
		IsOverdue: reminder.IsOverdue(time.Now()),
	}))
}

// GetReminders returns the lister's reminders, most recent first, each
// decorated with the derived overdue flag.
func (rc *ReminderController) GetReminders(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 1
	}

	var reminders []models.Reminder
	if err := rc.DB.Where("lister_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reminders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch reminders", err)
	}

	now := time.Now()
	views := make([]reminderView, len(reminders))
	for i := range reminders {
		views[i] = reminderView{
			Reminder:  reminders[i],
			IsOverdue: reminders[i].IsOverdue(now),
		}
	}

	return c.JSON(utils.SuccessResponse(views))
}

// UpdateReminder patches status, priority, note or schedule of a reminder.
func (rc *ReminderController) UpdateReminder(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	reminderID := c.Params("id")

	var input struct {
		Status       *string `json:"status" validate:"omitempty,oneof=incomplete completed cancelled"`
		Priority     *string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
		NoteText     *string `json:"note_text" validate:"omitempty,max=5000"`
		ReminderDate *string `json:"reminder_date"`
		ReminderTime *string `json:"reminder_time" validate:"omitempty,len=5"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var reminder models.Reminder
	if err := rc.DB.Where("id = ? AND lister_id = ?", reminderID, user.ID).First(&reminder).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Reminder not found", utils.ErrNotFound)
	}

	updates := map[string]interface{}{}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.NoteText != nil {
		updates["note_text"] = *input.NoteText
	}
	if input.ReminderDate != nil {
		date, err := utils.ParseDate(*input.ReminderDate)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reminder_date, expected YYYY-MM-DD", utils.ErrInvalidInput)
		}
		updates["reminder_date"] = date
	}
	if input.ReminderTime != nil {
		updates["reminder_time"] = *input.ReminderTime
	}

	if len(updates) > 0 {
		if err := rc.DB.Model(&reminder).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update reminder", err)
		}
	}

	return c.JSON(utils.SuccessResponse(reminderView{
		Reminder:  reminder,
		IsOverdue: reminder.IsOverdue(time.Now()),
	}))
}
