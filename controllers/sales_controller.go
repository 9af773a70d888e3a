package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"proplead/analytics"
	"proplead/models"
	"proplead/utils"
)

type SalesController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSalesController(db *gorm.DB, logger *log.Logger) *SalesController {
	return &SalesController{
		DB:     db,
		Logger: logger,
	}
}

// GetSalesTimeSeries buckets the lister's sales into week/month/year periods.
// Pure read-side computation; nothing is persisted.
func (sc *SalesController) GetSalesTimeSeries(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	rng := c.Query("range", analytics.RangeWeek)

	now := time.Now()
	windowStart, err := analytics.WindowStart(rng, now)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid range parameter", utils.ErrInvalidInput)
	}

	var sales []models.Sale
	if err := sc.DB.Where("lister_id = ? AND sale_date >= ?", user.ID, windowStart).
		Find(&sales).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sales", err)
	}

	series, err := analytics.BucketSales(sales, rng, now)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid range parameter", err)
	}

	return c.JSON(utils.SuccessResponse(series))
}
