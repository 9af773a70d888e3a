package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Reminder statuses
const (
	ReminderStatusIncomplete = "incomplete"
	ReminderStatusCompleted  = "completed"
	ReminderStatusCancelled  = "cancelled"
)

// Reminder priorities
const (
	ReminderPriorityLow    = "low"
	ReminderPriorityNormal = "normal"
	ReminderPriorityHigh   = "high"
	ReminderPriorityUrgent = "urgent"
)

// Reminder is a lister-created follow-up note, optionally linked to a lead.
type Reminder struct {
	gorm.Model
	ListerID uint  `gorm:"not null;index" json:"lister_id"`
	LeadID   *uint `gorm:"index" json:"lead_id"`

	ReminderDate time.Time `gorm:"type:date;not null" json:"reminder_date"`
	ReminderTime *string   `json:"reminder_time"` // "HH:MM", optional
	Status       string    `gorm:"not null;default:'incomplete'" json:"status"`
	Priority     string    `gorm:"not null;default:'normal'" json:"priority"`
	NoteText     string    `gorm:"type:text" json:"note_text"`

	Lead *Lead `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
}

// IsOverdue derives the overdue flag from now. Completed and cancelled
// reminders are never overdue. A missing time means the reminder covers the
// whole day, so it only becomes overdue after 23:59:59 of its date.
func (r *Reminder) IsOverdue(now time.Time) bool {
	if r.Status != ReminderStatusIncomplete {
		return false
	}
	due := r.DueAt()
	return due.Before(now)
}

// DueAt combines reminder_date with reminder_time, defaulting to end of day
// when no time is stored.
func (r *Reminder) DueAt() time.Time {
	y, m, d := r.ReminderDate.Date()
	loc := r.ReminderDate.Location()
	if r.ReminderTime != nil {
		var hh, mm int
		if _, err := fmt.Sscanf(*r.ReminderTime, "%d:%d", &hh, &mm); err == nil && hh >= 0 && hh < 24 && mm >= 0 && mm < 60 {
			return time.Date(y, m, d, hh, mm, 0, 0, loc)
		}
	}
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}
