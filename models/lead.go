package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lister types
const (
	ListerTypeDeveloper = "developer"
	ListerTypeAgent     = "agent"
	ListerTypeAgency    = "agency"
)

// Context types - where the lead originated
const (
	ContextTypeListing     = "listing"
	ContextTypeDevelopment = "development"
	ContextTypeProfile     = "profile"
)

// Channels - the action medium
const (
	ChannelPhone         = "phone"
	ChannelWhatsapp      = "whatsapp"
	ChannelDirectMessage = "direct_message"
	ChannelEmail         = "email"
	ChannelAppointment   = "appointment"
)

// Action types
const (
	ActionPhoneClick         = "phone_click"
	ActionWhatsappClick      = "whatsapp_click"
	ActionDirectMessage      = "direct_message"
	ActionEmail              = "email"
	ActionAppointmentRequest = "appointment_request"
	ActionWebsiteClick       = "website_click"
)

// Lead statuses - open enumeration, these are the well-known values
const (
	LeadStatusNew         = "new"
	LeadStatusContacted   = "contacted"
	LeadStatusViewing     = "viewing_scheduled"
	LeadStatusNegotiating = "negotiating"
	LeadStatusClosed      = "closed"
	LeadStatusLost        = "lost"
)

// LeadAction is a single interaction event in a lead's append log.
type LeadAction struct {
	ActionType string    `json:"action_type"`
	Channel    string    `json:"channel"`
	Timestamp  time.Time `json:"timestamp"`
}

// Lead represents one (seeker, listing) relationship across all actions taken.
// There is exactly one row per pair going forward, enforced by partial unique
// indexes created during migration (listing_id is nullable, so profile-level
// leads are keyed per lister instead); legacy duplicates are tolerated on read
// and kept consistent by group status propagation.
type Lead struct {
	gorm.Model
	SeekerID  string `gorm:"not null;index" json:"seeker_id"`
	ListingID *uint  `gorm:"index" json:"listing_id"` // nil for profile-level leads
	ListerID  uint   `gorm:"not null;index" json:"lister_id"`

	ListerType  string `gorm:"not null" json:"lister_type"`  // developer, agent, agency
	ContextType string `gorm:"not null" json:"context_type"` // listing, development, profile
	IsAnonymous bool   `gorm:"default:false" json:"is_anonymous"`

	Status        string         `gorm:"not null;default:'new';index" json:"status"`
	StatusTracker datatypes.JSON `json:"status_tracker"` // ordered set of every status ever assigned
	LeadActions   datatypes.JSON `json:"lead_actions"`   // append log of LeadAction entries

	// Derived summary fields, recomputed on every new action
	TotalActions    int        `gorm:"default:0" json:"total_actions"`
	FirstActionDate *time.Time `json:"first_action_date"`
	LastActionDate  *time.Time `gorm:"index" json:"last_action_date"`
	LastActionType  string     `json:"last_action_type"`
	LeadScore       float64    `gorm:"default:0" json:"lead_score"`

	Notes string `gorm:"type:text" json:"notes"`

	// Relations
	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
}

// Actions decodes the append log. An empty column decodes to an empty slice.
func (l *Lead) Actions() ([]LeadAction, error) {
	if len(l.LeadActions) == 0 {
		return []LeadAction{}, nil
	}
	var actions []LeadAction
	if err := json.Unmarshal(l.LeadActions, &actions); err != nil {
		return nil, fmt.Errorf("malformed lead_actions log: %w", err)
	}
	return actions, nil
}

// Tracker decodes the status tracker.
func (l *Lead) Tracker() ([]string, error) {
	if len(l.StatusTracker) == 0 {
		return []string{}, nil
	}
	var tracker []string
	if err := json.Unmarshal(l.StatusTracker, &tracker); err != nil {
		return nil, fmt.Errorf("malformed status_tracker: %w", err)
	}
	return tracker, nil
}

// AppendAction folds a new action into the lead and recomputes the derived
// summary fields. Status and tracker are left untouched; status changes go
// through TrackStatus. Callers must hold a row lock while folding.
func (l *Lead) AppendAction(action LeadAction) error {
	if err := action.Validate(); err != nil {
		return err
	}

	actions, err := l.Actions()
	if err != nil {
		return err
	}
	actions = append(actions, action)

	raw, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("failed to encode lead_actions: %w", err)
	}
	l.LeadActions = datatypes.JSON(raw)

	l.TotalActions = len(actions)
	ts := action.Timestamp
	if l.FirstActionDate == nil {
		l.FirstActionDate = &ts
	}
	l.LastActionDate = &ts
	l.LastActionType = action.ActionType
	return nil
}

// TrackStatus sets a new status and applies the tracker rules: a status is
// appended only if not already present (idempotent, first-seen order kept),
// and an empty tracker is seeded with the prior status first so history is
// not lost. A non-empty tracker that diverges from the current status is
// left alone. Returns true when anything changed.
func (l *Lead) TrackStatus(newStatus string) (bool, error) {
	tracker, err := l.Tracker()
	if err != nil {
		return false, err
	}

	changed := false
	if len(tracker) == 0 && l.Status != "" && l.Status != newStatus {
		tracker = append(tracker, l.Status)
		changed = true
	}
	if !containsStatus(tracker, newStatus) {
		tracker = append(tracker, newStatus)
		changed = true
	}
	if l.Status != newStatus {
		l.Status = newStatus
		changed = true
	}
	if !changed {
		return false, nil
	}

	raw, err := json.Marshal(tracker)
	if err != nil {
		return false, fmt.Errorf("failed to encode status_tracker: %w", err)
	}
	l.StatusTracker = datatypes.JSON(raw)
	return true, nil
}

// IsClosed reports whether the lead converted.
func (l *Lead) IsClosed() bool {
	return l.Status == LeadStatusClosed
}

// AcquisitionChannel is the channel of the first recorded action.
func (l *Lead) AcquisitionChannel() string {
	actions, err := l.Actions()
	if err != nil || len(actions) == 0 {
		return ""
	}
	return actions[0].Channel
}

// Validate rejects malformed action entries at the ingestion boundary so
// untyped structures never reach the append log.
func (a LeadAction) Validate() error {
	if !validActionTypes[a.ActionType] {
		return fmt.Errorf("unknown action_type %q", a.ActionType)
	}
	if !validChannels[a.Channel] {
		return fmt.Errorf("unknown channel %q", a.Channel)
	}
	if a.Timestamp.IsZero() {
		return fmt.Errorf("action timestamp is required")
	}
	return nil
}

var validActionTypes = map[string]bool{
	ActionPhoneClick:         true,
	ActionWhatsappClick:      true,
	ActionDirectMessage:      true,
	ActionEmail:              true,
	ActionAppointmentRequest: true,
	ActionWebsiteClick:       true,
}

var validChannels = map[string]bool{
	ChannelPhone:         true,
	ChannelWhatsapp:      true,
	ChannelDirectMessage: true,
	ChannelEmail:         true,
	ChannelAppointment:   true,
}

func containsStatus(tracker []string, status string) bool {
	for _, s := range tracker {
		if s == status {
			return true
		}
	}
	return false
}
