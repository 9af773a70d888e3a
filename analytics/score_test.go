package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"proplead/models"
)

func TestScore_DefaultWeights(t *testing.T) {
	now := time.Now()
	actions := []models.LeadAction{
		{ActionType: models.ActionAppointmentRequest, Channel: models.ChannelAppointment, Timestamp: now},
		{ActionType: models.ActionPhoneClick, Channel: models.ChannelPhone, Timestamp: now},
		{ActionType: models.ActionEmail, Channel: models.ChannelEmail, Timestamp: now},
	}

	assert.InDelta(t, 55.0, Score(actions, DefaultScoreWeights()), 0.001)
}

func TestScore_UnknownActionContributesNothing(t *testing.T) {
	actions := []models.LeadAction{
		{ActionType: "legacy_action", Timestamp: time.Now()},
		{ActionType: models.ActionWebsiteClick, Timestamp: time.Now()},
	}

	assert.InDelta(t, 5.0, Score(actions, DefaultScoreWeights()), 0.001)
}

func TestScore_CustomWeightsOverrideDefaults(t *testing.T) {
	weights := ScoreWeights{models.ActionEmail: 100}
	actions := []models.LeadAction{
		{ActionType: models.ActionEmail, Timestamp: time.Now()},
		{ActionType: models.ActionPhoneClick, Timestamp: time.Now()},
	}

	assert.InDelta(t, 100.0, Score(actions, weights), 0.001)
}

func TestScore_EmptyLog(t *testing.T) {
	assert.Zero(t, Score(nil, DefaultScoreWeights()))
}
