package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAction_FoldsDerivedFields(t *testing.T) {
	lead := Lead{SeekerID: "anon-abc", ListerID: 1}

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	actionTypes := []string{
		ActionPhoneClick,
		ActionDirectMessage,
		ActionEmail,
		ActionAppointmentRequest,
		ActionWhatsappClick,
	}

	for i, at := range actionTypes {
		err := lead.AppendAction(LeadAction{
			ActionType: at,
			Channel:    ChannelPhone,
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	assert.Equal(t, len(actionTypes), lead.TotalActions)
	require.NotNil(t, lead.FirstActionDate)
	require.NotNil(t, lead.LastActionDate)
	assert.Equal(t, base, *lead.FirstActionDate)
	assert.Equal(t, base.Add(4*time.Hour), *lead.LastActionDate)
	assert.Equal(t, ActionWhatsappClick, lead.LastActionType)

	actions, err := lead.Actions()
	require.NoError(t, err)
	assert.Len(t, actions, len(actionTypes))
}

func TestAppendAction_RejectsMalformedEntries(t *testing.T) {
	lead := Lead{SeekerID: "anon-abc"}
	now := time.Now()

	tests := []struct {
		name   string
		action LeadAction
	}{
		{"unknown action type", LeadAction{ActionType: "bribe", Channel: ChannelPhone, Timestamp: now}},
		{"unknown channel", LeadAction{ActionType: ActionPhoneClick, Channel: "carrier_pigeon", Timestamp: now}},
		{"zero timestamp", LeadAction{ActionType: ActionPhoneClick, Channel: ChannelPhone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lead.AppendAction(tt.action)
			assert.Error(t, err)
			assert.Equal(t, 0, lead.TotalActions)
		})
	}
}

func TestTrackStatus_IdempotentTracker(t *testing.T) {
	lead := Lead{SeekerID: "42"}

	changed, err := lead.TrackStatus(LeadStatusNew)
	require.NoError(t, err)
	assert.True(t, changed)

	// Applying the same status twice leaves the tracker unchanged
	changed, err = lead.TrackStatus(LeadStatusNew)
	require.NoError(t, err)
	assert.False(t, changed)

	tracker, err := lead.Tracker()
	require.NoError(t, err)
	assert.Equal(t, []string{LeadStatusNew}, tracker)

	changed, err = lead.TrackStatus(LeadStatusContacted)
	require.NoError(t, err)
	assert.True(t, changed)

	tracker, err = lead.Tracker()
	require.NoError(t, err)
	assert.Equal(t, []string{LeadStatusNew, LeadStatusContacted}, tracker)
	assert.Equal(t, LeadStatusContacted, lead.Status)

	// Going back to an already-seen status changes only the status field,
	// never reorders or duplicates tracker entries.
	changed, err = lead.TrackStatus(LeadStatusNew)
	require.NoError(t, err)
	assert.True(t, changed)

	tracker, err = lead.Tracker()
	require.NoError(t, err)
	assert.Equal(t, []string{LeadStatusNew, LeadStatusContacted}, tracker)
	assert.Equal(t, LeadStatusNew, lead.Status)
}

func TestTrackStatus_SeedsEmptyTrackerWithPriorStatus(t *testing.T) {
	// A legacy row with a status but no tracker history keeps the prior
	// status when the tracker is first written.
	lead := Lead{SeekerID: "42", Status: LeadStatusContacted}

	changed, err := lead.TrackStatus(LeadStatusClosed)
	require.NoError(t, err)
	assert.True(t, changed)

	tracker, err := lead.Tracker()
	require.NoError(t, err)
	assert.Equal(t, []string{LeadStatusContacted, LeadStatusClosed}, tracker)
	assert.Equal(t, LeadStatusClosed, lead.Status)
}

func TestAcquisitionChannel(t *testing.T) {
	lead := Lead{SeekerID: "anon-x"}
	assert.Equal(t, "", lead.AcquisitionChannel())

	now := time.Now()
	require.NoError(t, lead.AppendAction(LeadAction{ActionType: ActionEmail, Channel: ChannelEmail, Timestamp: now}))
	require.NoError(t, lead.AppendAction(LeadAction{ActionType: ActionPhoneClick, Channel: ChannelPhone, Timestamp: now.Add(time.Minute)}))

	assert.Equal(t, ChannelEmail, lead.AcquisitionChannel())
}
