package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proplead/models"
	"proplead/utils"
)

func TestApplyStatusToGroup_UpdatesEveryRow(t *testing.T) {
	group := map[uint]*models.Lead{
		1: {SeekerID: "s1", Status: models.LeadStatusNew},
		2: {SeekerID: "s1", Status: models.LeadStatusNew},
		3: {SeekerID: "s1", Status: models.LeadStatusContacted},
	}

	var saved []uint
	apply := func(id uint, status string) error {
		changed, err := group[id].TrackStatus(status)
		if err != nil {
			return err
		}
		if changed {
			saved = append(saved, id)
		}
		return nil
	}

	updated, err := applyStatusToGroup([]uint{1, 2, 3}, models.LeadStatusViewing, apply)

	require.NoError(t, err)
	assert.Equal(t, 3, updated)
	assert.Equal(t, []uint{1, 2, 3}, saved)
	for id, lead := range group {
		assert.Equal(t, models.LeadStatusViewing, lead.Status, "lead %d", id)
		tracker, err := lead.Tracker()
		require.NoError(t, err)
		assert.Contains(t, tracker, models.LeadStatusViewing)
	}
}

func TestApplyStatusToGroup_PartialFailureReportsPersistedCount(t *testing.T) {
	group := map[uint]*models.Lead{
		1: {SeekerID: "s1", Status: models.LeadStatusNew},
		2: {SeekerID: "s1", Status: models.LeadStatusNew},
		3: {SeekerID: "s1", Status: models.LeadStatusNew},
	}

	apply := func(id uint, status string) error {
		if id == 2 {
			return errors.New("save failed")
		}
		_, err := group[id].TrackStatus(status)
		return err
	}

	updated, err := applyStatusToGroup([]uint{1, 2, 3}, models.LeadStatusClosed, apply)

	var partial *utils.PartialWriteError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Updated)
	assert.Equal(t, 1, updated)

	// the row that committed before the failure keeps its new status, the
	// rows after it are untouched
	assert.Equal(t, models.LeadStatusClosed, group[1].Status)
	assert.Equal(t, models.LeadStatusNew, group[2].Status)
	assert.Equal(t, models.LeadStatusNew, group[3].Status)
}

func TestApplyStatusToGroup_EmptyGroup(t *testing.T) {
	updated, err := applyStatusToGroup(nil, models.LeadStatusClosed, func(uint, string) error {
		t.Fatal("apply should not be called")
		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestLeadPairConditions(t *testing.T) {
	listingID := uint(42)

	query, args := leadPairConditions("seeker-1", &listingID, 9)
	assert.Equal(t, "seeker_id = ? AND listing_id = ?", query)
	assert.Equal(t, []interface{}{"seeker-1", uint(42)}, args)

	// profile-level leads have no listing, the key falls back to the lister
	// so two listers never share one row
	query, args = leadPairConditions("seeker-1", nil, 9)
	assert.Equal(t, "seeker_id = ? AND listing_id IS NULL AND lister_id = ?", query)
	assert.Equal(t, []interface{}{"seeker-1", uint(9)}, args)
}
