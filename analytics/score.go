// Package analytics computes lead and listing metrics over already-fetched
// records. Everything here is pure aggregation: no side effects, deterministic
// for the same input set.
package analytics

import (
	"proplead/models"
)

// ScoreWeights maps an action type to its contribution to the lead score.
// The weighting is policy, not engine logic, so it is always injected;
// DefaultScoreWeights is only the fallback when no table is configured.
type ScoreWeights map[string]float64

// DefaultScoreWeights weighs high-intent actions (appointments, phone calls)
// above passive ones.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		models.ActionAppointmentRequest: 25,
		models.ActionPhoneClick:         20,
		models.ActionWhatsappClick:      15,
		models.ActionDirectMessage:      10,
		models.ActionEmail:              10,
		models.ActionWebsiteClick:       5,
	}
}

// Score computes a lead score from the action log. Unknown action types
// contribute nothing.
func Score(actions []models.LeadAction, weights ScoreWeights) float64 {
	var total float64
	for _, a := range actions {
		total += weights[a.ActionType]
	}
	return total
}
