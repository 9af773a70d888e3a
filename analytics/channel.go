package analytics

import (
	"math"

	"proplead/models"
)

// ChannelStats describes one acquisition channel's performance.
type ChannelStats struct {
	Total               int     `json:"total"`
	Closed              int     `json:"closed"`
	ConversionRate      float64 `json:"conversionRate"`
	AvgLeadScore        float64 `json:"avgLeadScore"`
	HighValueLeads      int     `json:"highValueLeads"`
	HighValuePercentage float64 `json:"highValuePercentage"`
}

// ContextStats describes one context type's performance.
type ContextStats struct {
	Total          int     `json:"total"`
	Closed         int     `json:"closed"`
	ConversionRate float64 `json:"conversionRate"`
	AvgLeadScore   float64 `json:"avgLeadScore"`
}

// AnalyzeByChannel groups leads by acquisition channel (the channel of their
// first action). Leads whose action log is empty or malformed are skipped.
// highValueThreshold is the externally configured score above which a lead
// counts as high value.
func AnalyzeByChannel(leads []models.Lead, highValueThreshold float64) map[string]ChannelStats {
	type acc struct {
		total     int
		closed    int
		scoreSum  float64
		highValue int
	}
	groups := make(map[string]*acc)

	for i := range leads {
		channel := leads[i].AcquisitionChannel()
		if channel == "" {
			continue
		}
		g, ok := groups[channel]
		if !ok {
			g = &acc{}
			groups[channel] = g
		}
		g.total++
		g.scoreSum += leads[i].LeadScore
		if leads[i].IsClosed() {
			g.closed++
		}
		if leads[i].LeadScore > highValueThreshold {
			g.highValue++
		}
	}

	result := make(map[string]ChannelStats, len(groups))
	for channel, g := range groups {
		result[channel] = ChannelStats{
			Total:               g.total,
			Closed:              g.closed,
			ConversionRate:      ratePercent(g.closed, g.total),
			AvgLeadScore:        roundOne(g.scoreSum / float64(g.total)),
			HighValueLeads:      g.highValue,
			HighValuePercentage: ratePercent(g.highValue, g.total),
		}
	}
	return result
}

// AnalyzeByContext groups leads by context type (listing, development,
// profile).
func AnalyzeByContext(leads []models.Lead) map[string]ContextStats {
	type acc struct {
		total    int
		closed   int
		scoreSum float64
	}
	groups := make(map[string]*acc)

	for i := range leads {
		ctx := leads[i].ContextType
		if ctx == "" {
			continue
		}
		g, ok := groups[ctx]
		if !ok {
			g = &acc{}
			groups[ctx] = g
		}
		g.total++
		g.scoreSum += leads[i].LeadScore
		if leads[i].IsClosed() {
			g.closed++
		}
	}

	result := make(map[string]ContextStats, len(groups))
	for ctx, g := range groups {
		result[ctx] = ContextStats{
			Total:          g.total,
			Closed:         g.closed,
			ConversionRate: ratePercent(g.closed, g.total),
			AvgLeadScore:   roundOne(g.scoreSum / float64(g.total)),
		}
	}
	return result
}

// ratePercent is part/total*100 rounded to one decimal, 0 when total is 0.
func ratePercent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundOne(float64(part) / float64(total) * 100)
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
