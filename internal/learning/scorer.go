package learning

import (
	"math"
	"sort"
	"time"

	"github.com/toolora/toolora-search/internal/storage"
)

const (
	// frequencyWeight is the weight for frequency in the score (0.6 = 60%).
	frequencyWeight = 0.6

	// recencyWeight is the weight for recency in the score (0.3 = 30%).
	recencyWeight = 0.3

	// selectionWeight is the weight for the selection rate in the score (0.1 = 10%).
	selectionWeight = 0.1

	// frequencyWindow is the time window to consider for frequency (7 days).
	frequencyWindow = 7 * 24 * time.Hour

	// recencyHalfLife is the half-life for exponential decay (24 hours).
	recencyHalfLife = 24 * time.Hour

	// highFrequency is the selection count treated as maximally popular.
	highFrequency = 100.0
)

// Score calculates a tool's popularity from its usage history.
// Formula: 0.6*frequency + 0.3*recency + 0.1*selectionRate
func Score(toolID string, history []storage.UsageEvent) float64 {
	if len(history) == 0 {
		return 0.0
	}

	freq := calculateFrequency(toolID, history)
	recency := calculateRecency(history)
	rate := calculateSelectionRate(history)

	return frequencyWeight*freq + recencyWeight*recency + selectionWeight*rate
}

// calculateFrequency counts selections of the tool in the last 7 days,
// normalized so that 100 selections score 1.
func calculateFrequency(toolID string, history []storage.UsageEvent) float64 {
	if len(history) == 0 {
		return 0.0
	}

	count := 0
	windowStart := time.Now().Add(-frequencyWindow)

	for _, event := range history {
		if event.ToolID == toolID && event.Selected && event.Timestamp.After(windowStart) {
			count++
		}
	}

	return math.Min(float64(count)/highFrequency, 1.0)
}

// calculateRecency averages an exponential decay over all events, so recent
// usage weighs more. After one half-life an event counts half.
func calculateRecency(history []storage.UsageEvent) float64 {
	if len(history) == 0 {
		return 0.0
	}

	now := time.Now()
	weightedSum := 0.0

	for _, event := range history {
		hoursSince := now.Sub(event.Timestamp).Hours()
		weightedSum += math.Exp(-math.Ln2 * hoursSince / recencyHalfLife.Hours())
	}

	return math.Min(weightedSum/float64(len(history)), 1.0)
}

// calculateSelectionRate is the share of events where the tool was opened
// rather than only shown.
func calculateSelectionRate(history []storage.UsageEvent) float64 {
	if len(history) == 0 {
		return 0.0
	}

	selected := 0
	for _, event := range history {
		if event.Selected {
			selected++
		}
	}

	return float64(selected) / float64(len(history))
}

// ToolScore represents a tool with its score for ranking.
type ToolScore struct {
	ToolID string
	Score  float64
}

// RankTools scores tools from their last 7 days of history, highest first.
// Ties keep the input order. Tools whose history cannot be read are left out.
func RankTools(toolIDs []string, store storage.Storage) []ToolScore {
	scores := make([]ToolScore, 0, len(toolIDs))

	for _, toolID := range toolIDs {
		history, err := store.GetUsageHistory(toolID, time.Now().Add(-frequencyWindow))
		if err != nil {
			continue
		}

		scores = append(scores, ToolScore{
			ToolID: toolID,
			Score:  Score(toolID, history),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return scores
}
