package storage

import (
	"time"

	"go.uber.org/zap"
)

// RecordUsage records a tool impression or selection.
func (s *SQLiteStorage) RecordUsage(event UsageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return nil
	}

	selected := 0
	if event.Selected {
		selected = 1
	}

	query := `
		INSERT INTO tool_usage (tool_id, category, context_hash, timestamp, selected)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		event.ToolID,
		event.Category,
		event.ContextHash,
		formatTime(event.Timestamp),
		selected,
	)

	if err != nil {
		s.log().Warn("failed to record usage", zap.String("tool_id", event.ToolID), zap.Error(err))
	}

	return nil
}

// GetUsageHistory retrieves usage history for a tool since a given time,
// newest first.
func (s *SQLiteStorage) GetUsageHistory(toolID string, since time.Time) ([]UsageEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return []UsageEvent{}, nil
	}

	query := `
		SELECT tool_id, category, context_hash, timestamp, selected
		FROM tool_usage
		WHERE tool_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC, id DESC
	`

	rows, err := s.db.Query(query, toolID, formatTime(since))
	if err != nil {
		s.log().Warn("failed to query usage history", zap.Error(err))
		return []UsageEvent{}, nil
	}
	defer rows.Close()

	events := []UsageEvent{}
	for rows.Next() {
		var event UsageEvent
		var timestampStr string
		var selected int

		if err := rows.Scan(
			&event.ToolID,
			&event.Category,
			&event.ContextHash,
			&timestampStr,
			&selected,
		); err != nil {
			s.log().Warn("failed to scan usage row", zap.Error(err))
			continue
		}

		event.Selected = selected == 1
		event.Timestamp, err = time.Parse(time.RFC3339, timestampStr)
		if err != nil {
			s.log().Warn("failed to parse timestamp", zap.String("value", timestampStr), zap.Error(err))
			continue
		}

		events = append(events, event)
	}

	return events, nil
}

// ToolUsageCounts returns tools ordered by selection count since a given
// time, most selected first. Ties go to the most recently used tool.
func (s *SQLiteStorage) ToolUsageCounts(since time.Time, limit int) ([]ToolCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return []ToolCount{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT tool_id, MAX(category), COUNT(*), MAX(timestamp) AS last_used
		FROM tool_usage
		WHERE selected = 1 AND timestamp >= ?
		GROUP BY tool_id
		ORDER BY COUNT(*) DESC, last_used DESC, tool_id ASC
		LIMIT ?
	`

	rows, err := s.db.Query(query, formatTime(since), limit)
	if err != nil {
		s.log().Warn("failed to query usage counts", zap.Error(err))
		return []ToolCount{}, nil
	}
	defer rows.Close()

	counts := []ToolCount{}
	for rows.Next() {
		var c ToolCount
		var lastUsed string
		if err := rows.Scan(&c.ToolID, &c.Category, &c.Selections, &lastUsed); err != nil {
			s.log().Warn("failed to scan usage count row", zap.Error(err))
			continue
		}
		if t, err := time.Parse(time.RFC3339, lastUsed); err == nil {
			c.LastUsed = t
		}
		counts = append(counts, c)
	}

	return counts, nil
}
