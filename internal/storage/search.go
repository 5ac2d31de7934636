package storage

import (
	"time"

	"go.uber.org/zap"
)

// RecordSearch records a search query for analytics.
func (s *SQLiteStorage) RecordSearch(search SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return nil
	}

	query := `
		INSERT INTO search_history (search_id, query_hash, timestamp, results_count, engine)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		search.SearchID,
		search.QueryHash,
		formatTime(search.Timestamp),
		search.ResultsCount,
		search.Engine,
	)

	if err != nil {
		s.log().Warn("failed to record search", zap.String("search_id", search.SearchID), zap.Error(err))
	}

	return nil
}

// SearchStats summarizes searches and selections since a given time.
func (s *SQLiteStorage) SearchStats(since time.Time) (SearchSummary, error) {
	summary := SearchSummary{ByEngine: map[string]int{}}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return summary, nil
	}

	cutoff := formatTime(since)

	row := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN results_count = 0 THEN 1 ELSE 0 END), 0)
		FROM search_history
		WHERE timestamp >= ?
	`, cutoff)
	if err := row.Scan(&summary.Total, &summary.ZeroResults); err != nil {
		s.log().Warn("failed to summarize searches", zap.Error(err))
		return summary, nil
	}

	rows, err := s.db.Query(`
		SELECT engine, COUNT(*)
		FROM search_history
		WHERE timestamp >= ?
		GROUP BY engine
	`, cutoff)
	if err != nil {
		s.log().Warn("failed to group searches by engine", zap.Error(err))
		return summary, nil
	}
	defer rows.Close()

	for rows.Next() {
		var engine string
		var count int
		if err := rows.Scan(&engine, &count); err != nil {
			s.log().Warn("failed to scan engine row", zap.Error(err))
			continue
		}
		summary.ByEngine[engine] = count
	}

	row = s.db.QueryRow(`SELECT COUNT(*) FROM tool_usage WHERE selected = 1 AND timestamp >= ?`, cutoff)
	if err := row.Scan(&summary.Selections); err != nil {
		s.log().Warn("failed to count selections", zap.Error(err))
	}

	return summary, nil
}

// Cleanup removes old records based on retention policy.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return nil
	}

	cutoff := formatTime(time.Now().Add(-retention))

	if _, err := s.db.Exec("DELETE FROM tool_usage WHERE timestamp < ?", cutoff); err != nil {
		s.log().Warn("failed to cleanup tool_usage", zap.Error(err))
	}

	if _, err := s.db.Exec("DELETE FROM search_history WHERE timestamp < ?", cutoff); err != nil {
		s.log().Warn("failed to cleanup search_history", zap.Error(err))
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.log().Warn("failed to vacuum database", zap.Error(err))
	}

	return nil
}

// Clear removes all recorded history.
func (s *SQLiteStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return nil
	}

	for _, table := range []string{"tool_usage", "search_history"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.log().Warn("failed to vacuum database", zap.Error(err))
	}

	return nil
}
