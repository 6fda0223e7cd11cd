package store

import (
	"fmt"

	"produccion/internal/model"
)

// InsertRejectedRows 记录某次导入的拒绝行（用于追溯）
func (s *Store) InsertRejectedRows(importLogID int64, rows []model.RejectedRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO rejected_rows (import_log_id, row_number, sku, reason) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare rejected rows insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(importLogID, r.Row, r.Sku, r.Reason); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert rejected row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rejected rows: %w", err)
	}
	return nil
}

// ListRejectedRows 某次导入的拒绝行，按行号排序
func (s *Store) ListRejectedRows(importLogID int64) ([]model.RejectedRow, error) {
	rows, err := s.db.Query(`
		SELECT l.filename, r.row_number, r.sku, r.reason
		FROM rejected_rows r JOIN import_logs l ON l.id = r.import_log_id
		WHERE r.import_log_id = ?
		ORDER BY r.row_number
	`, importLogID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejected rows: %w", err)
	}
	defer rows.Close()

	out := []model.RejectedRow{}
	for rows.Next() {
		var r model.RejectedRow
		if err := rows.Scan(&r.File, &r.Row, &r.Sku, &r.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan rejected row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
