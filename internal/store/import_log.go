package store

import (
	"database/sql"
	"fmt"
	"time"

	"produccion/internal/model"
)

// 导入日志状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusImported   = "imported"
	ImportStatusError      = "error"
)

// ImportLog 单个文件的导入记录
type ImportLog struct {
	ID            int64      `json:"id"`
	BatchID       string     `json:"batchId"`
	Filename      string     `json:"filename"`
	FileHash      string     `json:"fileHash"`
	Tipo          string     `json:"tipo"`
	Fecha         string     `json:"fecha"`
	ExtractedRows int        `json:"extractedRows"`
	ImportedRows  int        `json:"importedRows"`
	RejectedRows  int        `json:"rejectedRows"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"errorMessage"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(batchID, filename, fileHash string, tipo model.Tipo) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (batch_id, filename, file_hash, tipo, status)
		VALUES (?, ?, ?, ?, ?)
	`, batchID, filename, fileHash, string(tipo), ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 按文件报告完成导入日志
func (s *Store) UpdateImportLog(id int64, r model.FileReport) error {
	fecha := ""
	if r.Fecha != nil {
		fecha = r.Fecha.Format("2006-01-02")
	}
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			fecha = ?,
			extracted_rows = ?,
			imported_rows = ?,
			rejected_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, fecha, r.ExtractedRows, r.ImportedRows, r.RejectedRows, r.Status, r.Error, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImports 最近的导入日志，按创建顺序倒序
func (s *Store) ListImports(limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, batch_id, filename, file_hash, tipo, fecha,
			extracted_rows, imported_rows, rejected_rows,
			status, error_message, created_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	out := []ImportLog{}
	for rows.Next() {
		var l ImportLog
		var completed sql.NullTime
		if err := rows.Scan(
			&l.ID, &l.BatchID, &l.Filename, &l.FileHash, &l.Tipo, &l.Fecha,
			&l.ExtractedRows, &l.ImportedRows, &l.RejectedRows,
			&l.Status, &l.ErrorMessage, &l.CreatedAt, &completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			l.CompletedAt = &t
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
