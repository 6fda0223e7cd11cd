package model

import "time"

// 行级拒绝原因
const (
	ReasonCantidades  = "cantidades"
	ReasonSkuInvalido = "sku invalido"
)

// RejectedRow 未通过校验的行
type RejectedRow struct {
	File   string `json:"file"`
	Row    int    `json:"row"`
	Sku    string `json:"sku"`
	Reason string `json:"reason"`
}

// ValidationReport 一批上传文件的拒绝行汇总
type ValidationReport struct {
	Rejected []RejectedRow `json:"rejected"`
}

// Add 追加拒绝行
func (v *ValidationReport) Add(rows ...RejectedRow) {
	v.Rejected = append(v.Rejected, rows...)
}

// Empty 是否没有拒绝行
func (v *ValidationReport) Empty() bool {
	return len(v.Rejected) == 0
}

// 文件导入状态
const (
	FileStatusImported = "imported"
	FileStatusError    = "error"
)

// FileReport 单个文件的导入结果
type FileReport struct {
	Filename      string        `json:"filename"`
	Tipo          Tipo          `json:"tipo"`
	Fecha         *time.Time    `json:"fecha,omitempty"`
	Status        string        `json:"status"`
	ExtractedRows int           `json:"extractedRows"`
	ImportedRows  int           `json:"importedRows"`
	RejectedRows  int           `json:"rejectedRows"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// BatchReport 一批上传的导入报告
type BatchReport struct {
	BatchID       string           `json:"batchId"`
	TotalFiles    int              `json:"totalFiles"`
	ImportedFiles int              `json:"importedFiles"`
	FailedFiles   int              `json:"failedFiles"`
	ImportedRows  int              `json:"importedRows"`
	RejectedRows  int              `json:"rejectedRows"`
	Files         []FileReport     `json:"files"`
	Validation    ValidationReport `json:"validation"`
	Duration      time.Duration    `json:"duration"`
}
