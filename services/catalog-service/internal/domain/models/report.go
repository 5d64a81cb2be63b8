package models

import "time"

// ExportStatus итог запуска выгрузки
type ExportStatus string

const (
	ExportSucceeded ExportStatus = "success"
	ExportFailed    ExportStatus = "failed"
)

// ExportErrorKind класс ошибки, прервавшей запуск
type ExportErrorKind string

const (
	ErrorKindNone          ExportErrorKind = ""
	ErrorKindDataAccess    ExportErrorKind = "data_access"
	ErrorKindSerialization ExportErrorKind = "serialization"
	ErrorKindUploadAccess  ExportErrorKind = "upload_access"
	ErrorKindUploadNetwork ExportErrorKind = "upload_network"
	ErrorKindUploadUnknown ExportErrorKind = "upload_unknown"
	ErrorKindUnknown       ExportErrorKind = "unknown"
)

// ExportReport отчет о последнем запуске выгрузки каталога
type ExportReport struct {
	RunID      string          `json:"run_id"`
	FileName   string          `json:"file_name"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Status     ExportStatus    `json:"status"`
	Categories int             `json:"categories"`
	Offers     int             `json:"offers"`
	Orphans    int             `json:"orphans"`
	Bytes      int             `json:"bytes"`
	URL        string          `json:"url,omitempty"`
	ErrorKind  ExportErrorKind `json:"error_kind,omitempty"`
	Error      string          `json:"error,omitempty"`
}
