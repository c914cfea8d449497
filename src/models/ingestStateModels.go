package models

import "time"

// ProcessedFileModel tracks raw .log files that were already parsed and
// archived, keyed per origin server so identical filenames from different
// servers do not collide. Lives in the local sqlite state database, not in
// the mart.
type ProcessedFileModel struct {
	ServerName      string    `json:"serverName" gorm:"column:server_name;primaryKey"`
	Filename        string    `json:"filename" gorm:"column:filename;primaryKey"`
	FileDate        *string   `json:"fileDate" gorm:"column:file_date"`
	FirstSeenAt     time.Time `json:"firstSeenAt" gorm:"column:first_seen_at;not null"`
	LastProcessedAt time.Time `json:"lastProcessedAt" gorm:"column:last_processed_at;not null"`
	HashSha256      *string   `json:"hashSha256" gorm:"column:hash_sha256"`
}

func (ProcessedFileModel) TableName() string {
	return "processed_files"
}

// PersistedBatchModel tracks JSONL batches that were already loaded into the
// mart, so a batch is never inserted twice. BatchPath is the batch file path
// relative to the batch output directory.
type PersistedBatchModel struct {
	BatchPath        string    `json:"batchPath" gorm:"column:batch_path;primaryKey"`
	BatchId          string    `json:"batchId" gorm:"column:batch_id;not null"`
	ServerName       *string   `json:"serverName" gorm:"column:server_name"`
	SourceFile       *string   `json:"sourceFile" gorm:"column:source_file"`
	RowsInserted     int       `json:"rowsInserted" gorm:"column:rows_inserted"`
	FirstPersistedAt time.Time `json:"firstPersistedAt" gorm:"column:first_persisted_at;not null"`
	LastPersistedAt  time.Time `json:"lastPersistedAt" gorm:"column:last_persisted_at;not null"`
}

func (PersistedBatchModel) TableName() string {
	return "persisted_batches"
}
