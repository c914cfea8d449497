package services

import (
	"errors"
	"time"

	"github.com/BioMart/BioMart-Backend/src/models"
	"gorm.io/gorm"
)

// StateService is the ingestion bookkeeping ledger on the local sqlite
// database: which raw logs were already parsed and which JSONL batches were
// already loaded into the mart. Both marks are upserts that keep the first
// seen/persisted timestamp.
type StateService struct {
	db *gorm.DB
}

func NewStateService(db *gorm.DB) *StateService {
	return &StateService{db: db}
}

// IsFileProcessed reports whether this log file (for the given server) was
// already parsed and archived at least once.
func (s *StateService) IsFileProcessed(serverName, filename string) (bool, error) {
	var file models.ProcessedFileModel
	err := s.db.Where("server_name = ? AND filename = ?", serverName, filename).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkFileProcessed records that a log file was parsed and archived. On
// repeat processing first_seen_at is preserved and last_processed_at moves.
func (s *StateService) MarkFileProcessed(serverName, filename string, fileDate *string, hashSha256 *string) error {
	now := time.Now().UTC()

	var existing models.ProcessedFileModel
	err := s.db.Where("server_name = ? AND filename = ?", serverName, filename).First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.db.Create(&models.ProcessedFileModel{
			ServerName:      serverName,
			Filename:        filename,
			FileDate:        fileDate,
			FirstSeenAt:     now,
			LastProcessedAt: now,
			HashSha256:      hashSha256,
		}).Error
	case err != nil:
		return err
	default:
		existing.FileDate = fileDate
		existing.LastProcessedAt = now
		existing.HashSha256 = hashSha256
		return s.db.Save(&existing).Error
	}
}

// ListProcessedFiles returns the processed-file ledger, most recent first.
func (s *StateService) ListProcessedFiles() ([]models.ProcessedFileModel, error) {
	var files []models.ProcessedFileModel
	err := s.db.Order("last_processed_at DESC").Find(&files).Error
	return files, err
}

// IsBatchPersisted reports whether this JSONL batch was already loaded into
// the mart.
func (s *StateService) IsBatchPersisted(batchPath string) (bool, error) {
	var batch models.PersistedBatchModel
	err := s.db.Where("batch_path = ?", batchPath).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkBatchPersisted records that a JSONL batch was loaded. On repeat loads
// first_persisted_at is preserved.
func (s *StateService) MarkBatchPersisted(batchPath, batchId string, serverName, sourceFile *string, rowsInserted int) error {
	now := time.Now().UTC()

	var existing models.PersistedBatchModel
	err := s.db.Where("batch_path = ?", batchPath).First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.db.Create(&models.PersistedBatchModel{
			BatchPath:        batchPath,
			BatchId:          batchId,
			ServerName:       serverName,
			SourceFile:       sourceFile,
			RowsInserted:     rowsInserted,
			FirstPersistedAt: now,
			LastPersistedAt:  now,
		}).Error
	case err != nil:
		return err
	default:
		existing.BatchId = batchId
		existing.ServerName = serverName
		existing.SourceFile = sourceFile
		existing.RowsInserted = rowsInserted
		existing.LastPersistedAt = now
		return s.db.Save(&existing).Error
	}
}
