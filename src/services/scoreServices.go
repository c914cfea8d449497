package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BioMart/BioMart-Backend/src/dtos"
	"github.com/BioMart/BioMart-Backend/src/models"
	excelize "github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Cache entry
type CacheEntry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// ScoreFilter restricts mart queries. Nil fields are not applied.
type ScoreFilter struct {
	From       *time.Time
	To         *time.Time
	ServerName *string
	Modality   *string
	Channel    *string
	ReId       *string
	RqType     *string
	Limit      int
	Offset     int
}

func (f ScoreFilter) isEmpty() bool {
	return f.From == nil && f.To == nil && f.ServerName == nil &&
		f.Modality == nil && f.Channel == nil && f.ReId == nil && f.RqType == nil
}

type ScoreService struct {
	db    *gorm.DB
	cache map[string]*CacheEntry
	mutex sync.RWMutex
}

func NewScoreService(db *gorm.DB) *ScoreService {
	service := &ScoreService{
		db:    db,
		cache: make(map[string]*CacheEntry),
	}

	// Clean up cache every 10 minutes
	go service.cleanupCache()

	return service
}

func (s *ScoreService) cleanupCache() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mutex.Lock()
		now := time.Now()
		for key, entry := range s.cache {
			if now.After(entry.ExpiresAt) {
				delete(s.cache, key)
			}
		}
		s.mutex.Unlock()
	}
}

func (s *ScoreService) setCache(key string, data interface{}, duration time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.cache[key] = &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(duration),
	}
}

func (s *ScoreService) getCache(key string) (interface{}, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, exists := s.cache[key]
	if !exists || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}

	return entry.Data, true
}

func (s *ScoreService) invalidateCache(prefix string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key := range s.cache {
		if strings.HasPrefix(key, prefix) {
			delete(s.cache, key)
		}
	}
}

// ======================= INSERTION =======================

// InsertScores appends fact rows to the mart. The table tolerates null in
// every measurement column, but re_id, modality and channel are required;
// rq_type falls back to "IP" when omitted, matching the column default.
func (s *ScoreService) InsertScores(rows []models.BiometricScoreModel) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	for i := range rows {
		if strings.TrimSpace(rows[i].ReId) == "" {
			return 0, fmt.Errorf("row %d: re_id is required", i)
		}
		if strings.TrimSpace(rows[i].Modality) == "" {
			return 0, fmt.Errorf("row %d: modality is required", i)
		}
		if strings.TrimSpace(rows[i].Channel) == "" {
			return 0, fmt.Errorf("row %d: channel is required", i)
		}
		if rows[i].RqType == "" {
			rows[i].RqType = "IP"
		}
	}

	if err := s.db.Create(&rows).Error; err != nil {
		return 0, err
	}

	s.invalidateCache("score_summary")

	return len(rows), nil
}

// ======================= QUERIES =======================

func (s *ScoreService) applyFilter(query *gorm.DB, filter ScoreFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("log_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("log_date <= ?", *filter.To)
	}
	if filter.ServerName != nil {
		query = query.Where("server_name = ?", *filter.ServerName)
	}
	if filter.Modality != nil {
		query = query.Where("modality = ?", *filter.Modality)
	}
	if filter.Channel != nil {
		query = query.Where("channel = ?", *filter.Channel)
	}
	if filter.ReId != nil {
		query = query.Where("re_id = ?", *filter.ReId)
	}
	if filter.RqType != nil {
		query = query.Where("rq_type = ?", *filter.RqType)
	}
	return query
}

// GetScores returns the fact rows matching the filter, newest id first.
func (s *ScoreService) GetScores(filter ScoreFilter) ([]models.BiometricScoreModel, error) {
	var scores []models.BiometricScoreModel

	query := s.applyFilter(s.db.Model(&models.BiometricScoreModel{}), filter).Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	err := query.Find(&scores).Error
	return scores, err
}

func (s *ScoreService) GetScoreByID(id int) (*models.BiometricScoreModel, error) {
	var score models.BiometricScoreModel
	if err := s.db.First(&score, id).Error; err != nil {
		return nil, err
	}
	return &score, nil
}

// CountScores returns the number of fact rows matching the filter.
func (s *ScoreService) CountScores(filter ScoreFilter) (int64, error) {
	var count int64
	err := s.applyFilter(s.db.Model(&models.BiometricScoreModel{}), filter).Count(&count).Error
	return count, err
}

// ======================= REPORTING =======================

// GetScoreSummary aggregates the mart per (modality, channel): row count,
// avg/min/max score and avg minutiae count. The unfiltered summary is cached
// for 5 minutes, the usual BI dashboard refresh.
func (s *ScoreService) GetScoreSummary(filter ScoreFilter) ([]dtos.ScoreSummaryDTO, error) {
	cacheKey := "score_summary"
	cacheable := filter.isEmpty()

	if cacheable {
		if cached, found := s.getCache(cacheKey); found {
			return cached.([]dtos.ScoreSummaryDTO), nil
		}
	}

	type summaryRow struct {
		Modality string   `gorm:"column:modality"`
		Channel  string   `gorm:"column:channel"`
		Count    int64    `gorm:"column:count"`
		AvgScore *float64 `gorm:"column:avg_score"`
		MinScore *int     `gorm:"column:min_score"`
		MaxScore *int     `gorm:"column:max_score"`
		AvgNbpk  *float64 `gorm:"column:avg_nbpk"`
	}

	var rows []summaryRow

	query := s.applyFilter(s.db.Model(&models.BiometricScoreModel{}), filter).
		Select(`modality,
			channel,
			COUNT(*) AS count,
			AVG(score) AS avg_score,
			MIN(score) AS min_score,
			MAX(score) AS max_score,
			AVG(nbpk) AS avg_nbpk`).
		Group("modality, channel").
		Order("modality, channel")

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]dtos.ScoreSummaryDTO, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, dtos.ScoreSummaryDTO{
			Modality: row.Modality,
			Channel:  row.Channel,
			Count:    row.Count,
			AvgScore: row.AvgScore,
			MinScore: row.MinScore,
			MaxScore: row.MaxScore,
			AvgNbpk:  row.AvgNbpk,
		})
	}

	if cacheable {
		s.setCache(cacheKey, summaries, 5*time.Minute)
	}

	return summaries, nil
}

// ExportSummaryExcel renders the (modality, channel) summary as an .xlsx
// workbook.
func (s *ScoreService) ExportSummaryExcel(filter ScoreFilter) ([]byte, error) {
	summaries, err := s.GetScoreSummary(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Scores Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Modality", "Channel", "Count", "Avg Score", "Min Score", "Max Score", "Avg Nbpk"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, summary := range summaries {
		rowIdx := i + 2
		values := []interface{}{
			summary.Modality,
			summary.Channel,
			summary.Count,
			derefFloat(summary.AvgScore),
			derefInt(summary.MinScore),
			derefInt(summary.MaxScore),
			derefFloat(summary.AvgNbpk),
		}
		for j, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, rowIdx)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func derefFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func derefInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// IsNotFound reports whether err is the record-not-found case.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
