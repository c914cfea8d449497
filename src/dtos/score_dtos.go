package dtos

// ScoreSummaryDTO is one aggregated reporting row per (modality, channel)
// pair. AvgNbpk is only meaningful for FINGER channels and omitted otherwise.
type ScoreSummaryDTO struct {
	Modality string   `json:"modality"`
	Channel  string   `json:"channel"`
	Count    int64    `json:"count"`
	AvgScore *float64 `json:"avgScore,omitempty"`
	MinScore *int     `json:"minScore,omitempty"`
	MaxScore *int     `json:"maxScore,omitempty"`
	AvgNbpk  *float64 `json:"avgNbpk,omitempty"`
}

// IngestRunResultDTO reports the outcome of one pipeline run.
type IngestRunResultDTO struct {
	FilesProcessed   int `json:"filesProcessed"`
	BatchesPersisted int `json:"batchesPersisted"`
	RowsInserted     int `json:"rowsInserted"`
}

// CollectRunResultDTO reports the outcome of one collection run.
type CollectRunResultDTO struct {
	FilesDownloaded int `json:"filesDownloaded"`
}
