package models

import "time"

// Modality values for BiometricScoreModel.
const (
	ModalityFace   = "FACE"
	ModalityIris   = "IRIS"
	ModalityFinger = "FINGER"
)

// Channel values. FACE pairs with ModalityFace, the eye channels with
// ModalityIris and the finger channels with ModalityFinger. The table does
// not enforce the pairing; writers are expected to keep it consistent.
const (
	ChannelFace     = "FACE"
	ChannelLeftEye  = "LEFT_EYE"
	ChannelRightEye = "RIGHT_EYE"

	ChannelRightThumb  = "RIGHT_THUMB"
	ChannelRightIndex  = "RIGHT_INDEX"
	ChannelRightMiddle = "RIGHT_MIDDLE"
	ChannelRightRing   = "RIGHT_RING"
	ChannelRightLittle = "RIGHT_LITTLE"
	ChannelLeftThumb   = "LEFT_THUMB"
	ChannelLeftIndex   = "LEFT_INDEX"
	ChannelLeftMiddle  = "LEFT_MIDDLE"
	ChannelLeftRing    = "LEFT_RING"
	ChannelLeftLittle  = "LEFT_LITTLE"
)

// FingerChannels lists the finger channels in canonical order.
var FingerChannels = []string{
	ChannelRightThumb,
	ChannelRightIndex,
	ChannelRightMiddle,
	ChannelRightRing,
	ChannelRightLittle,
	ChannelLeftThumb,
	ChannelLeftIndex,
	ChannelLeftMiddle,
	ChannelLeftRing,
	ChannelLeftLittle,
}

// BiometricScoreModel is the fact table of the data mart: one row per
// biometric score event. A single match transaction typically produces
// 1 FACE row, 2 IRIS rows (one per eye) and up to 10 FINGER rows per
// fingerprint sample. Rows are append-only; Nbpk (minutiae count) is only
// populated on FINGER rows.
type BiometricScoreModel struct {
	Id         int        `json:"id" gorm:"primaryKey;autoIncrement"`
	ReId       string     `json:"reId" gorm:"column:re_id;type:text;not null;index:idx_biometric_scores_re_id"`
	ReCode     *int       `json:"reCode" gorm:"column:re_code"`
	RqType     string     `json:"rqType" gorm:"column:rq_type;type:text;not null;default:'IP';index:idx_biometric_scores_rq_type"`
	LogDate    *time.Time `json:"logDate" gorm:"column:log_date;type:date;index:idx_biometric_scores_log_date"`
	ServerName *string    `json:"serverName" gorm:"column:server_name;type:text;index:idx_biometric_scores_server_name"`
	SourceFile *string    `json:"sourceFile" gorm:"column:source_file;type:text"`
	Modality   string     `json:"modality" gorm:"type:text;not null;index:idx_biometric_scores_modality_channel,priority:1"`
	Channel    string     `json:"channel" gorm:"type:text;not null;index:idx_biometric_scores_modality_channel,priority:2"`
	SampleId   *int       `json:"sampleId" gorm:"column:sample_id"`
	SampleType *string    `json:"sampleType" gorm:"column:sample_type;type:text"`
	Score      *int       `json:"score"`
	Nbpk       *int       `json:"nbpk"`
	RawLine    *string    `json:"rawLine" gorm:"column:raw_line;type:text"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (BiometricScoreModel) TableName() string {
	return "biometric_scores"
}
