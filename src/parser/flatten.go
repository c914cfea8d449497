package parser

import (
	"time"

	"github.com/BioMart/BioMart-Backend/src/models"
)

// RowStamp carries the per-file context stamped onto every fact row produced
// from a record: the calendar date of the log, the server the log came from
// and the original file name.
type RowStamp struct {
	LogDate    *time.Time
	ServerName *string
	SourceFile *string
}

// Flatten explodes one parsed record into fact rows: one FACE row, one row
// per eye and one row per finger of every fingerprint sample. A record with
// face, both eyes and a ten-finger slap therefore yields 13 rows.
func Flatten(rec BiometricsRecord, stamp RowStamp) []models.BiometricScoreModel {
	var rows []models.BiometricScoreModel

	base := models.BiometricScoreModel{
		ReId:       rec.ReId,
		ReCode:     rec.StatusCode,
		RqType:     rec.RqType,
		LogDate:    stamp.LogDate,
		ServerName: stamp.ServerName,
		SourceFile: stamp.SourceFile,
	}
	if rec.Raw != "" {
		raw := rec.Raw
		base.RawLine = &raw
	}

	// Face: one row when the line carried any face field.
	if rec.FaceSampleId != nil || rec.FaceSampleType != nil || rec.FaceScore != nil {
		row := base
		row.Modality = models.ModalityFace
		row.Channel = models.ChannelFace
		row.SampleId = rec.FaceSampleId
		row.SampleType = rec.FaceSampleType
		row.Score = rec.FaceScore
		rows = append(rows, row)
	}

	// Iris: one row per eye that reported a score.
	if rec.LeftEyeScore != nil {
		row := base
		row.Modality = models.ModalityIris
		row.Channel = models.ChannelLeftEye
		row.SampleId = rec.IrisSampleId
		row.Score = rec.LeftEyeScore
		rows = append(rows, row)
	}
	if rec.RightEyeScore != nil {
		row := base
		row.Modality = models.ModalityIris
		row.Channel = models.ChannelRightEye
		row.SampleId = rec.IrisSampleId
		row.Score = rec.RightEyeScore
		rows = append(rows, row)
	}

	// Fingerprints: one row per finger per sample, in canonical finger order.
	for _, fp := range rec.FingerprintSamples {
		for _, channel := range models.FingerChannels {
			fv, ok := fp.Values[channel]
			if !ok {
				continue
			}
			row := base
			row.Modality = models.ModalityFinger
			row.Channel = channel
			sampleId := fp.SampleId
			row.SampleId = &sampleId
			row.SampleType = fp.SampleType
			row.Score = fv.Score
			row.Nbpk = fv.Nbpk
			rows = append(rows, row)
		}
	}

	return rows
}
