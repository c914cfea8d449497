package parser

// BatchRecord is the JSONL wire form of a parsed record, one object per line
// in a batch file. Only RqType=IP lines are written as structured records;
// anything else keeps just its identifiers.
type BatchRecord struct {
	RqType  string            `json:"rq_type"`
	ReId    string            `json:"re_id"`
	ReCode  *int              `json:"re_code,omitempty"`
	RawLine string            `json:"raw_line,omitempty"`
	Face    *BatchFace        `json:"face,omitempty"`
	Iris    *BatchIris        `json:"iris,omitempty"`
	Fingers []BatchFinger     `json:"fingerprints,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
}

type BatchFace struct {
	SampleId   *int    `json:"sample_id"`
	SampleType *string `json:"sample_type"`
	Score      *int    `json:"score"`
}

type BatchIris struct {
	SampleId *int `json:"sample_id"`
	Left     *int `json:"left"`
	Right    *int `json:"right"`
}

type BatchFinger struct {
	SampleId   int                    `json:"sample_id"`
	SampleType *string                `json:"sample_type"`
	Fingers    map[string]FingerValue `json:"fingers"`
}

// ToBatchRecord converts a parsed record into its JSONL form.
func ToBatchRecord(rec BiometricsRecord) BatchRecord {
	if rec.RqType != "IP" {
		return BatchRecord{RqType: rec.RqType, ReId: rec.ReId}
	}

	out := BatchRecord{
		RqType:  rec.RqType,
		ReId:    rec.ReId,
		ReCode:  rec.StatusCode,
		RawLine: rec.Raw,
	}

	if rec.FaceSampleId != nil || rec.FaceSampleType != nil || rec.FaceScore != nil {
		out.Face = &BatchFace{
			SampleId:   rec.FaceSampleId,
			SampleType: rec.FaceSampleType,
			Score:      rec.FaceScore,
		}
	}

	if rec.IrisSampleId != nil || rec.LeftEyeScore != nil || rec.RightEyeScore != nil {
		out.Iris = &BatchIris{
			SampleId: rec.IrisSampleId,
			Left:     rec.LeftEyeScore,
			Right:    rec.RightEyeScore,
		}
	}

	for _, fp := range rec.FingerprintSamples {
		out.Fingers = append(out.Fingers, BatchFinger{
			SampleId:   fp.SampleId,
			SampleType: fp.SampleType,
			Fingers:    fp.Values,
		})
	}

	if len(rec.Extra) > 0 {
		out.Extra = rec.Extra
	}

	return out
}

// ToRecord is the inverse of ToBatchRecord.
func (b BatchRecord) ToRecord() BiometricsRecord {
	rec := BiometricsRecord{
		RqType:     b.RqType,
		ReId:       b.ReId,
		StatusCode: b.ReCode,
		Raw:        b.RawLine,
		Extra:      b.Extra,
	}
	if rec.Extra == nil {
		rec.Extra = map[string]string{}
	}

	if b.Face != nil {
		rec.FaceSampleId = b.Face.SampleId
		rec.FaceSampleType = b.Face.SampleType
		rec.FaceScore = b.Face.Score
	}

	if b.Iris != nil {
		rec.IrisSampleId = b.Iris.SampleId
		rec.LeftEyeScore = b.Iris.Left
		rec.RightEyeScore = b.Iris.Right
	}

	for _, fp := range b.Fingers {
		values := fp.Fingers
		if values == nil {
			values = map[string]FingerValue{}
		}
		rec.FingerprintSamples = append(rec.FingerprintSamples, &FingerprintSample{
			SampleId:   fp.SampleId,
			SampleType: fp.SampleType,
			Values:     values,
		})
	}

	return rec
}
