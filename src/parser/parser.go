package parser

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/BioMart/BioMart-Backend/src/models"
)

// FingerValue holds the measurements reported for a single finger inside a
// fingerprint sample block.
type FingerValue struct {
	Score *int `json:"score"`
	Nbpk  *int `json:"nbpk"`
}

// FingerprintSample is one FingerprintSampleId block of a log line: its
// sample type plus the per-finger values, keyed by channel name
// (RIGHT_THUMB, LEFT_INDEX, ...).
type FingerprintSample struct {
	SampleId   int                    `json:"sample_id"`
	SampleType *string                `json:"sample_type"`
	Values     map[string]FingerValue `json:"fingers"`
}

// BiometricsRecord is one parsed log line before it is flattened into fact
// rows. Fields are nil when the line did not carry them.
type BiometricsRecord struct {
	RqType     string
	ReId       string
	StatusCode *int

	FaceSampleId   *int
	FaceSampleType *string
	FaceScore      *int

	IrisSampleId  *int
	LeftEyeScore  *int
	RightEyeScore *int

	Raw                string
	Extra              map[string]string
	FingerprintSamples []*FingerprintSample
}

// fingerKeys maps the log token names onto channel names.
var fingerKeys = map[string]string{
	"RightThumb":  models.ChannelRightThumb,
	"RightIndex":  models.ChannelRightIndex,
	"RightMiddle": models.ChannelRightMiddle,
	"RightRing":   models.ChannelRightRing,
	"RightLittle": models.ChannelRightLittle,
	"LeftThumb":   models.ChannelLeftThumb,
	"LeftIndex":   models.ChannelLeftIndex,
	"LeftMiddle":  models.ChannelLeftMiddle,
	"LeftRing":    models.ChannelLeftRing,
	"LeftLittle":  models.ChannelLeftLittle,
}

var handledKeys = map[string]bool{
	"RqType":              true,
	"ReId":                true,
	"FaceSampleId":        true,
	"SampleType":          true,
	"Face":                true,
	"IrisSampleId":        true,
	"LeftEye":             true,
	"RightEye":            true,
	"FingerprintSampleId": true,
	"nbpk":                true,
}

func parseInt(value string) *int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

// ParseLine parses one raw quality-log line of the form
//
//	RqType=IP ReId=438326870647742011 FaceSampleId=1 SampleType=STILL Face=200 IrisSampleId=1 LeftEye=84 RightEye=84 ...
//
// Rules:
//   - the first ReId is the transaction identifier; a later negative integer
//     ReId is kept as the status code
//   - the first SampleType before any fingerprint block belongs to the face
//   - FingerprintSampleId opens a fingerprint block; a finger token may be
//     followed by nbpk=N, which binds to that finger
//   - unknown keys are collected into Extra, malformed integers are dropped
func ParseLine(line string) BiometricsRecord {
	tokens := strings.Fields(line)

	rec := BiometricsRecord{
		Raw:   strings.TrimRight(line, "\n"),
		Extra: map[string]string{},
	}

	var currentFp *FingerprintSample

	for i := 0; i < len(tokens); i++ {
		key, value, ok := strings.Cut(tokens[i], "=")
		if !ok {
			continue
		}

		switch {
		case key == "RqType":
			rec.RqType = value

		case key == "ReId":
			if rec.ReId == "" {
				rec.ReId = value
			} else if code, err := strconv.Atoi(value); err == nil && code < 0 {
				rec.StatusCode = &code
			}

		case key == "FaceSampleId":
			rec.FaceSampleId = parseInt(value)

		case key == "SampleType" && currentFp == nil && rec.FaceSampleType == nil:
			v := value
			rec.FaceSampleType = &v

		case key == "Face":
			rec.FaceScore = parseInt(value)

		case key == "IrisSampleId":
			rec.IrisSampleId = parseInt(value)

		case key == "LeftEye":
			rec.LeftEyeScore = parseInt(value)

		case key == "RightEye":
			rec.RightEyeScore = parseInt(value)

		case key == "FingerprintSampleId":
			sampleId := -1
			if n := parseInt(value); n != nil {
				sampleId = *n
			}
			currentFp = &FingerprintSample{SampleId: sampleId, Values: map[string]FingerValue{}}
			rec.FingerprintSamples = append(rec.FingerprintSamples, currentFp)

		case key == "SampleType" && currentFp != nil && currentFp.SampleType == nil:
			v := value
			currentFp.SampleType = &v

		default:
			channel, isFinger := fingerKeys[key]
			if isFinger && currentFp != nil {
				fv := FingerValue{Score: parseInt(value)}
				// nbpk, when present, immediately follows its finger token
				if i+1 < len(tokens) {
					if nkey, nvalue, nok := strings.Cut(tokens[i+1], "="); nok && nkey == "nbpk" {
						fv.Nbpk = parseInt(nvalue)
						i++
					}
				}
				currentFp.Values[channel] = fv
				continue
			}
			if !handledKeys[key] && !isFinger {
				rec.Extra[key] = value
			}
		}
	}

	return rec
}

// ParseFile parses a whole log file, skipping blank lines.
func ParseFile(path string) ([]BiometricsRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []BiometricsRecord
	scanner := bufio.NewScanner(f)
	// some lines carry a full ten-finger slap and can get long
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, ParseLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
