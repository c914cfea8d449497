package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BioMart/BioMart-Backend/src/models"
)

func TestParseLineBasic(t *testing.T) {
	line := "RqType=IP ReId=438326870647742011 FaceSampleId=1 SampleType=STILL " +
		"Face=200 IrisSampleId=1 LeftEye=84 RightEye=84"

	rec := ParseLine(line)

	if rec.RqType != "IP" {
		t.Fatalf("RqType = %q, want IP", rec.RqType)
	}
	if rec.ReId != "438326870647742011" {
		t.Fatalf("ReId = %q", rec.ReId)
	}
	if rec.FaceSampleId == nil || *rec.FaceSampleId != 1 {
		t.Fatalf("FaceSampleId = %v, want 1", rec.FaceSampleId)
	}
	if rec.FaceSampleType == nil || *rec.FaceSampleType != "STILL" {
		t.Fatalf("FaceSampleType = %v, want STILL", rec.FaceSampleType)
	}
	if rec.FaceScore == nil || *rec.FaceScore != 200 {
		t.Fatalf("FaceScore = %v, want 200", rec.FaceScore)
	}
	if rec.IrisSampleId == nil || *rec.IrisSampleId != 1 {
		t.Fatalf("IrisSampleId = %v, want 1", rec.IrisSampleId)
	}
	if rec.LeftEyeScore == nil || *rec.LeftEyeScore != 84 {
		t.Fatalf("LeftEyeScore = %v, want 84", rec.LeftEyeScore)
	}
	if rec.RightEyeScore == nil || *rec.RightEyeScore != 84 {
		t.Fatalf("RightEyeScore = %v, want 84", rec.RightEyeScore)
	}
	if rec.Raw != line {
		t.Fatalf("Raw = %q", rec.Raw)
	}
}

func TestParseLineFingerprints(t *testing.T) {
	line := "RqType=IP ReId=123 ReId=-7 " +
		"FingerprintSampleId=2 SampleType=TENPRINT_SLAP " +
		"RightThumb=62 nbpk=14 RightIndex=55 nbpk=12 LeftLittle=X"

	rec := ParseLine(line)

	if rec.ReId != "123" {
		t.Fatalf("ReId = %q", rec.ReId)
	}
	if rec.StatusCode == nil || *rec.StatusCode != -7 {
		t.Fatalf("StatusCode = %v, want -7", rec.StatusCode)
	}
	if len(rec.FingerprintSamples) != 1 {
		t.Fatalf("FingerprintSamples len = %d, want 1", len(rec.FingerprintSamples))
	}

	fp := rec.FingerprintSamples[0]
	if fp.SampleId != 2 {
		t.Fatalf("SampleId = %d, want 2", fp.SampleId)
	}
	if fp.SampleType == nil || *fp.SampleType != "TENPRINT_SLAP" {
		t.Fatalf("SampleType = %v, want TENPRINT_SLAP", fp.SampleType)
	}

	thumb, ok := fp.Values[models.ChannelRightThumb]
	if !ok {
		t.Fatalf("missing RIGHT_THUMB value")
	}
	if thumb.Score == nil || *thumb.Score != 62 {
		t.Fatalf("RIGHT_THUMB score = %v, want 62", thumb.Score)
	}
	if thumb.Nbpk == nil || *thumb.Nbpk != 14 {
		t.Fatalf("RIGHT_THUMB nbpk = %v, want 14", thumb.Nbpk)
	}

	index := fp.Values[models.ChannelRightIndex]
	if index.Nbpk == nil || *index.Nbpk != 12 {
		t.Fatalf("RIGHT_INDEX nbpk = %v, want 12", index.Nbpk)
	}

	// malformed score is kept as a null measurement
	little, ok := fp.Values[models.ChannelLeftLittle]
	if !ok {
		t.Fatalf("missing LEFT_LITTLE value")
	}
	if little.Score != nil {
		t.Fatalf("LEFT_LITTLE score = %v, want nil", little.Score)
	}
}

func TestParseLineMultipleFingerprintSamples(t *testing.T) {
	line := "RqType=IP ReId=55 " +
		"FingerprintSampleId=1 SampleType=TENPRINT_SLAP RightThumb=40 nbpk=10 " +
		"FingerprintSampleId=2 SampleType=TENPRINT_SLAP LeftThumb=40 nbpk=9"

	rec := ParseLine(line)
	if len(rec.FingerprintSamples) != 2 {
		t.Fatalf("FingerprintSamples len = %d, want 2", len(rec.FingerprintSamples))
	}
	if _, ok := rec.FingerprintSamples[0].Values[models.ChannelRightThumb]; !ok {
		t.Fatalf("sample 1 missing RIGHT_THUMB")
	}
	if _, ok := rec.FingerprintSamples[1].Values[models.ChannelLeftThumb]; !ok {
		t.Fatalf("sample 2 missing LEFT_THUMB")
	}
}

func TestParseLineSampleTypeBinding(t *testing.T) {
	// the first SampleType belongs to the face, the one after a
	// FingerprintSampleId belongs to that fingerprint sample
	line := "RqType=IP ReId=9 SampleType=STILL FingerprintSampleId=1 SampleType=TENPRINT_SLAP RightThumb=10"

	rec := ParseLine(line)
	if rec.FaceSampleType == nil || *rec.FaceSampleType != "STILL" {
		t.Fatalf("FaceSampleType = %v, want STILL", rec.FaceSampleType)
	}
	fp := rec.FingerprintSamples[0]
	if fp.SampleType == nil || *fp.SampleType != "TENPRINT_SLAP" {
		t.Fatalf("fingerprint SampleType = %v, want TENPRINT_SLAP", fp.SampleType)
	}
}

func TestParseLineExtrasAndJunk(t *testing.T) {
	line := "RqType=VER ReId=42 noequals Quality=HIGH Face=abc"

	rec := ParseLine(line)
	if rec.RqType != "VER" {
		t.Fatalf("RqType = %q", rec.RqType)
	}
	if rec.FaceScore != nil {
		t.Fatalf("FaceScore = %v, want nil for malformed value", rec.FaceScore)
	}
	if got := rec.Extra["Quality"]; got != "HIGH" {
		t.Fatalf("Extra[Quality] = %q, want HIGH", got)
	}
	if _, ok := rec.Extra["noequals"]; ok {
		t.Fatalf("token without '=' should not land in Extra")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.2026-01-26.log")
	content := "RqType=IP ReId=1 Face=100\n" +
		"\n" +
		"RqType=VER ReId=2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	records, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ParseFile() len = %d, want 2 (blank line skipped)", len(records))
	}
	if records[0].ReId != "1" || records[1].ReId != "2" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestBatchRecordRoundTrip(t *testing.T) {
	line := "RqType=IP ReId=77 ReId=-5 FaceSampleId=1 SampleType=STILL Face=150 " +
		"IrisSampleId=1 LeftEye=80 RightEye=82 " +
		"FingerprintSampleId=3 SampleType=TENPRINT_SLAP RightThumb=60 nbpk=20"

	rec := ParseLine(line)
	got := ToBatchRecord(rec).ToRecord()

	if got.ReId != rec.ReId || got.RqType != rec.RqType {
		t.Fatalf("identifiers changed in round trip: %+v", got)
	}
	if got.StatusCode == nil || *got.StatusCode != -5 {
		t.Fatalf("StatusCode = %v, want -5", got.StatusCode)
	}
	if got.FaceScore == nil || *got.FaceScore != 150 {
		t.Fatalf("FaceScore = %v, want 150", got.FaceScore)
	}
	if got.LeftEyeScore == nil || *got.LeftEyeScore != 80 {
		t.Fatalf("LeftEyeScore = %v, want 80", got.LeftEyeScore)
	}
	if len(got.FingerprintSamples) != 1 {
		t.Fatalf("FingerprintSamples len = %d, want 1", len(got.FingerprintSamples))
	}
	thumb := got.FingerprintSamples[0].Values[models.ChannelRightThumb]
	if thumb.Nbpk == nil || *thumb.Nbpk != 20 {
		t.Fatalf("RIGHT_THUMB nbpk = %v, want 20", thumb.Nbpk)
	}
}

func TestToBatchRecordNonIP(t *testing.T) {
	rec := ParseLine("RqType=VER ReId=42 Face=100")
	batch := ToBatchRecord(rec)
	if batch.Face != nil {
		t.Fatalf("non-IP batch record should keep identifiers only, got %+v", batch)
	}
	if batch.RqType != "VER" || batch.ReId != "42" {
		t.Fatalf("unexpected batch record: %+v", batch)
	}
}
