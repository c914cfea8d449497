package services

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BioMart/BioMart-Backend/src/dtos"
	"github.com/BioMart/BioMart-Backend/src/models"
	"github.com/BioMart/BioMart-Backend/src/parser"
	"github.com/google/uuid"
)

// IngestConfig holds the directory layout of the pipeline. Raw logs arrive
// under InputDir/<server>/, batches are staged under OutputJSONDir with the
// same relative layout, and both are moved under their archive dir once
// handled.
type IngestConfig struct {
	InputDir       string
	OutputJSONDir  string
	ArchiveDir     string
	ArchiveJSONDir string
}

// IngestService runs the two-stage pipeline: raw .log files are parsed into
// JSONL batches (keeping only RqType=IP lines), then pending batches are
// flattened into fact rows and loaded into the mart. Each stage archives its
// input and records it in the state ledger so reruns are no-ops.
type IngestService struct {
	scores *ScoreService
	state  *StateService
	cfg    IngestConfig
}

func NewIngestService(scores *ScoreService, state *StateService, cfg IngestConfig) *IngestService {
	return &IngestService{scores: scores, state: state, cfg: cfg}
}

var fileDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// fileDate extracts the YYYY-MM-DD fragment of a log file name, e.g.
// quality.2026-01-26.log. Returns nil when the name carries no date.
func fileDate(filename string) *time.Time {
	m := fileDateRe.FindString(filename)
	if m == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", m)
	if err != nil {
		return nil
	}
	return &d
}

// relativeTo returns path relative to base, falling back to the bare file
// name for paths outside base.
func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return rel
}

// serverFromRel derives the server name from the first segment of a relative
// path (InputDir/<server>/file.log layout). Nil for files at the root.
func serverFromRel(rel string) *string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return nil
	}
	return &parts[0]
}

func listFiles(dir, ext string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// moveFile renames src to dst, copying when the rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

func hashFile(path string) (*string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	sum := hex.EncodeToString(h.Sum(nil))
	return &sum, nil
}

// ======================= STAGE 1: LOG -> JSONL =======================

// ProcessAllLogs parses every pending .log under InputDir into a JSONL batch
// and archives the log. Returns the number of files handled; a failing file
// is logged and skipped.
func (s *IngestService) ProcessAllLogs() (int, error) {
	logFiles, err := listFiles(s.cfg.InputDir, ".log")
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, logPath := range logFiles {
		if _, err := s.processLogFile(logPath); err != nil {
			log.Printf("Failed to process %s: %v\n", logPath, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// processLogFile parses one log, writes its RqType=IP records as a JSONL
// batch mirroring the relative path, then archives the log. Logs without IP
// records are archived without producing a batch.
func (s *IngestService) processLogFile(logPath string) (int, error) {
	records, err := parser.ParseFile(logPath)
	if err != nil {
		return 0, err
	}

	var ipRecords []parser.BiometricsRecord
	for _, rec := range records {
		if rec.RqType == "IP" {
			ipRecords = append(ipRecords, rec)
		}
	}

	rel := relativeTo(s.cfg.InputDir, logPath)

	if len(ipRecords) == 0 {
		log.Printf("No RqType=IP records in %s, nothing to export\n", logPath)
		return 0, s.archiveLogFile(logPath, rel)
	}

	batchPath := filepath.Join(s.cfg.OutputJSONDir, rel+".jsonl")
	if err := os.MkdirAll(filepath.Dir(batchPath), 0755); err != nil {
		return 0, err
	}

	f, err := os.Create(batchPath)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(f)
	for _, rec := range ipRecords {
		if err := enc.Encode(parser.ToBatchRecord(rec)); err != nil {
			f.Close()
			return 0, err
		}
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	log.Printf("Wrote %d records from %s to %s\n", len(ipRecords), logPath, batchPath)

	return len(ipRecords), s.archiveLogFile(logPath, rel)
}

// archiveLogFile moves a handled log under ArchiveDir and records it in the
// processed-file ledger with the sha256 of the archived copy.
func (s *IngestService) archiveLogFile(logPath, rel string) error {
	dest := filepath.Join(s.cfg.ArchiveDir, rel)
	if err := moveFile(logPath, dest); err != nil {
		return fmt.Errorf("archive %s: %w", logPath, err)
	}

	hash, err := hashFile(dest)
	if err != nil {
		log.Printf("Could not hash archived file %s: %v\n", dest, err)
	}

	server := serverFromRel(rel)
	if server == nil {
		return nil
	}

	filename := filepath.Base(rel)
	var dateStr *string
	if d := fileDate(filename); d != nil {
		str := d.Format("2006-01-02")
		dateStr = &str
	}

	if err := s.state.MarkFileProcessed(*server, filename, dateStr, hash); err != nil {
		log.Printf("Could not mark %s/%s as processed: %v\n", *server, filename, err)
	}
	return nil
}

// ======================= STAGE 2: JSONL -> MART =======================

// PersistAllBatches loads every pending JSONL batch into the mart and
// archives it. Batches already in the ledger are archived without reloading;
// a batch whose insert fails stays in place for the next run.
func (s *IngestService) PersistAllBatches() (int, int, error) {
	batchFiles, err := listFiles(s.cfg.OutputJSONDir, ".jsonl")
	if err != nil {
		return 0, 0, err
	}

	persisted := 0
	totalRows := 0

	for _, batchPath := range batchFiles {
		rel := relativeTo(s.cfg.OutputJSONDir, batchPath)

		done, err := s.state.IsBatchPersisted(rel)
		if err != nil {
			return persisted, totalRows, err
		}
		if done {
			log.Printf("Batch %s already persisted, archiving\n", batchPath)
			if err := s.archiveBatchFile(batchPath, rel); err != nil {
				log.Printf("Could not archive %s: %v\n", batchPath, err)
			}
			persisted++
			continue
		}

		rows, err := s.persistBatchFile(batchPath, rel)
		if err != nil {
			log.Printf("Failed to persist %s: %v\n", batchPath, err)
			continue
		}
		persisted++
		totalRows += rows
	}

	return persisted, totalRows, nil
}

func (s *IngestService) persistBatchFile(batchPath, rel string) (int, error) {
	f, err := os.Open(batchPath)
	if err != nil {
		return 0, err
	}

	server := serverFromRel(rel)
	sourceFile := strings.TrimSuffix(filepath.Base(rel), ".jsonl")
	stamp := parser.RowStamp{
		LogDate:    fileDate(sourceFile),
		ServerName: server,
		SourceFile: &sourceFile,
	}

	var rows []models.BiometricScoreModel
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var batchRec parser.BatchRecord
		if err := json.Unmarshal([]byte(line), &batchRec); err != nil {
			log.Printf("Skipping malformed JSON line in %s: %v\n", batchPath, err)
			continue
		}
		if batchRec.RqType != "IP" {
			continue
		}
		rows = append(rows, parser.Flatten(batchRec.ToRecord(), stamp)...)
	}
	scanErr := scanner.Err()
	f.Close()
	if scanErr != nil {
		return 0, scanErr
	}

	inserted := 0
	if len(rows) > 0 {
		inserted, err = s.scores.InsertScores(rows)
		if err != nil {
			return 0, err
		}
	}
	log.Printf("Persisted %d score rows from %s\n", inserted, batchPath)

	if err := s.state.MarkBatchPersisted(rel, uuid.NewString(), server, &sourceFile, inserted); err != nil {
		log.Printf("Could not mark batch %s as persisted: %v\n", rel, err)
	}

	if err := s.archiveBatchFile(batchPath, rel); err != nil {
		log.Printf("Could not archive %s: %v\n", batchPath, err)
	}

	return inserted, nil
}

func (s *IngestService) archiveBatchFile(batchPath, rel string) error {
	return moveFile(batchPath, filepath.Join(s.cfg.ArchiveJSONDir, rel))
}

// ======================= DIRECT UPLOAD =======================

// IngestUploadedLog parses a log streamed by the API for a given server and
// loads its RqType=IP rows straight into the mart, bypassing the batch
// staging. Returns the number of fact rows inserted.
func (s *IngestService) IngestUploadedLog(serverName, filename string, r io.Reader) (int, error) {
	var server *string
	if strings.TrimSpace(serverName) != "" {
		server = &serverName
	}
	source := filepath.Base(filename)
	stamp := parser.RowStamp{
		LogDate:    fileDate(source),
		ServerName: server,
		SourceFile: &source,
	}

	var rows []models.BiometricScoreModel
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec := parser.ParseLine(line)
		if rec.RqType != "IP" {
			continue
		}
		rows = append(rows, parser.Flatten(rec, stamp)...)
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		return 0, nil
	}
	return s.scores.InsertScores(rows)
}

// ======================= PIPELINE =======================

// RunPipeline executes one full pass: process pending logs, then persist
// pending batches.
func (s *IngestService) RunPipeline() (*dtos.IngestRunResultDTO, error) {
	files, err := s.ProcessAllLogs()
	if err != nil {
		return nil, err
	}
	batches, rows, err := s.PersistAllBatches()
	if err != nil {
		return nil, err
	}
	return &dtos.IngestRunResultDTO{
		FilesProcessed:   files,
		BatchesPersisted: batches,
		RowsInserted:     rows,
	}, nil
}

// StartScheduler runs the pipeline every interval, preceded by a collection
// pass when a collector is configured. Runs until the process exits.
func (s *IngestService) StartScheduler(interval time.Duration, collector *CollectService) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if collector != nil {
				if _, err := collector.CollectFromServers(); err != nil {
					log.Printf("Scheduled collection failed: %v\n", err)
				}
			}
			if result, err := s.RunPipeline(); err != nil {
				log.Printf("Scheduled ingest failed: %v\n", err)
			} else if result.FilesProcessed > 0 || result.RowsInserted > 0 {
				log.Printf("Scheduled ingest: %d files, %d rows\n", result.FilesProcessed, result.RowsInserted)
			}
		}
	}()
}
