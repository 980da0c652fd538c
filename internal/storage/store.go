// Package storage persists Monte Carlo batches for later inspection.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/n-veld/apogee/internal/mc"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// BatchMetadata is the JSON sidecar written next to the trial records.
type BatchMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Seed      int64     `json:"seed"`
	Requested int       `json:"requested"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	ElapsedS  float64   `json:"elapsed_seconds"`

	Parameters []string       `json:"parameters"`
	Analyses   []*mc.Analysis `json:"analyses,omitempty"`
}

// SaveBatch writes a batch directory containing metadata.json and
// trials.csv, returning the batch ID.
func (s *Store) SaveBatch(plan *mc.Plan, batch *mc.Batch, analyses []*mc.Analysis) (string, error) {
	batchID := fmt.Sprintf("mc_%d", time.Now().Unix())
	dir := filepath.Join(s.baseDir, batchID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := BatchMetadata{
		ID:         batchID,
		Timestamp:  time.Now(),
		Seed:       plan.Seed,
		Requested:  batch.Requested,
		Completed:  batch.Completed,
		Failed:     batch.Failed,
		ElapsedS:   batch.Elapsed.Seconds(),
		Parameters: plan.Names,
		Analyses:   analyses,
	}

	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, "trials.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"trial"}
	header = append(header, plan.Names...)
	header = append(header, mc.OutcomeNames()...)
	header = append(header, "ok", "error")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, rec := range batch.Records {
		row := []string{strconv.Itoa(rec.Index)}
		for _, name := range plan.Names {
			row = append(row, strconv.FormatFloat(rec.Params[name], 'g', -1, 64))
		}
		for _, name := range mc.OutcomeNames() {
			v, _ := mc.OutcomeValue(rec.Outcomes, name)
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		row = append(row, strconv.FormatBool(rec.OK), rec.Err)
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return batchID, nil
}

// ListBatches returns the IDs of saved batches, newest last.
func (s *Store) ListBatches() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// LoadMetadata reads the metadata sidecar of one saved batch.
func (s *Store) LoadMetadata(batchID string) (*BatchMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, batchID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta BatchMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
