package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/clockedin/internal/models"
)

// ReadJobs reads a JSON array of jobs from path.
func ReadJobs(path string) ([]models.Job, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Job{}, nil
	}

	var jobs []models.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if jobs == nil {
		return []models.Job{}, nil
	}
	return jobs, nil
}

// ReadJobsAllowMissing treats a missing file as empty history.
func ReadJobsAllowMissing(path string) ([]models.Job, error) {
	jobs, err := ReadJobs(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Job{}, nil
		}
		return nil, err
	}
	return jobs, nil
}

// WriteJobs replaces path with jobs as indented JSON.
func WriteJobs(path string, jobs []models.Job) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Update merges jobs into the history file at path and returns how many
// were new.
func Update(path string, jobs []models.Job) (int, error) {
	history, err := ReadJobsAllowMissing(path)
	if err != nil {
		return 0, err
	}
	merged, added := Merge(history, jobs)
	if added == 0 {
		return 0, nil
	}
	return added, WriteJobs(path, merged)
}
