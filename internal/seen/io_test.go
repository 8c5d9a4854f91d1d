package seen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jimezsa/clockedin/internal/models"
)

func TestReadWriteJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jobs.json")

	jobs := []models.Job{{ID: "1", Title: "SRE", Company: "Acme", URL: "https://www.linkedin.com/jobs/view/1"}}
	if err := WriteJobs(path, jobs); err != nil {
		t.Fatalf("WriteJobs() error = %v", err)
	}

	got, err := ReadJobs(path)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected jobs: %+v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err = %v", err)
	}
}

func TestReadJobsAllowMissing(t *testing.T) {
	got, err := ReadJobsAllowMissing(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("ReadJobsAllowMissing() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	jobs := []models.Job{{ID: "1", Title: "SRE", Company: "Acme"}}

	added, err := Update(path, jobs)
	if err != nil || added != 1 {
		t.Fatalf("Update() = %d, %v; want 1, nil", added, err)
	}
	added, err = Update(path, jobs)
	if err != nil || added != 0 {
		t.Fatalf("second Update() = %d, %v; want 0, nil", added, err)
	}
}
