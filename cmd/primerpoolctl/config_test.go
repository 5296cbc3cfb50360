package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadJobFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.json")
	body := `{
		"k": 2,
		"cap": 2,
		"seed": 7,
		"max_generations": 15,
		"weights": {"dimer": 2.0, "tm": 1.0, "balance": 0.5},
		"primers": [
			{"id": "p0", "forward": "AAAAAAAAAA", "reverse": "TTTTTTTTTT"},
			{"id": "p1", "forward": "GGGGGGGGGG", "reverse": "CCCCCCCCCC"}
		]
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	job, err := loadJobFromConfig(path)
	if err != nil {
		t.Fatalf("loadJobFromConfig: %v", err)
	}
	if len(job.Primers) != 2 {
		t.Fatalf("len(Primers) = %d, want 2", len(job.Primers))
	}
	if job.Primers[0].ID != "p0" || job.Primers[1].Forward != "GGGGGGGGGG" {
		t.Errorf("unexpected primers: %+v", job.Primers)
	}
	if job.Params.K != 2 || job.Params.Cap != 2 || job.Params.Seed != 7 {
		t.Errorf("unexpected params: %+v", job.Params)
	}
	if job.Params.Weights.Dimer != 2.0 {
		t.Errorf("Weights.Dimer = %v, want 2.0", job.Params.Weights.Dimer)
	}
}

func TestLoadJobFromConfigRejectsEmptyPrimers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.json")
	if err := os.WriteFile(path, []byte(`{"k": 2}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := loadJobFromConfig(path); err == nil {
		t.Fatal("expected error for empty primers")
	}
}

func TestUsageErrorMissingCommand(t *testing.T) {
	if err := run(nil, nil); err == nil {
		t.Fatal("expected usage error for missing command")
	}
}
