package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigrations(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, sql := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestVersionOf(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"001_core.sql", 1, true},
		{"012_media_files.sql", 12, true},
		{"readme.sql", 0, false},
		{"abc_notes.sql", 0, false},
	}
	for _, tt := range tests {
		got, ok := versionOf(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("versionOf(%q) = %d,%v want %d,%v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMigrator_Load(t *testing.T) {
	dir := t.TempDir()
	writeMigrations(t, dir, map[string]string{
		"001_core.sql":     "CREATE TABLE patients (id BIGSERIAL PRIMARY KEY);",
		"002_sessions.sql": "CREATE TABLE session_logs (id BIGSERIAL PRIMARY KEY);",
	})

	migrations, err := NewMigrator(nil, dir).load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "001_core.sql" {
		t.Errorf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[0].SQL != "CREATE TABLE patients (id BIGSERIAL PRIMARY KEY);" {
		t.Errorf("unexpected SQL: %s", migrations[0].SQL)
	}
}

func TestMigrator_Load_SortsByVersion(t *testing.T) {
	dir := t.TempDir()
	// Written out of order on purpose.
	writeMigrations(t, dir, map[string]string{
		"010_assignments.sql": "SELECT 10;",
		"002_plans.sql":       "SELECT 2;",
		"001_core.sql":        "SELECT 1;",
		"005_media.sql":       "SELECT 5;",
	})

	migrations, err := NewMigrator(nil, dir).load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []int{1, 2, 5, 10}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(migrations))
	}
	for i, v := range want {
		if migrations[i].Version != v {
			t.Errorf("migration[%d]: expected version %d, got %d", i, v, migrations[i].Version)
		}
	}
}

func TestMigrator_Load_SkipsNonMigrations(t *testing.T) {
	dir := t.TempDir()
	writeMigrations(t, dir, map[string]string{
		"001_core.sql":  "SELECT 1;",
		"002_plans.sql": "SELECT 2;",
		"readme.sql":    "-- no version prefix",
		"abc_bad.sql":   "-- non-numeric prefix",
		"notes.txt":     "not sql",
	})

	migrations, err := NewMigrator(nil, dir).load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("unexpected versions: %d, %d", migrations[0].Version, migrations[1].Version)
	}
}

func TestMigrator_Load_EmptyDir(t *testing.T) {
	migrations, err := NewMigrator(nil, t.TempDir()).load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected no migrations, got %d", len(migrations))
	}
}

func TestMigrator_Load_MissingDir(t *testing.T) {
	if _, err := NewMigrator(nil, "/no/such/dir").load(); err == nil {
		t.Error("expected error for missing directory")
	}
}
