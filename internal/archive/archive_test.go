package archive

import (
	"archive/zip"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writePNGs drops fake rendered files into dir and returns archive members.
func writePNGs(t *testing.T, dir string, names map[string]string) []File {
	t.Helper()
	var files []File
	for name, content := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		files = append(files, File{Name: name, Path: p})
	}
	return files
}

// ============================================================================
// Create
// ============================================================================

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	files := writePNGs(t, dir, map[string]string{
		"John_Doe_CERT-001.png": "png-bytes-john",
		"Jane_Roe_CERT-002.png": "png-bytes-jane",
	})
	manifest := []ManifestEntry{
		{Row: 2, Name: "John Doe", CertificationID: "CERT-001", Email: "john@example.com", File: "John_Doe_CERT-001.png", Status: StatusGenerated},
		{Row: 3, Name: "Jane Roe", CertificationID: "CERT-002", File: "Jane_Roe_CERT-002.png", Status: StatusGenerated},
		{Row: 4, Name: "Bad Row", CertificationID: "CERT-003", Status: StatusFailed, Detail: "render failed"},
	}

	path := filepath.Join(dir, "out", "certificates.zip")
	size, err := Create(path, files, manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size <= 0 {
		t.Errorf("expected positive archive size, got %d", size)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if info.Size() != size {
		t.Errorf("expected reported size %d to match disk size %d", size, info.Size())
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != 3 {
		t.Fatalf("expected 3 members, got %d", len(zr.File))
	}
	if zr.File[0].Name != "manifest.csv" {
		t.Errorf("expected manifest.csv first, got %q", zr.File[0].Name)
	}
}

func TestCreate_ManifestContents(t *testing.T) {
	dir := t.TempDir()
	manifest := []ManifestEntry{
		{Row: 2, Name: "John, Jr.", CertificationID: "CERT-001", Email: "john@example.com", File: "John_Jr._CERT-001.png", Status: StatusGenerated},
		{Row: 3, Name: "No Render", CertificationID: "CERT-002", Status: StatusFailed, Detail: "boom"},
	}

	path := filepath.Join(dir, "certificates.zip")
	if _, err := Create(path, nil, manifest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer rc.Close()

	records, err := csv.NewReader(rc).ReadAll()
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if got := strings.Join(records[0], ","); got != "row,name,certification_id,email,file,status,detail" {
		t.Errorf("unexpected header: %q", got)
	}
	if records[1][1] != "John, Jr." {
		t.Errorf("expected comma in name preserved, got %q", records[1][1])
	}
	if records[2][5] != StatusFailed || records[2][6] != "boom" {
		t.Errorf("expected failed row with detail, got %v", records[2])
	}
}

func TestCreate_MissingSourceFile(t *testing.T) {
	dir := t.TempDir()
	files := []File{{Name: "gone.png", Path: filepath.Join(dir, "gone.png")}}

	if _, err := Create(filepath.Join(dir, "certificates.zip"), files, nil); err == nil {
		t.Error("expected error for missing source file, got nil")
	}
}

// ============================================================================
// ReadManifest
// ============================================================================

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := []ManifestEntry{
		{Row: 2, Name: "John Doe", CertificationID: "CERT-001", Email: "john@example.com", File: "John_Doe_CERT-001.png", Status: StatusGenerated},
		{Row: 3, Name: "Jane Roe", CertificationID: "CERT-002", Status: StatusFailed, Detail: "render failed"},
	}

	path := filepath.Join(dir, "certificates.zip")
	if _, err := Create(path, nil, manifest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0] != manifest[0] {
		t.Errorf("expected %+v, got %+v", manifest[0], got[0])
	}
	if got[1].Status != StatusFailed || got[1].Detail != "render failed" {
		t.Errorf("expected failed entry preserved, got %+v", got[1])
	}
}

func TestReadManifest_MissingArchive(t *testing.T) {
	if _, err := ReadManifest(filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Error("expected error for missing archive, got nil")
	}
}

// ============================================================================
// EachFile
// ============================================================================

func TestEachFile(t *testing.T) {
	dir := t.TempDir()
	files := writePNGs(t, dir, map[string]string{
		"a.png": "alpha",
		"b.png": "beta",
	})
	path := filepath.Join(dir, "certificates.zip")
	if _, err := Create(path, files, []ManifestEntry{{Row: 2, Name: "x", Status: StatusGenerated}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]string{}
	err := EachFile(path, func(name string, data []byte) error {
		seen[name] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 members, got %d", len(seen))
	}
	if seen["a.png"] != "alpha" || seen["b.png"] != "beta" {
		t.Errorf("unexpected member contents: %v", seen)
	}
	if _, ok := seen["manifest.csv"]; ok {
		t.Error("expected manifest.csv to be skipped")
	}
}

func TestEachFile_StopsOnError(t *testing.T) {
	dir := t.TempDir()
	files := writePNGs(t, dir, map[string]string{
		"a.png": "alpha",
		"b.png": "beta",
	})
	path := filepath.Join(dir, "certificates.zip")
	if _, err := Create(path, files, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := 0
	err := EachFile(path, func(name string, data []byte) error {
		calls++
		return os.ErrClosed
	})
	if err == nil {
		t.Fatal("expected error from callback, got nil")
	}
	if calls != 1 {
		t.Errorf("expected walk to stop after 1 call, got %d", calls)
	}
}

func TestEachFile_MissingArchive(t *testing.T) {
	err := EachFile(filepath.Join(t.TempDir(), "missing.zip"), func(string, []byte) error {
		t.Fatal("callback should not run")
		return nil
	})
	if err == nil {
		t.Error("expected error for missing archive, got nil")
	}
}
