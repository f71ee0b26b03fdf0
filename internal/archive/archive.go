// Package archive bundles rendered certificates into a ZIP file with a
// manifest.csv describing every recipient, including those whose
// certificate failed to render. The archive on disk is the artifact of a
// generation job; later downloads and email sends both read from it.
package archive

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Member statuses recorded in the manifest.
const (
	StatusGenerated = "generated"
	StatusFailed    = "failed"
)

// File is one certificate to include, already rendered.
type File struct {
	Name string // member name inside the archive
	Path string // rendered PNG on disk
}

// ManifestEntry is one manifest.csv line. File is empty for failed rows.
type ManifestEntry struct {
	Row             int
	Name            string
	CertificationID string
	Email           string
	File            string
	Status          string
	Detail          string
}

// Create writes the archive at path and returns its size in bytes. The
// manifest goes in first so it is the first member a reader sees.
func Create(path string, files []File, manifest []ManifestEntry) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create archive dir: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if err := writeManifest(zw, manifest); err != nil {
		zw.Close()
		return 0, err
	}
	for _, f := range files {
		if err := writeFile(zw, f); err != nil {
			zw.Close()
			return 0, err
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalize archive: %w", err)
	}

	info, err := out.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat archive: %w", err)
	}
	return info.Size(), nil
}

func writeManifest(zw *zip.Writer, entries []ManifestEntry) error {
	w, err := zw.Create("manifest.csv")
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"row", "name", "certification_id", "email", "file", "status", "detail"}); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.Row),
			e.Name,
			e.CertificationID,
			e.Email,
			e.File,
			e.Status,
			e.Detail,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write manifest row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}
	return nil
}

func writeFile(zw *zip.Writer, f File) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer src.Close()

	w, err := zw.Create(f.Name)
	if err != nil {
		return fmt.Errorf("create member %s: %w", f.Name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write member %s: %w", f.Name, err)
	}
	return nil
}

// ReadManifest parses manifest.csv from the archive at path.
func ReadManifest(path string) ([]ManifestEntry, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "manifest.csv" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open manifest: %w", err)
		}
		defer rc.Close()
		return parseManifest(rc)
	}
	return nil, fmt.Errorf("archive %s has no manifest", filepath.Base(path))
}

func parseManifest(r io.Reader) ([]ManifestEntry, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("manifest is empty")
	}

	entries := make([]ManifestEntry, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 7 {
			continue
		}
		row, _ := strconv.Atoi(rec[0])
		entries = append(entries, ManifestEntry{
			Row:             row,
			Name:            rec[1],
			CertificationID: rec[2],
			Email:           rec[3],
			File:            rec[4],
			Status:          rec[5],
			Detail:          rec[6],
		})
	}
	return entries, nil
}

// EachFile calls fn for every non-manifest member of the archive at path.
// Returning an error from fn stops the walk.
func EachFile(path string, fn func(name string, data []byte) error) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == "manifest.csv" {
			continue
		}
		data, err := readMember(f)
		if err != nil {
			return err
		}
		if err := fn(f.Name, data); err != nil {
			return err
		}
	}
	return nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open member %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read member %s: %w", f.Name, err)
	}
	return data, nil
}
