// Package store covers every persistence surface of the pipeline: JSONL
// files between stages, the CSV export, and the Postgres table behind the
// API.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadJSONL reads one record per line, skipping blank and malformed lines.
// Scraped files contain the occasional truncated line; a single bad record
// must not sink the whole batch.
func ReadJSONL[T any](path string) ([]T, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var (
		records []T
		bad     int
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			bad++
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, bad, fmt.Errorf("read %s: %w", path, err)
	}
	return records, bad, nil
}

// ReadJSONLDir reads every *.jsonl file in the directory, in name order.
func ReadJSONLDir[T any](dir string) ([]T, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var (
		all []T
		bad int
	)
	for _, name := range names {
		records, b, err := ReadJSONL[T](filepath.Join(dir, name))
		if err != nil {
			return nil, bad, err
		}
		all = append(all, records...)
		bad += b
	}
	return all, bad, nil
}

// WriteJSONL writes one record per line, replacing any existing file. The
// parent directory is created if needed.
func WriteJSONL[T any](path string, records []T) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return file.Close()
}
