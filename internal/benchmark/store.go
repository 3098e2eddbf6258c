package benchmark

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// Exists reports whether path already has at least one record, used to
// implement spec.md §6's reuse rule: the grid runner must skip generation
// when a record file exists unless force is set.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// Append finalizes rec's hashes and appends it as one compact-JSON line to
// path, creating the file if needed. It never truncates an existing file
// — re-running a grid without --force is expected to call Exists first and
// skip the write entirely, not overwrite the log.
func Append(path string, rec Record) error {
	final, err := Finalize(rec)
	if err != nil {
		return err
	}
	line, err := json.Marshal(final)
	if err != nil {
		return fmt.Errorf("benchmark: marshal record: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("benchmark: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("benchmark: write %s: %w", path, err)
	}
	return nil
}

// ReadAll loads every record from an NDJSON benchmark log.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("benchmark: open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(nil, 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("benchmark: parse %s: %w", path, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("benchmark: scan %s: %w", path, err)
	}
	return records, nil
}
