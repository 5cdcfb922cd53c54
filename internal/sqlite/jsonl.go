package sqlite

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// readJSONL reads a JSONL file and returns each non-empty, well-formed line
// as a json.RawMessage. Malformed lines are skipped and counted.
func readJSONL(path string) ([]json.RawMessage, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, skipped, nil
}

// writeJSONL atomically replaces path with one record per line, using the
// temp file, fsync, rename sequence.
func writeJSONL(path string, records []json.RawMessage) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ensureJSONLFiles creates empty JSONL files that do not exist yet.
func ensureJSONLFiles(dataDir string) error {
	for _, name := range []string{elementsJSONL, propertiesJSONL} {
		path := filepath.Join(dataDir, name)
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", name, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// persistJSONL rewrites both JSONL files from the rows q sees. Passing an
// open transaction writes its uncommitted state.
func persistJSONL(db querier, dataDir string) error {
	elements, err := dumpElements(db)
	if err != nil {
		return err
	}
	props, err := dumpProperties(db)
	if err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dataDir, elementsJSONL), elements); err != nil {
		return fmt.Errorf("persisting %s: %w", elementsJSONL, err)
	}
	if err := writeJSONL(filepath.Join(dataDir, propertiesJSONL), props); err != nil {
		return fmt.Errorf("persisting %s: %w", propertiesJSONL, err)
	}
	return nil
}

func dumpElements(db querier) ([]json.RawMessage, error) {
	rows, err := db.Query("SELECT element_id, class, seq, created_at FROM elements ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("reading elements for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var ej elementJSON
		if err := rows.Scan(&ej.ElementID, &ej.Class, &ej.Seq, &ej.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning element for JSONL: %w", err)
		}
		rec, err := json.Marshal(ej)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func dumpProperties(db querier) ([]json.RawMessage, error) {
	rows, err := db.Query(`SELECT p.element_id, p.name, p.ordinal, p.type, p.value
FROM element_properties p JOIN elements e ON e.element_id = p.element_id
ORDER BY e.seq, p.ordinal`)
	if err != nil {
		return nil, fmt.Errorf("reading element_properties for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var pj propertyJSON
		var value string
		if err := rows.Scan(&pj.ElementID, &pj.Name, &pj.Ordinal, &pj.Type, &value); err != nil {
			return nil, fmt.Errorf("scanning property for JSONL: %w", err)
		}
		pj.Value = json.RawMessage(value)
		rec, err := json.Marshal(pj)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
