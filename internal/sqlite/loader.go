package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/plycore/pkg/ply"
)

// loadStats counts what a JSONL load inserted and skipped.
type loadStats struct {
	elements   int
	properties int
	skipped    int
}

// loadAllJSONL reads both JSONL files from dataDir into the database in one
// transaction. Malformed lines, records that violate constraints, elements
// with an unparsable created_at, and property values that do not decode as
// their declared variant are skipped.
func loadAllJSONL(db *sql.DB, dataDir string, logger *slog.Logger) (loadStats, error) {
	var stats loadStats

	tx, err := db.Begin()
	if err != nil {
		return stats, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	elements, skipped, err := readJSONL(filepath.Join(dataDir, elementsJSONL))
	if err != nil {
		return stats, err
	}
	stats.skipped += skipped

	insElem, err := tx.Prepare("INSERT INTO elements (element_id, class, seq, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return stats, fmt.Errorf("preparing element insert: %w", err)
	}
	defer insElem.Close()

	for _, rec := range elements {
		var ej elementJSON
		if err := json.Unmarshal(rec, &ej); err != nil || ej.ElementID == "" {
			stats.skipped++
			continue
		}
		if _, err := time.Parse(time.RFC3339Nano, ej.CreatedAt); err != nil {
			logger.Warn("skipping element record", "element_id", ej.ElementID, "error", err)
			stats.skipped++
			continue
		}
		if _, err := insElem.Exec(ej.ElementID, ej.Class, ej.Seq, ej.CreatedAt); err != nil {
			logger.Warn("skipping element record", "element_id", ej.ElementID, "error", err)
			stats.skipped++
			continue
		}
		stats.elements++
	}

	props, skipped, err := readJSONL(filepath.Join(dataDir, propertiesJSONL))
	if err != nil {
		return stats, err
	}
	stats.skipped += skipped

	insProp, err := tx.Prepare("INSERT INTO element_properties (element_id, name, ordinal, type, value) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return stats, fmt.Errorf("preparing property insert: %w", err)
	}
	defer insProp.Close()

	for _, rec := range props {
		var pj propertyJSON
		if err := json.Unmarshal(rec, &pj); err != nil {
			stats.skipped++
			continue
		}
		if _, err := ply.DecodeValue(pj.Type, pj.Value); err != nil {
			logger.Warn("skipping property record", "element_id", pj.ElementID, "name", pj.Name, "error", err)
			stats.skipped++
			continue
		}
		if _, err := insProp.Exec(pj.ElementID, pj.Name, pj.Ordinal, pj.Type, string(pj.Value)); err != nil {
			logger.Warn("skipping property record", "element_id", pj.ElementID, "name", pj.Name, "error", err)
			stats.skipped++
			continue
		}
		stats.properties++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("committing load transaction: %w", err)
	}
	return stats, nil
}
