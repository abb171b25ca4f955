package classifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// LabelMap maps raw classifier labels to localized display names. Labels
// without an entry pass through unchanged.
type LabelMap map[string]string

// Display returns the localized display name for a raw label, or the raw
// label itself when no mapping exists.
func (m LabelMap) Display(label string) string {
	if display, ok := m[label]; ok {
		return display
	}
	return label
}

// LoadLabelMap reads a JSON label mapping from path. A missing file is not an
// error: image replies then degrade to the classifier's raw labels.
func LoadLabelMap(path string) (LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Label map not found, using raw classifier labels", "path", path)
			return LabelMap{}, nil
		}
		return nil, fmt.Errorf("failed to read label map: %w", err)
	}

	var m LabelMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse label map: %w", err)
	}

	slog.Info("Label map loaded", "path", path, "entries", len(m))
	return m, nil
}
