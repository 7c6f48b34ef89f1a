package whisper

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Model identifiers follow the ggml naming scheme: a size ("small"), an
// English-only variant ("small.en"), or a quantized variant ("small-q5_0").
// Files on disk are named ggml-<identifier>.bin. Downloading models is out of
// scope here; identifiers only resolve against files already present.

var modelSizes = []string{"tiny", "base", "small", "medium", "large"}

var quantizedRe = regexp.MustCompile(`^(tiny|base|small|medium|large)(\.en)?-(q\d+_\d+)$`)

// ModelFileName maps a model identifier to its on-disk file name. Full file
// names pass through unchanged.
func ModelFileName(id string) string {
	if strings.HasPrefix(id, "ggml-") && strings.HasSuffix(id, ".bin") {
		return id
	}
	return "ggml-" + id + ".bin"
}

// ValidModelID reports whether id names a known model form.
func ValidModelID(id string) bool {
	if strings.HasPrefix(id, "ggml-") && strings.HasSuffix(id, ".bin") {
		return true
	}
	base := strings.TrimSuffix(id, ".en")
	for _, s := range modelSizes {
		if base == s {
			return true
		}
	}
	return quantizedRe.MatchString(id)
}

// ResolveModel returns the path of the model file for id inside dir, or an
// error when the file is not present.
func ResolveModel(dir, id string) (string, error) {
	path := filepath.Join(dir, ModelFileName(id))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("model %q not found at %s (available: %s)",
			id, path, strings.Join(availableOrNone(dir), ", "))
	}
	return path, nil
}

// AvailableModels lists the identifiers of model files present in dir,
// sorted for stable display.
func AvailableModels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "ggml-") || !strings.HasSuffix(name, ".bin") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "ggml-"), ".bin"))
	}
	sort.Strings(ids)
	return ids, nil
}

func availableOrNone(dir string) []string {
	ids, err := AvailableModels(dir)
	if err != nil || len(ids) == 0 {
		return []string{"none"}
	}
	return ids
}
