package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bluess57/gt7core/pkg/model"
)

// LapFile describes one stored lap file on disk.
type LapFile struct {
	Name string
	Path string
	Size int64
}

// HumanReadableSize renders the file size with a binary unit prefix.
func (f LapFile) HumanReadableSize(decimals int) string {
	size := float64(f.Size)
	unit := "B"
	for _, u := range []string{"B", "KB", "MB", "GB", "TB"} {
		unit = u
		if size < 1024.0 {
			break
		}
		if u != "TB" {
			size /= 1024.0
		}
	}
	return fmt.Sprintf("%.*f %s", decimals, size, unit)
}

func (f LapFile) String() string {
	return fmt.Sprintf("%s - %s", f.Name, f.HumanReadableSize(0))
}

// SaveLaps writes the laps as one JSON document into dir. The file name
// carries the save timestamp and the car of the first lap. The directory
// is created when missing.
func SaveLaps(dir string, laps []*model.Lap) (string, error) {
	if len(laps) == 0 {
		return "", fmt.Errorf("no laps to save")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating storage dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json",
		time.Now().Format("2006-01-02_15_04_05"),
		safeFilename(model.CarName(laps[0].CarID)))
	path := filepath.Join(dir, name)

	data, err := json.Marshal(laps)
	if err != nil {
		return "", fmt.Errorf("encoding laps: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// LoadLaps reads a lap file written by SaveLaps.
func LoadLaps(path string) ([]*model.Lap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var laps []*model.Lap
	if err := json.Unmarshal(data, &laps); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return laps, nil
}

// ListLapFiles walks root and returns all lap files, most recent path
// first.
func ListLapFiles(root string) ([]LapFile, error) {
	files := []LapFile{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, LapFile{
			Name: d.Name(),
			Path: path,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing lap files in %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path > files[j].Path })
	return files, nil
}

// safeFilename keeps letters, digits and a few separators; spaces become
// underscores.
func safeFilename(unsafe string) string {
	var b strings.Builder
	for _, r := range unsafe {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
