package model

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// car id -> display name, loaded once from an external csv database
var (
	carNamesMu sync.Mutex
	carNames   map[int]string
)

// LoadCarNames reads the car name database (csv rows of "id,name").
// Missing files are not an error; lookups fall back to a generic name.
func LoadCarNames(path string) error {
	carNamesMu.Lock()
	defer carNamesMu.Unlock()
	carNames = map[int]string{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening car database: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("reading car database: %w", err)
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		id, convErr := strconv.Atoi(row[0])
		if convErr != nil {
			continue
		}
		carNames[id] = row[1]
	}
	return nil
}

// CarName resolves a car id to its display name.
func CarName(carID int) string {
	carNamesMu.Lock()
	defer carNamesMu.Unlock()
	if name, ok := carNames[carID]; ok {
		return name
	}
	return fmt.Sprintf("CAR-ID-%d", carID)
}
