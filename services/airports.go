package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"flight-delay-api/models"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	airportIDColumn   = "AirportID"
	airportNameColumn = "AirportName"
)

var ErrInvalidAirports = errors.New("invalid airport dataset")

// AirportTable is the read-only airport reference table. It is built once and
// never mutated, so any number of goroutines may read it.
type AirportTable struct {
	sorted []models.Airport
	byID   map[int]int
}

// NewAirportTable normalizes names, drops duplicate ids (first one wins) and
// orders the airports by name.
func NewAirportTable(airports []models.Airport) (*AirportTable, error) {
	if len(airports) == 0 {
		return nil, fmt.Errorf("%w: no airports", ErrInvalidAirports)
	}

	seen := make(map[int]struct{}, len(airports))
	sorted := make([]models.Airport, 0, len(airports))
	for _, a := range airports {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		name := strings.TrimSpace(norm.NFC.String(a.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: airport %d has an empty name", ErrInvalidAirports, a.ID)
		}
		seen[a.ID] = struct{}{}
		sorted = append(sorted, models.Airport{ID: a.ID, Name: name})
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	byID := make(map[int]int, len(sorted))
	for i, a := range sorted {
		byID[a.ID] = i
	}

	return &AirportTable{sorted: sorted, byID: byID}, nil
}

// LoadAirportsCSV reads a CSV with AirportID and AirportName header columns.
func LoadAirportsCSV(path string) (*AirportTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airports file: %w", err)
	}
	defer f.Close()

	airports, err := readAirports(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewAirportTable(airports)
}

func readAirports(r io.Reader) ([]models.Airport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidAirports)
	}
	if err != nil {
		return nil, err
	}

	idCol, nameCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case airportIDColumn:
			idCol = i
		case airportNameColumn:
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("%w: header must contain %s and %s",
			ErrInvalidAirports, airportIDColumn, airportNameColumn)
	}

	var airports []models.Airport
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if idCol >= len(record) || nameCol >= len(record) {
			return nil, fmt.Errorf("%w: line %d: too few columns", ErrInvalidAirports, line)
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[idCol]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid %s %q",
				ErrInvalidAirports, line, airportIDColumn, record[idCol])
		}
		airports = append(airports, models.Airport{ID: id, Name: record[nameCol]})
	}
	return airports, nil
}

// LoadAirportsFromDB reads the airports relation once.
func LoadAirportsFromDB(ctx context.Context, db *gorm.DB) (*AirportTable, error) {
	var airports []models.Airport
	if err := db.WithContext(ctx).Order("airport_id").Find(&airports).Error; err != nil {
		return nil, fmt.Errorf("query airports: %w", err)
	}
	return NewAirportTable(airports)
}

// List returns a copy of the airports ordered by name.
func (t *AirportTable) List() []models.Airport {
	out := make([]models.Airport, len(t.sorted))
	copy(out, t.sorted)
	return out
}

func (t *AirportTable) Exists(id int) bool {
	_, ok := t.byID[id]
	return ok
}

func (t *AirportTable) Lookup(id int) (models.Airport, bool) {
	i, ok := t.byID[id]
	if !ok {
		return models.Airport{}, false
	}
	return t.sorted[i], true
}

func (t *AirportTable) Len() int {
	return len(t.sorted)
}
