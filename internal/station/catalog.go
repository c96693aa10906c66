package station

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Catalog columns, as published with the open-data station list.
const (
	columnID        = "id_nom"
	columnName      = "nom"
	columnLongitude = "longitude"
	columnLatitude  = "latitude"
)

// LoadCatalog reads the semicolon separated station list at path.
func LoadCatalog(path string) ([]Station, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stations file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stations, err := ParseCatalog(file)
	if err != nil {
		return nil, fmt.Errorf("parse stations file %s: %w", path, err)
	}
	return stations, nil
}

// ParseCatalog decodes a catalog. Rows with an empty id are skipped; duplicate
// ids keep the first occurrence.
func ParseCatalog(r io.Reader) ([]Station, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range []string{columnID, columnName, columnLongitude, columnLatitude} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var stations []Station
	seen := make(map[string]struct{})
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		id := field(columnID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		lon, err := parseCoordinate(field(columnLongitude))
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}
		lat, err := parseCoordinate(field(columnLatitude))
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		seen[id] = struct{}{}
		stations = append(stations, Station{
			ID:        id,
			Name:      field(columnName),
			Longitude: lon,
			Latitude:  lat,
		})
	}
	return stations, nil
}

// parseCoordinate accepts both "1.45" and the French "1,45".
func parseCoordinate(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
}
