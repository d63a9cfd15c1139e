package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coco/coco/internal/domain/codes"
)

// Column layouts of the DWH catalog exports, per code system. LOINC exports
// carry no separate name columns for chapter and group; the identifiers
// (system and property strings) double as their own labels.
var csvColumns = map[codes.ResourceType]struct {
	code, display, chapter, chapterName, group, groupName string
}{
	codes.ICD:   {"ICD_CODE", "ICD_NAME", "KAPITEL_CODE", "KAPITEL_NURNAME", "GRUPPE_CODE", "GRUPPE_NURNAME"},
	codes.OPS:   {"OPS_CODE", "OPS_NAME", "KAPITEL_CODE", "KAPITEL_NURNAME", "GRUPPE_CODE", "GRUPPE_NURNAME"},
	codes.LOINC: {"LOINC_CODE", "LOINC_NAME", "LOINC_SYSTEM", "LOINC_SYSTEM", "LOINC_PROPERTY", "LOINC_PROPERTY"},
}

// ReadCSV parses a catalog export for the given code system.
func ReadCSV(r io.Reader, system codes.ResourceType) ([]*Entry, error) {
	layout, ok := csvColumns[system]
	if !ok {
		return nil, fmt.Errorf("no catalog layout for system %q", system)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{layout.code, layout.chapter, layout.group} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catalog is missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []*Entry
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}
		code := field(row, layout.code)
		if code == "" {
			continue
		}
		entries = append(entries, &Entry{
			Code:        code,
			Display:     field(row, layout.display),
			ChapterCode: field(row, layout.chapter),
			ChapterName: field(row, layout.chapterName),
			GroupCode:   field(row, layout.group),
			GroupName:   field(row, layout.groupName),
		})
	}
	return entries, nil
}

// ReadCSVFile parses a catalog export file for the given code system.
func ReadCSVFile(path string, system codes.ResourceType) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, system)
}
