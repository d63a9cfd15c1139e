package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/coco/coco/internal/domain/codes"
)

// Required record columns. Uploads missing any of them fail fast with the
// exact missing names.
var requiredColumns = []string{"PatientID", "Codes", "ResourceType"}

// ReadRecordsCSV parses an uploaded record table. The header must carry
// PatientID, Codes and ResourceType; extra columns are ignored. The
// ResourceType values are not trusted (classification happens at
// ingestion from the code shape), but the column is part of the loader
// contract and its absence is fatal.
func ReadRecordsCSV(r io.Reader) ([]codes.CodeRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read record header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, required := range requiredColumns {
		if _, ok := col[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	patientCol, codeCol := col["PatientID"], col["Codes"]
	var records []codes.CodeRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record row: %w", err)
		}
		if patientCol >= len(row) || codeCol >= len(row) {
			continue
		}
		patient := strings.TrimSpace(row[patientCol])
		code := strings.TrimSpace(row[codeCol])
		if patient == "" || code == "" {
			continue
		}
		records = append(records, codes.CodeRecord{PatientID: patient, Code: code})
	}
	return records, nil
}
