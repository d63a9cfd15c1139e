package dataset

import (
	"errors"
	"strings"
	"testing"
)

func TestReadRecordsCSV(t *testing.T) {
	csv := `PatientID,Codes,ResourceType
p1,M87.24,Condition
p1,9-694.t,Procedure
p2,M87.24,Condition
`
	records, err := ReadRecordsCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].PatientID != "p1" || records[0].Code != "M87.24" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
}

func TestReadRecordsCSV_SkipsBlankRows(t *testing.T) {
	csv := `PatientID,Codes,ResourceType
p1,M87.24,Condition
,I41.1,Condition
p2,,Condition
`
	records, err := ReadRecordsCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected blank patient and code rows to be skipped, got %d records", len(records))
	}
}

func TestReadRecordsCSV_MissingColumns(t *testing.T) {
	csv := `PatientID,SomethingElse
p1,M87.24
`
	_, err := ReadRecordsCSV(strings.NewReader(csv))
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	want := "missing columns: Codes, ResourceType"
	if missing.Error() != want {
		t.Errorf("error = %q, want %q", missing.Error(), want)
	}
}

func TestReadRecordsCSV_ExtraColumnsIgnored(t *testing.T) {
	csv := `Extra,PatientID,Codes,ResourceType
x,p1,M87.24,Condition
`
	records, err := ReadRecordsCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Code != "M87.24" {
		t.Errorf("unexpected records: %+v", records)
	}
}
