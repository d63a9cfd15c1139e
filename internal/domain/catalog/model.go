// Package catalog provides the code-hierarchy reference tables (one per
// code system) that the hierarchy builder consumes. Each entry maps a leaf
// code to its chapter and group identifiers and carries display names for
// all three. Catalogs are independently optional: a missing catalog only
// reduces hierarchy depth for its code system.
package catalog

import "github.com/coco/coco/internal/domain/codes"

// Entry is one catalog row: a leaf code with its ancestors and labels.
type Entry struct {
	Code        string `db:"code" json:"code"`
	Display     string `db:"display" json:"display"`
	ChapterCode string `db:"chapter_code" json:"chapter_code"`
	ChapterName string `db:"chapter_name" json:"chapter_name,omitempty"`
	GroupCode   string `db:"group_code" json:"group_code"`
	GroupName   string `db:"group_name" json:"group_name,omitempty"`
}

// Availability reports which code systems have a loadable catalog. It is
// part of the dataset-upload response so clients can tell the user which
// hierarchies are degraded.
type Availability map[codes.ResourceType]bool

// tableFor maps a code system to its reference table name.
func tableFor(system codes.ResourceType) string {
	switch system {
	case codes.ICD:
		return "catalog_icd"
	case codes.OPS:
		return "catalog_ops"
	case codes.LOINC:
		return "catalog_loinc"
	}
	return ""
}
