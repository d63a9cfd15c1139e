// Package codes defines the clinical code systems the engine understands and
// the shape-based classification that assigns a code to one of them.
// Classification happens once, at ingestion; everything downstream carries
// the resolved ResourceType instead of re-inferring it from the code string.
package codes

// ResourceType identifies the code system a clinical code belongs to.
type ResourceType string

const (
	ICD     ResourceType = "ICD"
	OPS     ResourceType = "OPS"
	LOINC   ResourceType = "LOINC"
	Unknown ResourceType = "Unknown"
)

// Systems lists the known code systems in stable order.
var Systems = []ResourceType{ICD, LOINC, OPS}

// Root is the synthetic level-0 ancestor of every code system.
const Root = "FHIR"

// CodeRecord is one (patient, code) observation from the uploaded dataset.
// A patient may repeat a code; duplicates collapse during incidence building.
type CodeRecord struct {
	PatientID string       `json:"patient_id"`
	Code      string       `json:"code"`
	Resource  ResourceType `json:"resource_type"`
}

// Classify infers the code system from the code's shape:
// a leading uppercase letter means ICD, a hyphen at the second-to-last
// position means LOINC, a hyphen at the second position means OPS.
func Classify(code string) ResourceType {
	runes := []rune(code)
	if len(runes) == 0 {
		return Unknown
	}
	if runes[0] >= 'A' && runes[0] <= 'Z' {
		return ICD
	}
	if len(runes) > 1 && runes[len(runes)-2] == '-' {
		return LOINC
	}
	if len(runes) > 1 && runes[1] == '-' {
		return OPS
	}
	return Unknown
}

// IsICD reports whether the code's shape matches the ICD rule.
func IsICD(code string) bool { return Classify(code) == ICD }

// IsLOINC reports whether the code's shape matches the LOINC rule.
func IsLOINC(code string) bool { return Classify(code) == LOINC }

// IsOPS reports whether the code's shape matches the OPS rule.
func IsOPS(code string) bool { return Classify(code) == OPS }

// Matches reports whether the code's shape matches the given system.
func Matches(code string, rt ResourceType) bool { return Classify(code) == rt }
