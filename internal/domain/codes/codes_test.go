package codes

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		code string
		want ResourceType
	}{
		{"M87.24", ICD},
		{"I41.1", ICD},
		{"U35.1", ICD},
		{"A00", ICD},
		{"9-694.t", OPS},
		{"5-452.01", OPS},
		{"2160-0", LOINC},
		{"718-7", LOINC},
		{"", Unknown},
		{"x", Unknown},
		{"1234", Unknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.code); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestClassify_HyphenPrecedence(t *testing.T) {
	// A leading uppercase letter wins over any hyphen placement.
	if got := Classify("A-1"); got != ICD {
		t.Errorf("Classify(A-1) = %v, want ICD", got)
	}
	// Hyphen at second-to-last position wins over hyphen at index 1.
	if got := Classify("1-2-3"); got != LOINC {
		t.Errorf("Classify(1-2-3) = %v, want LOINC", got)
	}
}

func TestMatches(t *testing.T) {
	if !Matches("9-694.t", OPS) {
		t.Error("expected 9-694.t to match OPS")
	}
	if Matches("9-694.t", ICD) {
		t.Error("expected 9-694.t not to match ICD")
	}
}

func TestSystemsOrder(t *testing.T) {
	want := []ResourceType{ICD, LOINC, OPS}
	if len(Systems) != len(want) {
		t.Fatalf("expected %d systems, got %d", len(want), len(Systems))
	}
	for i, s := range want {
		if Systems[i] != s {
			t.Errorf("Systems[%d] = %v, want %v", i, Systems[i], s)
		}
	}
}
