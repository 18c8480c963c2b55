package degree

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const degree1Canonical = `{"Accreditation":true,"College":"College of Engineering and Computer Science","DegreeLevel":"Bachelor's","DegreeName":"Bachelor's of Computer Science","Honors":"","ID":"degree1","Owner":"Ethan Dean","Program":"Computer Science","Specialization":"","University":"University of Central Florida","Year":2026,"docType":"degree"}`

func TestEncode_GoldenSeedRecord(t *testing.T) {
	got, err := Encode(Seed()[0])
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(got) != degree1Canonical {
		t.Fatalf("unexpected encoding\n got: %s\nwant: %s", got, degree1Canonical)
	}
}

func TestEncode_OmitsEmptyDocType(t *testing.T) {
	d := Seed()[0]
	d.DocType = ""
	got, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if bytes.Contains(got, []byte("docType")) {
		t.Fatalf("docType should be omitted when empty: %s", got)
	}
	if !bytes.HasSuffix(got, []byte(`"Year":2026}`)) {
		t.Fatalf("expected Year to be the last key: %s", got)
	}
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	d := Degree{ID: "x", College: "Arts & Sciences <Main>", University: "University of Organization 1 (Test Data – Not Valid)"}
	got, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Contains(got, []byte(`"Arts & Sciences <Main>"`)) {
		t.Fatalf("expected raw &, <, >: %s", got)
	}
	if !bytes.Contains(got, []byte("Test Data – Not Valid")) {
		t.Fatalf("expected raw UTF-8: %s", got)
	}
}

func TestEncode_RawLineSeparators(t *testing.T) {
	d := Degree{ID: "a\u2028b", Owner: "c\u2029d", Honors: `e\u2028f`}
	got, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Contains(got, []byte("\"ID\":\"a\u2028b\"")) || !bytes.Contains(got, []byte("\"Owner\":\"c\u2029d\"")) {
		t.Fatalf("expected raw U+2028/U+2029: %s", got)
	}
	if !bytes.Contains(got, []byte(`"Honors":"e\\u2028f"`)) {
		t.Fatalf("escaped backslash must be kept: %s", got)
	}
	back, err := Canonicalize(got)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	dd, err := Decode(back)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dd != d {
		t.Fatalf("round trip mismatch: %+v", dd)
	}
}

func TestEncode_RejectsInvalidUTF8(t *testing.T) {
	_, err := Encode(Degree{ID: "x", Owner: string([]byte{0xff, 0xfe})})
	if !IsKind(err, KindEncode) {
		t.Fatalf("expected KindEncode, got %v", err)
	}
	if RuleID(err) != "DEG-ENC-001" {
		t.Fatalf("expected DEG-ENC-001, got %q", RuleID(err))
	}
}

func TestRoundTrip_Seed(t *testing.T) {
	for _, want := range Seed() {
		b, err := Encode(want)
		if err != nil {
			t.Fatalf("Encode(%s): %v", want.ID, err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("Decode(%s): %v", want.ID, err)
		}
		if got != want {
			t.Fatalf("round trip mismatch for %s:\n got %+v\nwant %+v", want.ID, got, want)
		}
		if _, err := Canonicalize(b); err != nil {
			t.Fatalf("Canonicalize(%s): %v", want.ID, err)
		}
	}
}

func TestRoundTrip_EdgeValues(t *testing.T) {
	cases := []Degree{
		{},
		{ID: "quote\"and\\slash", Year: -1},
		{ID: "unicode", Owner: "Zoë Ångström", Honors: "🎓", Year: 9999},
		{ID: "ctl", Program: "line\nbreak\ttab"},
	}
	for _, want := range cases {
		b, err := Encode(want)
		if err != nil {
			t.Fatalf("Encode(%q): %v", want.ID, err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("Decode(%q): %v", want.ID, err)
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
		}
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		ruleID string
	}{
		{"empty", "", "DEG-DEC-001"},
		{"whitespace", "  \n", "DEG-DEC-001"},
		{"null", "null", "DEG-DEC-005"},
		{"array", "[]", "DEG-DEC-005"},
		{"unknown field", `{"ID":"x","Color":"blue"}`, "DEG-DEC-006"},
		{"lowercase keys", `{"id":"x","university":"University of Florida","year":2020}`, "DEG-DEC-006"},
		{"case-folded alias", `{"University":"University of Florida","university":"University of Central Florida"}`, "DEG-DEC-006"},
		{"duplicate field", `{"ID":"x","ID":"y"}`, "DEG-DEC-007"},
		{"fractional year", `{"ID":"x","Year":2026.5}`, "DEG-DEC-003"},
		{"string year", `{"ID":"x","Year":"2026"}`, "DEG-DEC-003"},
		{"trailing data", `{"ID":"x"}{"ID":"y"}`, "DEG-DEC-004"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.in))
			if err == nil {
				t.Fatalf("expected error")
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *degree.Error, got %T", err)
			}
			if e.Kind != KindDecode {
				t.Fatalf("expected KindDecode, got %s", e.Kind)
			}
			if e.RuleID != tc.ruleID {
				t.Fatalf("expected %s, got %s (%v)", tc.ruleID, e.RuleID, err)
			}
		})
	}
}

func TestCanonicalize_RejectsNonCanonical(t *testing.T) {
	cases := map[string]string{
		"pretty printed":   strings.Replace(degree1Canonical, `"ID":`, `"ID": `, 1),
		"trailing newline": degree1Canonical + "\n",
		"keys reordered":   `{"ID":"degree1","Accreditation":true}`,
		"lowercase key":    strings.Replace(degree1Canonical, `"ID":`, `"id":`, 1),
		"escaped html":     `{"Accreditation":false,"College":"A \u0026 B","DegreeLevel":"","DegreeName":"","Honors":"","ID":"x","Owner":"","Program":"","Specialization":"","University":"","Year":0}`,
		"missing field":    `{"Accreditation":false,"ID":"x"}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Canonicalize([]byte(in))
			if err == nil {
				t.Fatalf("expected non-canonical input to be rejected")
			}
		})
	}
}

func TestCanonicalize_ReturnsCopy(t *testing.T) {
	in := []byte(degree1Canonical)
	out, err := Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	out[0] = 'X'
	if in[0] != '{' {
		t.Fatalf("Canonicalize must not alias its input")
	}
}

func TestSeed_FreshValues(t *testing.T) {
	a := Seed()
	a[0].Accreditation = false
	if !Seed()[0].Accreditation {
		t.Fatalf("Seed must return fresh values")
	}
	seen := map[string]bool{}
	for _, d := range Seed() {
		if seen[d.ID] {
			t.Fatalf("duplicate seed id %s", d.ID)
		}
		seen[d.ID] = true
		if d.DocType != DocType || !d.Accreditation {
			t.Fatalf("seed %s must be docType-tagged and accredited", d.ID)
		}
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 seed records, got %d", len(seen))
	}
}
