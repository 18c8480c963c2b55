package degree

import (
	"bytes"
	"testing"
)

func permuteIndices(n int) [][]int {
	var out [][]int
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = i
	}
	var gen func(int)
	gen = func(i int) {
		if i == n {
			out = append(out, append([]int(nil), idx...))
			return
		}
		for j := i; j < n; j++ {
			idx[i], idx[j] = idx[j], idx[i]
			gen(i + 1)
			idx[i], idx[j] = idx[j], idx[i]
		}
	}
	gen(0)
	return out
}

// Field assignment order must not leak into the encoding.
func TestEncode_IndependentOfAssignmentOrder(t *testing.T) {
	setters := []func(*Degree){
		func(d *Degree) { d.ID = "degree3"; d.DocType = DocType },
		func(d *Degree) { d.University = "Massachusetts Institute of Technology"; d.College = "School of Engineering" },
		func(d *Degree) { d.Program = "Electrical Engineering and Computer Science"; d.Honors = "Summa Cum Laude" },
		func(d *Degree) {
			d.Specialization = "Artificial Intelligence"
			d.DegreeName = "Bachelor's of Electrical Engineering and Computer Science"
		},
		func(d *Degree) { d.DegreeLevel = "Bachelor's"; d.Owner = "Alice Johnson"; d.Year = 2018; d.Accreditation = true },
	}

	want, err := Encode(Seed()[2])
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	wantCID, err := CID(Seed()[2])
	if err != nil {
		t.Fatalf("CID: %v", err)
	}

	for _, perm := range permuteIndices(len(setters)) {
		var d Degree
		for _, i := range perm {
			setters[i](&d)
		}
		got, err := Encode(d)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("perm %v produced different bytes:\n got %s\nwant %s", perm, got, want)
		}
		gotCID, err := CID(d)
		if err != nil {
			t.Fatalf("CID: %v", err)
		}
		if gotCID != wantCID {
			t.Fatalf("perm %v produced different cid", perm)
		}
	}
}

// A record decoded from any key order re-encodes to the same canonical bytes.
func TestEncode_IndependentOfInputKeyOrder(t *testing.T) {
	parts := []string{
		`"Accreditation":true`, `"College":"C"`, `"ID":"k"`, `"Owner":"O"`, `"Year":2001`, `"docType":"degree"`,
	}
	var want []byte
	for _, perm := range permuteIndices(len(parts)) {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, p := range perm {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(parts[p])
		}
		buf.WriteByte('}')

		d, err := Decode(buf.Bytes())
		if err != nil {
			t.Fatalf("Decode(%s): %v", buf.String(), err)
		}
		got, err := Encode(d)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if want == nil {
			want = got
			continue
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("input order %v changed encoding:\n got %s\nwant %s", perm, got, want)
		}
	}
}

func TestCID_DistinguishesAccreditation(t *testing.T) {
	d := Seed()[0]
	a, err := CID(d)
	if err != nil {
		t.Fatalf("CID: %v", err)
	}
	d.Accreditation = false
	b, err := CID(d)
	if err != nil {
		t.Fatalf("CID: %v", err)
	}
	if a == b {
		t.Fatalf("expected accreditation change to change the cid")
	}
}
