package degree

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/ipfs/go-cid"

	"xdao.co/degreeledger/cidutil"
)

// DocType tags records written by the bulk seed so they can be told apart from
// other entity types sharing the same world state.
const DocType = "degree"

// Degree is an academic degree credential.
//
// Accreditation is the only field the ledger changes after creation.
type Degree struct {
	DocType string `json:"docType,omitempty"`

	ID string `json:"ID"`

	// University is the awarding institution, taken from the caller's
	// organization at creation time.
	University string `json:"University"`

	// College is the school or division within the university.
	College string `json:"College"`

	// Program is the field of study or major.
	Program string `json:"Program"`

	Honors         string `json:"Honors"`
	Specialization string `json:"Specialization"`

	// DegreeName is the formal name, e.g. "Bachelor's of Computer Science".
	DegreeName string `json:"DegreeName"`

	// DegreeLevel is Bachelor's, Master's, PhD, etc.
	DegreeLevel string `json:"DegreeLevel"`

	// Owner is the recipient.
	Owner string `json:"Owner"`

	// Year the degree was conferred.
	Year int `json:"Year"`

	// Accreditation reports whether the university backs the degree.
	Accreditation bool `json:"Accreditation"`
}

// fields returns the record as name -> value. Key order is applied by Encode.
func (d Degree) fields() map[string]interface{} {
	m := map[string]interface{}{
		"Accreditation":  d.Accreditation,
		"College":        d.College,
		"DegreeLevel":    d.DegreeLevel,
		"DegreeName":     d.DegreeName,
		"Honors":         d.Honors,
		"ID":             d.ID,
		"Owner":          d.Owner,
		"Program":        d.Program,
		"Specialization": d.Specialization,
		"University":     d.University,
		"Year":           d.Year,
	}
	if d.DocType != "" {
		m["docType"] = d.DocType
	}
	return m
}

func (d Degree) strings() []string {
	return []string{
		d.DocType, d.ID, d.University, d.College, d.Program, d.Honors,
		d.Specialization, d.DegreeName, d.DegreeLevel, d.Owner,
	}
}

// Encode returns the canonical encoding of d.
//
// Output is compact JSON with keys sorted by byte value ("docType" sorts after the
// capitalized names), no trailing newline, and no escaping beyond what
// JSON.stringify does: HTML characters and U+2028/U+2029 are written raw.
func Encode(d Degree) ([]byte, error) {
	for _, s := range d.strings() {
		if !utf8.ValidString(s) {
			return nil, newError(KindEncode, "DEG-ENC-001", "record fields must be valid UTF-8")
		}
	}

	fields := d.fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, name); err != nil {
			return nil, wrapError(KindEncode, "DEG-ENC-002", "encode field name", err)
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, fields[name]); err != nil {
			return nil, wrapError(KindEncode, "DEG-ENC-002", "encode field "+name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v interface{}) error {
	start := buf.Len()
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder.Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	if seg := buf.Bytes()[start:]; bytes.Contains(seg, []byte(`\u202`)) {
		out := rawLineSeparators(seg)
		buf.Truncate(start)
		buf.Write(out)
	}
	return nil
}

// rawLineSeparators turns the \u2028 and \u2029 escapes written by
// encoding/json back into raw UTF-8, matching JSON.stringify.
func rawLineSeparators(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if rest := b[i:]; bytes.HasPrefix(rest, []byte(`\u2028`)) || bytes.HasPrefix(rest, []byte(`\u2029`)) {
			if rest[5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// fieldNames are the exact object keys a stored record may carry.
var fieldNames = map[string]bool{
	"Accreditation": true, "College": true, "DegreeLevel": true, "DegreeName": true,
	"Honors": true, "ID": true, "Owner": true, "Program": true,
	"Specialization": true, "University": true, "Year": true, "docType": true,
}

// checkKeys rejects top-level keys that are not exact field names or that
// appear more than once. encoding/json alone folds case and keeps the last
// duplicate.
func checkKeys(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil {
		return wrapError(KindDecode, "DEG-DEC-003", "malformed record", err)
	}
	seen := make(map[string]bool, len(fieldNames))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return wrapError(KindDecode, "DEG-DEC-003", "malformed record", err)
		}
		name, ok := tok.(string)
		if !ok {
			return newError(KindDecode, "DEG-DEC-003", "malformed record: object key expected")
		}
		if !fieldNames[name] {
			return newError(KindDecode, "DEG-DEC-006", "unknown field "+strconv.Quote(name))
		}
		if seen[name] {
			return newError(KindDecode, "DEG-DEC-007", "duplicate field "+strconv.Quote(name))
		}
		seen[name] = true
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return wrapError(KindDecode, "DEG-DEC-003", "malformed record", err)
		}
	}
	return nil
}

// Decode parses a stored record.
//
// Decoding is strict: empty input, unknown, case-folded or repeated fields,
// trailing data and non-integer years are rejected. Decode does not require canonical input;
// use Canonicalize for that.
func Decode(b []byte) (Degree, error) {
	var d Degree
	if len(bytes.TrimSpace(b)) == 0 {
		return d, newError(KindDecode, "DEG-DEC-001", "empty record")
	}
	if !utf8.Valid(b) {
		return d, newError(KindDecode, "DEG-DEC-002", "record must be valid UTF-8")
	}
	if bytes.TrimSpace(b)[0] != '{' {
		return d, newError(KindDecode, "DEG-DEC-005", "record must be a JSON object")
	}
	if err := checkKeys(b); err != nil {
		return Degree{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Degree{}, wrapError(KindDecode, "DEG-DEC-003", "malformed record", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Degree{}, newError(KindDecode, "DEG-DEC-004", "trailing data after record")
	}
	return d, nil
}

// Canonicalize returns a copy of b if and only if b is the canonical encoding of
// the record it decodes to.
func Canonicalize(b []byte) ([]byte, error) {
	d, err := Decode(b)
	if err != nil {
		return nil, err
	}
	want, err := Encode(d)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(want, b) {
		return nil, newError(KindCanonical, "DEG-CANON-001", "record encoding is not canonical")
	}
	return append([]byte(nil), b...), nil
}

// CID returns the content identifier of d's canonical encoding.
func CID(d Degree) (cid.Cid, error) {
	b, err := Encode(d)
	if err != nil {
		return cid.Undef, err
	}
	return cidutil.Sum(b)
}
