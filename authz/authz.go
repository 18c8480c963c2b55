// Package authz maps a caller's organization (MSP ID) to the university it
// speaks for.
//
// The mapping is static configuration compiled into the contract. Recognizing a
// new organization means redeploying, not calling an operation.
package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownOrganization is returned when an MSP ID has no university.
var ErrUnknownOrganization = errors.New("authz: unknown organization")

// Caller exposes the organization of the party invoking the contract.
//
// Fabric's cid.ClientIdentity satisfies it.
type Caller interface {
	GetMSPID() (string, error)
}

// StaticCaller is a Caller with a fixed MSP ID.
type StaticCaller string

func (c StaticCaller) GetMSPID() (string, error) { return string(c), nil }

// Table is an immutable MSP ID -> university name mapping.
// The zero Table recognizes no organization.
type Table struct {
	byMSP map[string]string
}

// NewTable copies entries into a Table. IDs and names must be non-empty and
// free of surrounding whitespace.
func NewTable(entries map[string]string) (Table, error) {
	byMSP := make(map[string]string, len(entries))
	for id, name := range entries {
		if id == "" || strings.TrimSpace(id) != id {
			return Table{}, fmt.Errorf("authz: invalid MSP ID %q", id)
		}
		if name == "" || strings.TrimSpace(name) != name {
			return Table{}, fmt.Errorf("authz: invalid university name %q for %s", name, id)
		}
		byMSP[id] = name
	}
	return Table{byMSP: byMSP}, nil
}

var defaultEntries = map[string]string{
	"Org1MSP":     "University of Organization 1 (Test Data – Not Valid)",
	"Org2MSP":     "University of Organization 2 (Test Data – Not Valid)",
	"UCFMSP":      "University of Central Florida",
	"UFLMSP":      "University of Florida",
	"MITMSP":      "Massachusetts Institute of Technology",
	"STANFORDMSP": "Stanford University",
	"HARVARDMSP":  "Harvard University",
	"CALTECHMSP":  "California Institute of Technology",
}

// Default returns the table the contract ships with.
func Default() Table {
	t, err := NewTable(defaultEntries)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve returns the university for mspID.
// Surrounding whitespace is ignored; there is no fallback university.
func (t Table) Resolve(mspID string) (string, error) {
	name, ok := t.byMSP[strings.TrimSpace(mspID)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOrganization, mspID)
	}
	return name, nil
}

// ResolveCaller reads the caller's MSP ID and resolves it.
// It returns the MSP ID alongside the university so rejections can name it.
func (t Table) ResolveCaller(c Caller) (mspID string, university string, err error) {
	if c == nil {
		return "", "", fmt.Errorf("%w: no caller identity", ErrUnknownOrganization)
	}
	mspID, err = c.GetMSPID()
	if err != nil {
		return "", "", fmt.Errorf("%w: read MSP ID: %v", ErrUnknownOrganization, err)
	}
	university, err = t.Resolve(mspID)
	return mspID, university, err
}

// Organizations returns the recognized MSP IDs, sorted.
func (t Table) Organizations() []string {
	out := make([]string, 0, len(t.byMSP))
	for id := range t.byMSP {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (t Table) Len() int { return len(t.byMSP) }
