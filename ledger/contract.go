// Package ledger implements the degree ledger contract.
//
// Each operation runs against one Invocation: the world state and the caller's
// identity are passed in explicitly and nothing is read from package state.
// Operations perform at most one write, and every write is preceded by a read
// of the same key so the surrounding platform can detect read/write conflicts.
package ledger

import (
	"errors"

	"xdao.co/degreeledger/authz"
	"xdao.co/degreeledger/degree"
	"xdao.co/degreeledger/internal/log"
	"xdao.co/degreeledger/state"
)

const (
	MinYear = 1
	MaxYear = 9999
)

// Invocation carries the per-call capabilities an operation may use.
type Invocation struct {
	State  state.Store
	Caller authz.Caller
}

// Contract holds the contract's static configuration.
type Contract struct {
	Universities authz.Table
}

// New returns a Contract using the compiled-in university table.
func New() *Contract {
	return &Contract{Universities: authz.Default()}
}

// ConferRequest holds the caller-supplied fields of a new degree.
type ConferRequest struct {
	ID             string
	College        string
	Program        string
	Honors         string
	Specialization string
	DegreeName     string
	DegreeLevel    string
	Owner          string
	Year           int
}

// InitDegreeLedger writes the sample records. It does not check for existing
// keys; a second call overwrites them.
func (c *Contract) InitDegreeLedger(inv Invocation) error {
	if err := inv.check(); err != nil {
		return err
	}
	for _, d := range degree.Seed() {
		if err := put(inv, d); err != nil {
			return err
		}
		log.Info("Degree initialized", "id", d.ID)
	}
	return nil
}

// ConferDegree issues a new degree from the caller's university.
func (c *Contract) ConferDegree(inv Invocation, req ConferRequest) error {
	if err := inv.check(); err != nil {
		return err
	}
	university, err := c.university(inv)
	if err != nil {
		return err
	}
	if req.ID == "" {
		return newError(KindInvalidArgument, "degree id must not be empty")
	}
	if req.Year < MinYear || req.Year > MaxYear {
		return newError(KindInvalidArgument, "year %d out of range [%d, %d]", req.Year, MinYear, MaxYear)
	}

	exists, err := c.DegreeExists(inv, req.ID)
	if err != nil {
		return err
	}
	if exists {
		return errAlreadyExists(req.ID)
	}

	d := degree.Degree{
		ID:             req.ID,
		University:     university,
		College:        req.College,
		Program:        req.Program,
		Honors:         req.Honors,
		Specialization: req.Specialization,
		DegreeName:     req.DegreeName,
		DegreeLevel:    req.DegreeLevel,
		Owner:          req.Owner,
		Year:           req.Year,
		Accreditation:  true,
	}
	if err := put(inv, d); err != nil {
		return err
	}
	log.Info("Degree conferred", "id", d.ID, "university", university)
	return nil
}

// UpdateDegreeAccreditation sets the Accreditation of an existing degree.
// Only the university that conferred the degree may change it; every other
// field is written back unchanged.
func (c *Contract) UpdateDegreeAccreditation(inv Invocation, id string, accreditation bool) error {
	if err := inv.check(); err != nil {
		return err
	}
	university, err := c.university(inv)
	if err != nil {
		return err
	}

	exists, err := c.DegreeExists(inv, id)
	if err != nil {
		return err
	}
	if !exists {
		return errNotFound(id)
	}

	raw, err := get(inv, id)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errNotFound(id)
	}
	d, err := degree.Decode(raw)
	if err != nil {
		return wrapError(KindInternal, err, "The degree %s could not be decoded: %v", id, err)
	}
	if d.University != university {
		log.Warn("Accreditation change rejected", "id", id, "university", university, "owner", d.University)
		return errForbidden(id, university)
	}

	d.Accreditation = accreditation
	if err := put(inv, d); err != nil {
		return err
	}
	log.Info("Degree accreditation updated", "id", id, "accreditation", accreditation)
	return nil
}

// ReadDegree returns the stored encoding of a degree. Reads are not
// restricted by organization.
func (c *Contract) ReadDegree(inv Invocation, id string) ([]byte, error) {
	if err := inv.check(); err != nil {
		return nil, err
	}
	raw, err := get(inv, id)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errNotFound(id)
	}
	return raw, nil
}

// DegreeExists reports whether id is present. Absence is not an error; only a
// failing store is.
func (c *Contract) DegreeExists(inv Invocation, id string) (bool, error) {
	if err := inv.check(); err != nil {
		return false, err
	}
	raw, err := get(inv, id)
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// GetUniversityName returns the university the caller's organization maps to.
func (c *Contract) GetUniversityName(inv Invocation) (string, error) {
	return c.university(inv)
}

// WorldStateRoot returns the root over every key in the world state. The
// store must be enumerable.
func (c *Contract) WorldStateRoot(inv Invocation) (string, error) {
	if err := inv.check(); err != nil {
		return "", err
	}
	it, ok := inv.State.(state.Iterable)
	if !ok {
		return "", newError(KindInternal, "world state cannot be enumerated")
	}
	root, err := state.Root(it)
	if err != nil {
		return "", wrapError(KindInternal, err, "compute world state root: %v", err)
	}
	return root, nil
}

func (c *Contract) university(inv Invocation) (string, error) {
	mspID, university, err := c.Universities.ResolveCaller(inv.Caller)
	if err != nil {
		log.Warn("Unauthorized organization", "msp", mspID)
		return "", wrapError(KindUnauthorized, err, "Unauthorized organization: %s", mspID)
	}
	return university, nil
}

func (inv Invocation) check() error {
	if inv.State == nil {
		return newError(KindInternal, "no world state bound to invocation")
	}
	return nil
}

func get(inv Invocation, id string) ([]byte, error) {
	if id == "" {
		return nil, nil
	}
	raw, err := inv.State.GetState(id)
	if err != nil {
		return nil, wrapError(KindInternal, err, "failed to read degree %s from world state: %v", id, err)
	}
	return raw, nil
}

func put(inv Invocation, d degree.Degree) error {
	b, err := degree.Encode(d)
	if err != nil {
		return wrapError(KindInvalidArgument, err, "degree %s: %v", d.ID, err)
	}
	if err := inv.State.PutState(d.ID, b); err != nil {
		if errors.Is(err, state.ErrEmptyKey) {
			return wrapError(KindInvalidArgument, err, "degree id must not be empty")
		}
		return wrapError(KindInternal, err, "failed to write degree %s to world state: %v", d.ID, err)
	}
	return nil
}
