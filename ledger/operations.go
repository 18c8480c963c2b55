package ledger

import (
	"sort"
	"strconv"
	"strings"
)

// Handler runs one operation from its wire arguments.
type Handler func(c *Contract, inv Invocation, args []string) ([]byte, error)

// Operation describes one invocable contract operation.
type Operation struct {
	Name string
	// Params names the positional string arguments, in order.
	Params []string
	// ReadOnly operations never write to the world state.
	ReadOnly bool
	Handler  Handler
}

var operations = map[string]Operation{
	"InitDegreeLedger": {
		Name: "InitDegreeLedger",
		Handler: func(c *Contract, inv Invocation, _ []string) ([]byte, error) {
			return nil, c.InitDegreeLedger(inv)
		},
	},
	"ConferDegree": {
		Name:   "ConferDegree",
		Params: []string{"id", "college", "program", "honors", "specialization", "degreeName", "degreeLevel", "owner", "year"},
		Handler: func(c *Contract, inv Invocation, args []string) ([]byte, error) {
			// Unrecognized callers are rejected before their arguments are looked at.
			if _, err := c.university(inv); err != nil {
				return nil, err
			}
			year, err := ParseYear(args[8])
			if err != nil {
				return nil, err
			}
			return nil, c.ConferDegree(inv, ConferRequest{
				ID:             args[0],
				College:        args[1],
				Program:        args[2],
				Honors:         args[3],
				Specialization: args[4],
				DegreeName:     args[5],
				DegreeLevel:    args[6],
				Owner:          args[7],
				Year:           year,
			})
		},
	},
	"UpdateDegreeAccreditation": {
		Name:   "UpdateDegreeAccreditation",
		Params: []string{"id", "accreditation"},
		Handler: func(c *Contract, inv Invocation, args []string) ([]byte, error) {
			if _, err := c.university(inv); err != nil {
				return nil, err
			}
			accreditation, err := ParseAccreditation(args[1])
			if err != nil {
				return nil, err
			}
			return nil, c.UpdateDegreeAccreditation(inv, args[0], accreditation)
		},
	},
	"ReadDegree": {
		Name:     "ReadDegree",
		Params:   []string{"id"},
		ReadOnly: true,
		Handler: func(c *Contract, inv Invocation, args []string) ([]byte, error) {
			return c.ReadDegree(inv, args[0])
		},
	},
	"DegreeExists": {
		Name:     "DegreeExists",
		Params:   []string{"id"},
		ReadOnly: true,
		Handler: func(c *Contract, inv Invocation, args []string) ([]byte, error) {
			ok, err := c.DegreeExists(inv, args[0])
			if err != nil {
				return nil, err
			}
			return []byte(strconv.FormatBool(ok)), nil
		},
	},
	"GetUniversityName": {
		Name:     "GetUniversityName",
		ReadOnly: true,
		Handler: func(c *Contract, inv Invocation, _ []string) ([]byte, error) {
			name, err := c.GetUniversityName(inv)
			if err != nil {
				return nil, err
			}
			return []byte(name), nil
		},
	},
	"WorldStateRoot": {
		Name:     "WorldStateRoot",
		ReadOnly: true,
		Handler: func(c *Contract, inv Invocation, _ []string) ([]byte, error) {
			root, err := c.WorldStateRoot(inv)
			if err != nil {
				return nil, err
			}
			return []byte(root), nil
		},
	},
}

// Operations returns the operation table sorted by name.
func Operations() []Operation {
	out := make([]Operation, 0, len(operations))
	for _, op := range operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the named operation.
func Lookup(name string) (Operation, bool) {
	op, ok := operations[name]
	return op, ok
}

// Invoke dispatches a named operation with wire-form arguments.
func (c *Contract) Invoke(inv Invocation, name string, args ...string) ([]byte, error) {
	op, ok := Lookup(name)
	if !ok {
		return nil, newError(KindInvalidArgument, "unknown operation %q", name)
	}
	if len(args) != len(op.Params) {
		return nil, newError(KindInvalidArgument, "%s expects %d arguments (%s), got %d",
			name, len(op.Params), strings.Join(op.Params, ", "), len(args))
	}
	return op.Handler(c, inv, args)
}

// ParseYear parses a base-10 year as sent by the gateway ("2026"). Only ASCII
// digits without a sign, padding or leading zero are accepted.
func ParseYear(s string) (int, error) {
	if !isDecimal(s) {
		return 0, newError(KindInvalidArgument, "invalid year %q: must be an integer", s)
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, wrapError(KindInvalidArgument, err, "invalid year %q: must be an integer", s)
	}
	if year < MinYear || year > MaxYear {
		return 0, newError(KindInvalidArgument, "year %d out of range [%d, %d]", year, MinYear, MaxYear)
	}
	return year, nil
}

func isDecimal(s string) bool {
	if s == "" || len(s) > 1 && s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseAccreditation accepts exactly "true" or "false".
func ParseAccreditation(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, newError(KindInvalidArgument, "invalid accreditation %q: must be true or false", s)
	}
}
