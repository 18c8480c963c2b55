// Package chaincode exposes the degree ledger as a Hyperledger Fabric contract.
//
// Every transaction builds a ledger.Invocation from the transaction context:
// the stub is the world state and the client identity is the caller.
package chaincode

import (
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-contract-api-go/metadata"

	"xdao.co/degreeledger/ledger"
	"xdao.co/degreeledger/state"
)

const (
	Name        = "DegreeContract"
	Description = "Smart contract for tracking degrees"
)

// SmartContract provides functions for managing degrees.
type SmartContract struct {
	contractapi.Contract
	ledger *ledger.Contract
}

// New returns the contract with the built-in organization table.
func New() *SmartContract {
	return NewWithLedger(ledger.New())
}

func NewWithLedger(l *ledger.Contract) *SmartContract {
	return &SmartContract{
		Contract: contractapi.Contract{
			Name: Name,
			Info: metadata.InfoMetadata{
				Title:       Name,
				Description: Description,
			},
		},
		ledger: l,
	}
}

func invocation(ctx contractapi.TransactionContextInterface) ledger.Invocation {
	return ledger.Invocation{
		State:  worldState{stub: ctx.GetStub()},
		Caller: ctx.GetClientIdentity(),
	}
}

// InitDegreeLedger adds the sample degrees to the world state.
func (s *SmartContract) InitDegreeLedger(ctx contractapi.TransactionContextInterface) error {
	return s.ledger.InitDegreeLedger(invocation(ctx))
}

// ConferDegree issues a new, accredited degree on behalf of the caller's university.
func (s *SmartContract) ConferDegree(ctx contractapi.TransactionContextInterface, id, college, program, honors, specialization, degreeName, degreeLevel, owner string, year int) error {
	return s.ledger.ConferDegree(invocation(ctx), ledger.ConferRequest{
		ID:             id,
		College:        college,
		Program:        program,
		Honors:         honors,
		Specialization: specialization,
		DegreeName:     degreeName,
		DegreeLevel:    degreeLevel,
		Owner:          owner,
		Year:           year,
	})
}

// UpdateDegreeAccreditation sets the accreditation of a degree the caller's university issued.
func (s *SmartContract) UpdateDegreeAccreditation(ctx contractapi.TransactionContextInterface, id string, accreditation bool) error {
	return s.ledger.UpdateDegreeAccreditation(invocation(ctx), id, accreditation)
}

// ReadDegree returns the degree stored in the world state with given id.
func (s *SmartContract) ReadDegree(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	b, err := s.ledger.ReadDegree(invocation(ctx), id)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DegreeExists returns true when a degree with given id exists in the world state.
func (s *SmartContract) DegreeExists(ctx contractapi.TransactionContextInterface, id string) (bool, error) {
	return s.ledger.DegreeExists(invocation(ctx), id)
}

func (s *SmartContract) GetUniversityName(ctx contractapi.TransactionContextInterface) (string, error) {
	return s.ledger.GetUniversityName(invocation(ctx))
}

func (s *SmartContract) WorldStateRoot(ctx contractapi.TransactionContextInterface) (string, error) {
	return s.ledger.WorldStateRoot(invocation(ctx))
}

// worldState adapts the chaincode stub; Keys is an open range query.
type worldState struct {
	stub shim.ChaincodeStubInterface
}

var _ state.Iterable = worldState{}

func (w worldState) GetState(key string) ([]byte, error) { return w.stub.GetState(key) }

func (w worldState) PutState(key string, value []byte) error { return w.stub.PutState(key, value) }

func (w worldState) Keys() ([]string, error) {
	it, err := w.stub.GetStateByRange("", "")
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var keys []string
	for it.HasNext() {
		kv, err := it.Next()
		if err != nil {
			return nil, err
		}
		keys = append(keys, kv.GetKey())
	}
	return keys, nil
}
