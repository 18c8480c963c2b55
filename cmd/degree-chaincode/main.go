package main

import (
	"os"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"xdao.co/degreeledger/chaincode"
	"xdao.co/degreeledger/internal/log"
)

func main() {
	log.SetLogger(os.Getenv("CORE_CHAINCODE_LOGGING_LEVEL"), false, false)

	cc, err := contractapi.NewChaincode(chaincode.New())
	if err != nil {
		log.Fatal("Error creating degree chaincode", "err", err)
	}
	cc.Info.Title = chaincode.Name
	cc.Info.Description = chaincode.Description

	if err := cc.Start(); err != nil {
		log.Fatal("Error starting degree chaincode", "err", err)
	}
}
