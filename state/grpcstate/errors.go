package grpcstate

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/degreeledger/state"
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	// Preserve the state sentinels the server reported by message.
	switch st.Message() {
	case state.ErrEmptyKey.Error():
		return state.ErrEmptyKey
	case state.ErrEmptyValue.Error():
		return state.ErrEmptyValue
	case state.ErrClosed.Error():
		return state.ErrClosed
	default:
		return err
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
