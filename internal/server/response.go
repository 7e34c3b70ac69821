package server

import (
	"encoding/json"

	"github.com/relayq/relayq/common"
)

// MakeResult renders a successful submission response.
func MakeResult(res *common.SubmitResult) []byte {
	b, _ := json.Marshal(common.Response{
		Ok:      true,
		Message: res,
	})
	return b
}

// InitError renders an error response from an error value.
func InitError(err error) []byte {
	if err == nil {
		return CreateError("Unknown")
	}
	return CreateError(err.Error())
}

// CreateError renders an error response from a message string.
func CreateError(err string) []byte {
	b, _ := json.Marshal(common.Response{
		Ok:    false,
		Error: err,
	})
	return b
}
