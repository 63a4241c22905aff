package exchange

import (
	"github.com/tinylib/msgp/msgp"

	"github.com/NVIDIA/rto/core"
)

// msgpAppendHandle and msgpReadHandle give core.HandleToExchange a manual
// msgp encoding (one field, a uint64 — not worth running the msgp code
// generator over) using the tinylib/msgp runtime's own Append/Read
// primitives, the same primitives its generated code calls.
func msgpAppendHandle(b []byte, h core.HandleToExchange) []byte {
	return msgp.AppendUint64(b, uint64(h.ObjectID))
}

func msgpReadHandle(bts []byte) (core.HandleToExchange, []byte, error) {
	id, rest, err := msgp.ReadUint64Bytes(bts)
	if err != nil {
		return core.HandleToExchange{}, nil, err
	}
	return core.HandleToExchange{ObjectID: core.ObjectID(id)}, rest, nil
}

// jsonMarshal/jsonUnmarshalHandle give core.HandleToExchange the same
// encoding under the JSON format, through the same jsoniter instance
// (jsonAPI, defined in format.go) the JSONFormat Format implementation
// uses for everything else, so there is exactly one JSON codepath in this
// package.
func jsonMarshal(h core.HandleToExchange) ([]byte, error) {
	return jsonAPI.Marshal(h)
}

func jsonUnmarshalHandle(b []byte) (core.HandleToExchange, error) {
	var h core.HandleToExchange
	err := jsonAPI.Unmarshal(b, &h)
	return h, err
}
