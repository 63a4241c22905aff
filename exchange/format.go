package exchange

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/tinylib/msgp/msgp"

	"github.com/NVIDIA/rto/core"
)

// MsgpackFormat is the default core.Format: every call argument and result
// type is expected to implement msgp.Marshaler/msgp.Unmarshaler (what the
// msgp code generator emits for a struct), the same contract
// ServiceToExport/ServiceToImport already implement by hand in exchange.go. A small
// set of primitive types round-trip without generated code, for traits
// whose methods take/return bare strings, numbers, or bytes.
func MsgpackFormat() core.Format { return msgpackFormat{} }

type msgpackFormat struct{}

func (msgpackFormat) Name() string { return "msgpack" }

func (msgpackFormat) Marshal(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return msgp.AppendNil(nil), nil
	case msgp.Marshaler:
		return t.MarshalMsg(nil)
	case string:
		return msgp.AppendString(nil, t), nil
	case []byte:
		return msgp.AppendBytes(nil, t), nil
	case bool:
		return msgp.AppendBool(nil, t), nil
	case int:
		return msgp.AppendInt(nil, t), nil
	case int64:
		return msgp.AppendInt64(nil, t), nil
	case uint64:
		return msgp.AppendUint64(nil, t), nil
	case float64:
		return msgp.AppendFloat64(nil, t), nil
	default:
		return nil, fmt.Errorf("exchange: msgpack format: %T does not implement msgp.Marshaler", v)
	}
}

func (msgpackFormat) Unmarshal(b []byte, v any) error {
	switch t := v.(type) {
	case msgp.Unmarshaler:
		_, err := t.UnmarshalMsg(b)
		return err
	case *string:
		s, _, err := msgp.ReadStringBytes(b)
		if err != nil {
			return err
		}
		*t = s
		return nil
	case *[]byte:
		bs, _, err := msgp.ReadBytesBytes(b, nil)
		if err != nil {
			return err
		}
		*t = bs
		return nil
	case *bool:
		bv, _, err := msgp.ReadBoolBytes(b)
		if err != nil {
			return err
		}
		*t = bv
		return nil
	case *int:
		n, _, err := msgp.ReadIntBytes(b)
		if err != nil {
			return err
		}
		*t = n
		return nil
	case *int64:
		n, _, err := msgp.ReadInt64Bytes(b)
		if err != nil {
			return err
		}
		*t = n
		return nil
	case *uint64:
		n, _, err := msgp.ReadUint64Bytes(b)
		if err != nil {
			return err
		}
		*t = n
		return nil
	case *float64:
		f, _, err := msgp.ReadFloat64Bytes(b)
		if err != nil {
			return err
		}
		*t = f
		return nil
	default:
		return fmt.Errorf("exchange: msgpack format: %T does not implement msgp.Unmarshaler", v)
	}
}

// JSONFormat is the alternative core.Format built on json-iterator/go,
// configured compatible with the standard library's encoding/json so that
// ServiceToExport/ServiceToImport's MarshalJSON/UnmarshalJSON methods (and
// any user type's) are honored exactly as encoding/json would honor them.
func JSONFormat() core.Format { return jsonFormat{} }

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonFormat struct{}

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) Marshal(v any) ([]byte, error) { return jsonAPI.Marshal(v) }

func (jsonFormat) Unmarshal(b []byte, v any) error { return jsonAPI.Unmarshal(b, v) }
