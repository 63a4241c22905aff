// Package wire implements the fixed-layout frame codec that rides on top
// of a transport's blocking send/recv: one byte-slice per send/recv maps
// to exactly one Request, Response, or Delete frame. Integers are
// fixed-width little-endian; payloads are length-prefixed.
//
// Grounded on the teacher's transport/pdu.go header layout (fixed-size
// binary header, explicit encoding/binary use, no implicit struct
// marshaling) and transport/msg_test.go's round-trip style tests.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package wire

import (
	"encoding/binary"

	"github.com/NVIDIA/rto/core"
)

// Tag identifies the kind of a frame.
type Tag byte

const (
	TagInvalid Tag = iota
	TagReq
	TagRsp
	TagDel
)

func (t Tag) String() string {
	switch t {
	case TagReq:
		return "REQ"
	case TagRsp:
		return "RSP"
	case TagDel:
		return "DEL"
	default:
		return "INVALID"
	}
}

const (
	szTag    = 1
	szSlot   = 8
	szObject = 8
	szMethod = 4
	szLen    = 4

	hdrReq = szTag + szSlot + szObject + szMethod + szLen
	hdrRsp = szTag + szSlot + szLen
	hdrDel = szTag + szObject
)

// EncodeRequest builds an owning REQ frame buffer.
func EncodeRequest(slot core.SlotID, obj core.ObjectID, method core.MethodID, payload []byte) []byte {
	buf := make([]byte, hdrReq+len(payload))
	buf[0] = byte(TagReq)
	binary.LittleEndian.PutUint64(buf[1:], uint64(slot))
	binary.LittleEndian.PutUint64(buf[9:], uint64(obj))
	binary.LittleEndian.PutUint32(buf[17:], uint32(method))
	binary.LittleEndian.PutUint32(buf[21:], uint32(len(payload)))
	copy(buf[hdrReq:], payload)
	return buf
}

// EncodeResponse builds an owning RSP frame buffer tagged with slot.
func EncodeResponse(slot core.SlotID, payload []byte) []byte {
	buf := make([]byte, hdrRsp+len(payload))
	buf[0] = byte(TagRsp)
	binary.LittleEndian.PutUint64(buf[1:], uint64(slot))
	binary.LittleEndian.PutUint32(buf[9:], uint32(len(payload)))
	copy(buf[hdrRsp:], payload)
	return buf
}

// EncodeDelete builds an owning DEL frame buffer.
func EncodeDelete(obj core.ObjectID) []byte {
	buf := make([]byte, hdrDel)
	buf[0] = byte(TagDel)
	binary.LittleEndian.PutUint64(buf[1:], uint64(obj))
	return buf
}

// Frame is the parsed, non-owning view over an incoming buffer: the
// PacketView of spec §4.1. Accessors are only valid for the Tag the frame
// actually carries.
type Frame struct {
	Tag     Tag
	Slot    core.SlotID
	Object  core.ObjectID
	Method  core.MethodID
	Payload []byte
}

// Decode parses buf as one REQ/RSP/DEL frame. Malformed frames (short
// buffers, unrecognized tag, payload-length mismatch) are fatal to the
// connection per spec §4.1 and are reported via core.ErrMalformedFrame.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < szTag {
		return Frame{}, core.WrapFatal(core.ErrMalformedFrame, "empty frame")
	}
	switch Tag(buf[0]) {
	case TagReq:
		if len(buf) < hdrReq {
			return Frame{}, core.WrapFatal(core.ErrMalformedFrame, "short REQ header")
		}
		slot := core.SlotID(binary.LittleEndian.Uint64(buf[1:]))
		obj := core.ObjectID(binary.LittleEndian.Uint64(buf[9:]))
		method := core.MethodID(binary.LittleEndian.Uint32(buf[17:]))
		plen := binary.LittleEndian.Uint32(buf[21:])
		if len(buf)-hdrReq != int(plen) {
			return Frame{}, core.WrapFatal(core.ErrMalformedFrame, "REQ payload length mismatch")
		}
		return Frame{Tag: TagReq, Slot: slot, Object: obj, Method: method, Payload: buf[hdrReq:]}, nil
	case TagRsp:
		if len(buf) < hdrRsp {
			return Frame{}, core.WrapFatal(core.ErrMalformedFrame, "short RSP header")
		}
		slot := core.SlotID(binary.LittleEndian.Uint64(buf[1:]))
		plen := binary.LittleEndian.Uint32(buf[9:])
		if len(buf)-hdrRsp != int(plen) {
			return Frame{}, core.WrapFatal(core.ErrMalformedFrame, "RSP payload length mismatch")
		}
		return Frame{Tag: TagRsp, Slot: slot, Payload: buf[hdrRsp:]}, nil
	case TagDel:
		if len(buf) != hdrDel {
			return Frame{}, core.WrapFatal(core.ErrMalformedFrame, "bad DEL length")
		}
		obj := core.ObjectID(binary.LittleEndian.Uint64(buf[1:]))
		return Frame{Tag: TagDel, Object: obj}, nil
	default:
		return Frame{}, core.WrapFatal(core.ErrMalformedFrame, "unknown tag %d", buf[0])
	}
}
