// Package cos provides small low-level helpers shared across the runtime:
// short human-readable ids for contexts, ports, and log lines.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"crypto/rand"
	"fmt"

	"github.com/teris-io/shortid"
)

// alphabet for generated ids (as in the teacher): 64 distinct symbols, the
// alphabet size shortid requires.
const idABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

const LenShortID = 9 // per https://github.com/teris-io/shortid#id-length

var sid *shortid.Shortid

func init() {
	var seed uint64
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		for _, c := range b {
			seed = seed<<8 | uint64(c)
		}
	}
	sid = shortid.MustNew(1 /*worker*/, idABC, seed)
}

// GenShortID mints a short, log-line-friendly identifier for a Context or
// Port instance (e.g. "port[3f2a91]: ...").
func GenShortID() string {
	id, err := sid.Generate()
	if err != nil {
		// shortid only fails on worker/seed misconfiguration, which init()
		// above cannot produce; fall back to a fixed-width hex stamp.
		var b [8]byte
		_, _ = rand.Read(b[:])
		return fmt.Sprintf("%x", b)
	}
	return id
}
