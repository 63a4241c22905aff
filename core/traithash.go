package core

import "github.com/OneOfOne/xxhash"

// HashTraitID derives a stable TraitID from a trait's declared name. The
// real trait/method-id assignment is the external generator's job (spec
// §6); this is the kind of stable, registry-free hash-a-name-to-an-id
// technique a generator could use instead of a central counter, grounded
// on the teacher's own HashK8sProxyID (cmn/cos/uuid.go), which hashes a
// node name into a short stable id the same way.
func HashTraitID(name string) TraitID {
	return TraitID(xxhash.Checksum32([]byte(name)))
}
