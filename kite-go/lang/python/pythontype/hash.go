package pythontype

import (
	"encoding/binary"
	"math"

	spooky "github.com/dgryski/go-spooky"
)

// FlatID is a hash of an object or value
type FlatID uint64

// rehash combines several hashes into one
func rehash(x ...FlatID) FlatID {
	var h uint64
	b := make([]byte, 8)
	for _, xi := range x {
		binary.LittleEndian.PutUint64(b, uint64(xi))
		h = spooky.Hash64Seed(b, h)
	}
	return FlatID(h)
}

// rehashValues combines a hash with the hashes of zero or more values
func rehashValues(x FlatID, vs ...Value) FlatID {
	var h uint64
	b := make([]byte, 8)
	for _, v := range vs {
		binary.LittleEndian.PutUint64(b, uint64(v.Hash()))
		h = spooky.Hash64Seed(b, h)
	}
	binary.LittleEndian.PutUint64(b, h)
	return FlatID(spooky.Hash64Seed(b, uint64(x)))
}

// rehashStrings combines a hash with the hashes of zero or more strings
func rehashStrings(x FlatID, ss ...string) FlatID {
	h := uint64(x)
	for _, s := range ss {
		h = spooky.Hash64Seed([]byte(s), h)
		// separate "ab","c" from "a","bc"
		h = spooky.Hash64Seed([]byte{0}, h)
	}
	return FlatID(h)
}

// rehashFloats combines a hash with the bit patterns of zero or more floats
func rehashFloats(x FlatID, fs ...float64) FlatID {
	h := uint64(x)
	b := make([]byte, 8)
	for _, f := range fs {
		binary.LittleEndian.PutUint64(b, math.Float64bits(f))
		h = spooky.Hash64Seed(b, h)
	}
	return FlatID(h)
}

func hashBool(b bool) FlatID {
	if b {
		return saltTrue
	}
	return saltFalse
}

// These constants ensure that the hash of each object is repeatable but unique.
// The numbers are randomly generated.
const (
	saltValue            = 1085740485675
	saltUnknown          = 6758959635298
	saltTrue             = 1123535697898
	saltFalse            = 7451123546465
	saltNumeric          = 4663644334535
	saltStr              = 6087650786584
	saltConstant         = 1935468612388
	saltContainer        = 2608058625550
	saltFunc             = 6075460587450
	saltClass            = 9005419490459
	saltInstance         = 3569715369783
	saltExternalFunc     = 5768797545612
	saltExternalClass    = 6950650687583
	saltExternalInstance = 7018347391875
	saltAttrs            = 8916790813476
)
