package memo

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// KeyBuilder derives a content-addressed cache key. Every part is length
// prefixed so ("ab","c") and ("a","bc") hash differently.
type KeyBuilder struct {
	h   hash.Hash
	buf [8]byte
}

// NewKey starts a key in the given namespace.
func NewKey(namespace string) *KeyBuilder {
	k := &KeyBuilder{h: sha256.New()}
	return k.String(namespace)
}

func (k *KeyBuilder) Bytes(b []byte) *KeyBuilder {
	k.Int(len(b))
	k.h.Write(b)
	return k
}

func (k *KeyBuilder) String(s string) *KeyBuilder {
	k.Int(len(s))
	k.h.Write([]byte(s))
	return k
}

func (k *KeyBuilder) Int(n int) *KeyBuilder {
	binary.BigEndian.PutUint64(k.buf[:], uint64(n))
	k.h.Write(k.buf[:])
	return k
}

func (k *KeyBuilder) Float64s(vals []float64) *KeyBuilder {
	k.Int(len(vals))
	for _, v := range vals {
		binary.BigEndian.PutUint64(k.buf[:], math.Float64bits(v))
		k.h.Write(k.buf[:])
	}
	return k
}

// Sum returns the hex digest.
func (k *KeyBuilder) Sum() string {
	return hex.EncodeToString(k.h.Sum(nil))
}
