/*
Package pda derives program addresses.

A program derived address is the sha256 digest of a list of seeds, a bump
byte and the program identity that does not lie on the ed25519 curve. No
private key exists for such an address, so only the runtime can sign for it
and only on behalf of the program it was derived from.
*/
package pda

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/agl/ed25519/edwards25519"
	lru "github.com/hashicorp/golang-lru"
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

const (
	// MaxSeeds is the maximum number of seeds, bump included.
	MaxSeeds = 16
	// MaxSeedLen is the maximum length of a single seed.
	MaxSeedLen = 32

	marker = "ProgramDerivedAddress"

	cacheSize = 4096
)

// CreateProgramAddress computes the address for given seeds. The last seed is
// usually the bump. ErrInvalidSeeds is returned when the digest is a valid
// curve point or when the seeds break the limits.
func CreateProgramAddress(seeds [][]byte, programID tokenvm.Address) (tokenvm.Address, error) {
	if len(seeds) > MaxSeeds {
		return tokenvm.ZeroAddress, errors.Wrapf(errors.ErrInvalidSeeds, "%d seeds", len(seeds))
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return tokenvm.ZeroAddress, errors.Wrapf(errors.ErrInvalidSeeds, "seed %d is %d bytes long", i, len(s))
		}
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write([]byte(marker))

	var addr tokenvm.Address
	copy(addr[:], h.Sum(nil))
	if IsOnCurve(addr) {
		return tokenvm.ZeroAddress, errors.Wrap(errors.ErrInvalidSeeds, "address on curve")
	}
	return addr, nil
}

// IsOnCurve returns true if the address is a valid ed25519 public key.
func IsOnCurve(addr tokenvm.Address) bool {
	var p edwards25519.ExtendedGroupElement
	b := [32]byte(addr)
	return p.FromBytes(&b)
}

// Deriver finds program addresses and remembers the results.
type Deriver struct {
	cache *lru.Cache
}

// NewDeriver returns a deriver with a bounded memo cache.
func NewDeriver() *Deriver {
	c, err := lru.New(cacheSize)
	if err != nil {
		panic(err)
	}
	return &Deriver{cache: c}
}

type found struct {
	addr tokenvm.Address
	bump byte
}

// Find searches the highest bump, from 255 down to 0, for which the seeds
// followed by the bump give a program address.
func (d *Deriver) Find(seeds [][]byte, programID tokenvm.Address) (tokenvm.Address, byte, error) {
	key := cacheKey(seeds, programID)
	if v, ok := d.cache.Get(key); ok {
		f := v.(found)
		return f.addr, f.bump, nil
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			d.cache.Add(key, found{addr: addr, bump: byte(bump)})
			return addr, byte(bump), nil
		}
		if !errors.ErrInvalidSeeds.Is(err) {
			return tokenvm.ZeroAddress, 0, err
		}
		// Only the on curve case is worth another bump. Broken limits
		// fail for every bump.
		if len(withBump) > MaxSeeds || tooLong(seeds) {
			return tokenvm.ZeroAddress, 0, err
		}
	}
	return tokenvm.ZeroAddress, 0, errors.Wrap(errors.ErrInvalidSeeds, "no viable bump")
}

func tooLong(seeds [][]byte) bool {
	for _, s := range seeds {
		if len(s) > MaxSeedLen {
			return true
		}
	}
	return false
}

// cacheKey encodes the seeds with their lengths so that different seed
// splits never collide.
func cacheKey(seeds [][]byte, programID tokenvm.Address) string {
	buf := make([]byte, 0, 64+len(seeds)*MaxSeedLen)
	buf = append(buf, programID[:]...)
	for _, s := range seeds {
		var l [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(l[:], uint64(len(s)))
		buf = append(buf, l[:n]...)
		buf = append(buf, s...)
	}
	return string(buf)
}

var defaultDeriver = NewDeriver()

// FindProgramAddress uses a process wide deriver.
func FindProgramAddress(seeds [][]byte, programID tokenvm.Address) (tokenvm.Address, byte, error) {
	return defaultDeriver.Find(seeds, programID)
}

// Verify checks that the seeds with given bump derive expected address.
// A mismatch is reported as ErrIllegalOwner.
func Verify(expected tokenvm.Address, seeds [][]byte, bump byte, programID tokenvm.Address) error {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	withBump[len(seeds)] = []byte{bump}
	addr, err := CreateProgramAddress(withBump, programID)
	if err != nil {
		return err
	}
	if addr != expected {
		return errors.Wrapf(errors.ErrIllegalOwner, "derived %s, got %s", addr, expected)
	}
	return nil
}
