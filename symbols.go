// symbols.go — fresh, process-unique identifier strings (§4.1).
//
// Each Engine owns one Symbols generator. fresh() returns a new string of
// the form <prefix><instance-seed><counter>, encoded in base36 so the
// result stays a short, valid host-language identifier fragment. The seed
// mixes a wall-clock sample with a random UUID the way
// launix-de-memcp/storage/fast_uuid.go mixes a monotonic counter with
// time.Now().UnixNano() into UUID-shaped bytes; here we keep the uuid.UUID
// itself as the entropy source rather than re-deriving our own bit-mixing,
// since google/uuid already draws from the strongest source available
// (crypto/rand) the way §9's design notes ask for.
package synmacro

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Symbols generates fresh identifiers. The zero value is not usable; build
// one with NewSymbols. A Symbols value is safe for concurrent use: the
// counter is advanced with sync/atomic, satisfying §5's requirement that a
// parallel macro-expansion implementation be able to share one generator
// across goroutines.
type Symbols struct {
	prefix  string
	seed    string
	counter uint64
}

// NewSymbols constructs a generator with the given identifier prefix
// (e.g. "g$"). Two Symbols instances, even in the same process, will not
// collide with overwhelming probability: the seed is drawn from a fresh
// random UUID combined with a wall-clock sample at construction time.
func NewSymbols(prefix string) *Symbols {
	u := uuid.New()
	now := time.Now().UnixNano()
	mixed := make([]byte, 0, 24)
	mixed = append(mixed, u[:]...)
	for shift := 56; shift >= 0; shift -= 8 {
		mixed = append(mixed, byte(now>>uint(shift)))
	}
	return &Symbols{
		prefix: prefix,
		seed:   encodeBase36(mixed),
	}
}

// Fresh returns a new, process-unique identifier string.
func (s *Symbols) Fresh() string {
	n := atomic.AddUint64(&s.counter, 1)
	return s.prefix + s.seed + strconv.FormatUint(n, 36)
}

// encodeBase36 renders arbitrary bytes as a base-36 digit string (no sign,
// no leading zero stripped beyond the natural big-endian representation),
// short enough to stay a convenient identifier fragment.
func encodeBase36(b []byte) string {
	if len(b) == 0 {
		return "0"
	}
	// Treat b as a big-endian unsigned integer and repeatedly divide by 36.
	digits := make([]byte, len(b))
	copy(digits, b)

	const base = 36
	var out []byte
	for {
		zero := true
		carry := 0
		for i := 0; i < len(digits); i++ {
			cur := carry*256 + int(digits[i])
			digits[i] = byte(cur / base)
			carry = cur % base
			if digits[i] != 0 {
				zero = false
			}
		}
		out = append(out, "0123456789abcdefghijklmnopqrstuvwxyz"[carry])
		if zero {
			break
		}
	}
	// out was built least-significant-digit first; reverse it.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
