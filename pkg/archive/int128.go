package archive

import (
	"math"
	"math/big"
	"math/bits"
)

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Int128From widens v to 128 bits.
func Int128From(v int64) Int128 {
	return Int128{Hi: v >> 63, Lo: uint64(v)}
}

// Add returns x+y, wrapping on overflow.
func (x Int128) Add(y Int128) Int128 {
	lo, carry := bits.Add64(x.Lo, y.Lo, 0)
	return Int128{Hi: x.Hi + y.Hi + int64(carry), Lo: lo}
}

// Sub returns x-y, wrapping on overflow.
func (x Int128) Sub(y Int128) Int128 {
	return x.Add(y.Neg())
}

// Neg returns -x, wrapping on overflow.
func (x Int128) Neg() Int128 {
	lo := ^x.Lo + 1
	hi := ^x.Hi
	if lo == 0 {
		hi++
	}
	return Int128{Hi: hi, Lo: lo}
}

// Cmp returns -1, 0 or +1 as x is less than, equal to or greater than y.
func (x Int128) Cmp(y Int128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	}
	return 0
}

func (x Int128) String() string {
	v := new(big.Int).SetInt64(x.Hi)
	v.Lsh(v, 64)
	v.Or(v, new(big.Int).SetUint64(x.Lo))
	return v.String()
}

func (x Int128) put(b []byte) {
	le.PutUint64(b[0:8], x.Lo)
	le.PutUint64(b[8:16], uint64(x.Hi))
}

func readInt128(b []byte) Int128 {
	return Int128{Lo: le.Uint64(b[0:8]), Hi: int64(le.Uint64(b[8:16]))}
}

const nanosPerSecond = 1_000_000_000

// fromUnix returns sec*1e9 + nsec.
func fromUnix(sec, nsec int64) Int128 {
	abs := uint64(sec)
	if sec < 0 {
		abs = uint64(-sec)
	}
	hi, lo := bits.Mul64(abs, nanosPerSecond)
	x := Int128{Hi: int64(hi), Lo: lo}
	if sec < 0 {
		x = x.Neg()
	}
	return x.Add(Int128From(nsec))
}

// unix splits x nanoseconds into seconds and a nanosecond remainder in
// [0, 1e9). ok is false if the seconds do not fit in an int64.
func (x Int128) unix() (sec, nsec int64, ok bool) {
	neg := x.Hi < 0
	u := x
	if neg {
		u = x.Neg()
	}
	hi := uint64(u.Hi)
	if hi >= nanosPerSecond {
		return 0, 0, false
	}
	q, r := bits.Div64(hi, u.Lo, nanosPerSecond)
	switch {
	case !neg:
		if q > math.MaxInt64 {
			return 0, 0, false
		}
		return int64(q), int64(r), true
	case r == 0:
		if q > 1<<63 {
			return 0, 0, false
		}
		// q == 1<<63 wraps to math.MinInt64, which is the answer
		return -int64(q), 0, true
	default:
		if q > math.MaxInt64 {
			return 0, 0, false
		}
		return -int64(q) - 1, int64(nanosPerSecond - r), true
	}
}
