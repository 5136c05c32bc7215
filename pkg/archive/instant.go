package archive

import (
	"fmt"
	"time"
)

// The instant range matches four-digit proleptic Gregorian years.
var (
	MinInstant = time.Date(-9999, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxInstant = time.Date(9999, time.December, 31, 23, 59, 59, 999_999_999, time.UTC)

	minInstantNanos = InstantNanos(MinInstant)
	maxInstantNanos = InstantNanos(MaxInstant)
)

var instantLayout = Layout{Size: 16, Align: 16}

// InstantNanos returns t as nanoseconds since the Unix epoch.
func InstantNanos(t time.Time) Int128 {
	return fromUnix(t.Unix(), int64(t.Nanosecond()))
}

// InstantFromNanos converts nanoseconds since the Unix epoch back to a UTC
// time. It fails with ErrOutOfRange outside [MinInstant, MaxInstant].
func InstantFromNanos(x Int128) (time.Time, error) {
	if x.Cmp(minInstantNanos) < 0 || x.Cmp(maxInstantNanos) > 0 {
		return time.Time{}, fmt.Errorf("%w: %s ns", ErrOutOfRange, x)
	}
	sec, nsec, ok := x.unix()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s ns", ErrOutOfRange, x)
	}
	return time.Unix(sec, nsec).UTC(), nil
}

type instant struct{}

// Instant archives a time.Time as a signed 128-bit count of nanoseconds since
// the Unix epoch. Location and monotonic readings are not kept; decoded times
// are in UTC.
func Instant() Adapter[time.Time, Unit] {
	return instant{}
}

func (instant) Layout() Layout {
	return instantLayout
}

func (instant) Serialize(_ *Serializer, t time.Time) (Unit, error) {
	if t.Before(MinInstant) || t.After(MaxInstant) {
		return Unit{}, fmt.Errorf("%w: instant %s", ErrOutOfRange, t.Format(time.RFC3339Nano))
	}
	return Unit{}, nil
}

func (instant) Resolve(t time.Time, _ Pos, _ Unit, out []byte) {
	InstantNanos(t).put(out)
}

func (instant) Deserialize(v View) (time.Time, error) {
	x, err := v.Int128()
	if err != nil {
		return time.Time{}, err
	}
	t, err := InstantFromNanos(x)
	if err != nil {
		return time.Time{}, NewDecodeError(OutOfRange, v.pos, "instant of %s ns", x)
	}
	return t, nil
}
