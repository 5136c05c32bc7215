package archive

import "fmt"

// Packed dates keep the 1-based day of the year in the low 9 bits and the
// signed year in the remaining 23.
const (
	ordinalBits = 9
	ordinalMask = 1<<ordinalBits - 1

	MaxOrdinal    = 366
	MinPackedYear = -1 << (31 - ordinalBits)
	MaxPackedYear = 1<<(31-ordinalBits) - 1
)

// DateLayout is the header layout of a packed date.
func DateLayout() Layout {
	return Layout{Size: 4, Align: 4}
}

// PackOrdinalDate packs a year and 1-based ordinal day as (year << 9) | ordinal.
// It does not check that the ordinal exists in that year.
func PackOrdinalDate(year, ordinal int) (int32, error) {
	if ordinal < 1 || ordinal > MaxOrdinal {
		return 0, fmt.Errorf("%w: ordinal day %d", ErrOutOfRange, ordinal)
	}
	if year < MinPackedYear || year > MaxPackedYear {
		return 0, fmt.Errorf("%w: year %d", ErrOutOfRange, year)
	}
	return int32(year)<<ordinalBits | int32(ordinal), nil
}

// UnpackOrdinalDate splits a packed date. The year shift is arithmetic so
// negative years survive.
func UnpackOrdinalDate(packed int32) (year, ordinal int) {
	return int(packed >> ordinalBits), int(packed & ordinalMask)
}

// PutPackedDate writes a packed date into a date header.
func PutPackedDate(out []byte, packed int32) {
	le.PutUint32(out[0:4], uint32(packed))
}
