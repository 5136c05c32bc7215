package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Supported years of a Date.
const (
	MinYear = -9999
	MaxYear = 9999
)

// ErrInvalidDate is returned for dates that do not exist or fall outside
// [MinYear, MaxYear].
var ErrInvalidDate = errors.New("invalid date")

// Date is a day in the proleptic Gregorian calendar, kept as a year and a
// 1-based ordinal day. The zero Date is not a valid date.
type Date struct {
	year    int32
	ordinal uint16
}

// IsLeapYear reports whether year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in year.
func DaysIn(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DateFromOrdinal returns the ordinal-th day of year.
func DateFromOrdinal(year, ordinal int) (Date, error) {
	if year < MinYear || year > MaxYear {
		return Date{}, fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	if ordinal < 1 || ordinal > DaysIn(year) {
		return Date{}, fmt.Errorf("%w: day %d of %d", ErrInvalidDate, ordinal, year)
	}
	return Date{year: int32(year), ordinal: uint16(ordinal)}, nil
}

// NewDate returns the date for a calendar year, month and day.
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, fmt.Errorf("%w: %d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return DateFromOrdinal(year, t.YearDay())
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) (Date, error) {
	return DateFromOrdinal(t.Year(), t.YearDay())
}

func (d Date) Year() int {
	return int(d.year)
}

// Ordinal returns the 1-based day of the year.
func (d Date) Ordinal() int {
	return int(d.ordinal)
}

func (d Date) Month() time.Month {
	return d.Time().Month()
}

func (d Date) Day() int {
	return d.Time().Day()
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC at the start of d.
func (d Date) Time() time.Time {
	return time.Date(int(d.year), time.January, int(d.ordinal), 0, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD, with a leading minus sign for negative years.
func (d Date) String() string {
	t := d.Time()
	year := t.Year()
	sign := ""
	if year < 0 {
		sign = "-"
		year = -year
	}
	return fmt.Sprintf("%s%04d-%02d-%02d", sign, year, int(t.Month()), t.Day())
}

// ParseDate parses the format produced by Date.String.
func ParseDate(s string) (Date, error) {
	body, neg := strings.CutPrefix(s, "-")
	parts := strings.Split(body, "-")
	if len(parts) != 3 || len(parts[0]) < 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return Date{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
		}
		nums[i] = n
	}
	if neg {
		nums[0] = -nums[0]
	}
	return NewDate(nums[0], time.Month(nums[1]), nums[2])
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
