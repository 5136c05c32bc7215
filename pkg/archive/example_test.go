package archive_test

import (
	"fmt"
	"time"

	"github.com/ssargent/osuvault/pkg/archive"
)

func ExampleSequence() {
	modes := archive.Sequence(archive.String())

	buf, err := archive.Encode(modes, []string{"osu", "taiko"})
	if err != nil {
		panic(err)
	}

	got, err := archive.Decode(modes, buf)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%d bytes: %v\n", len(buf), got)
	// Output: 32 bytes: [osu taiko]
}

func ExampleOptional() {
	lastVisit := archive.Optional(archive.Instant())

	buf, err := archive.Encode(lastVisit, nil)
	if err != nil {
		panic(err)
	}
	got, err := archive.Decode(lastVisit, buf)
	fmt.Println(got == nil, err)

	when := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	buf, err = archive.Encode(lastVisit, &when)
	if err != nil {
		panic(err)
	}
	got, err = archive.Decode(lastVisit, buf)
	fmt.Println(got.Format(time.RFC3339), err)
	// Output:
	// true <nil>
	// 2024-03-01T09:00:00Z <nil>
}

func ExamplePackOrdinalDate() {
	packed, err := archive.PackOrdinalDate(2024, 60)
	if err != nil {
		panic(err)
	}
	year, ordinal := archive.UnpackOrdinalDate(packed)
	fmt.Println(packed, year, ordinal)
	// Output: 1036348 2024 60
}
