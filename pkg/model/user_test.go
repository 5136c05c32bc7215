package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/osuvault/pkg/archive"
)

var userCmpOpts = []cmp.Option{
	cmp.Comparer(func(a, b Date) bool { return a == b }),
	cmpopts.EquateEmpty(),
}

func ptr[T any](v T) *T {
	return &v
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func fullUser(t *testing.T) User {
	jp := NewCountryCode("JP")
	return User{
		ID:                124493,
		Username:          "Cookiezi",
		Country:           &jp,
		Mode:              ModeOsu,
		JoinDate:          time.Date(2011, time.February, 15, 9, 23, 43, 0, time.UTC),
		LastVisit:         ptr(time.Date(2024, time.October, 1, 12, 0, 0, 500, time.UTC)),
		Birthday:          ptr(mustDate(t, "1996-04-17")),
		IsSupporter:       true,
		FollowerCount:     ptr[uint32](400_000),
		PreviousUsernames: &[]Username{"shigetora", "chocomint"},
		Badges: []Badge{
			{
				AwardedAt:   time.Date(2015, time.August, 1, 0, 0, 0, 0, time.UTC),
				Description: "osu! World Cup 2015 Winning Team",
				ImageURL:    "https://assets.ppy.sh/profile-badges/owc2015.png",
			},
		},
		MonthlyPlaycounts: []MonthlyCount{
			{StartDate: mustDate(t, "2011-02-01"), Count: 312},
			{StartDate: mustDate(t, "2011-03-01"), Count: 1045},
		},
	}
}

func TestUser_JapanScenario(t *testing.T) {
	jp := NewCountryCode("JP")

	buf, err := archive.Encode(archive.Optional(CountryCodeArchiver()), &jp)
	require.NoError(t, err)
	code, err := archive.Decode(archive.Optional(CountryCodeArchiver()), buf)
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, "JP", code.String())

	joined := time.Date(2007, time.September, 17, 2, 10, 5, 123_456_789, time.UTC)
	u := User{ID: 2, Username: "peppy", Country: &jp, JoinDate: joined}

	buf, err = ArchiveUser(u)
	require.NoError(t, err)

	got, err := UnarchiveUser(buf)
	require.NoError(t, err)
	require.NotNil(t, got.Country)
	assert.Equal(t, "JP", got.Country.String())
	assert.True(t, joined.Equal(got.JoinDate))
	assert.Nil(t, got.Birthday)
}

func TestUser_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		user User
	}{
		{name: "full", user: fullUser(t)},
		{name: "minimal", user: User{ID: 1, Username: "BanchoBot", JoinDate: time.Unix(0, 0).UTC()}},
		{name: "empty previous usernames", user: User{ID: 3, PreviousUsernames: &[]Username{}, JoinDate: time.Unix(1, 0).UTC()}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf, err := ArchiveUser(tc.user)
			require.NoError(t, err)

			got, err := UnarchiveUser(buf)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.user, got, userCmpOpts...); diff != "" {
				t.Errorf("user mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUser_Deterministic(t *testing.T) {
	u := fullUser(t)

	a, err := ArchiveUser(u)
	require.NoError(t, err)
	b, err := ArchiveUser(u, archive.WithCapacity(16))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUser_EncodeErrors(t *testing.T) {
	u := fullUser(t)
	u.JoinDate = time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := ArchiveUser(u)
	assert.ErrorIs(t, err, archive.ErrOutOfRange)

	u = fullUser(t)
	u.MonthlyPlaycounts = append(u.MonthlyPlaycounts, MonthlyCount{Count: 1})
	_, err = ArchiveUser(u)
	assert.ErrorIs(t, err, archive.ErrOutOfRange, "zero start date has no archived form")

	u = fullUser(t)
	_, err = ArchiveUser(u, archive.WithMaxSize(64))
	assert.ErrorIs(t, err, archive.ErrBufferFull)
}

func TestUser_DecodeCorrupt(t *testing.T) {
	buf, err := ArchiveUser(fullUser(t))
	require.NoError(t, err)

	off, ok := userRecord.Offset("mode")
	require.True(t, ok)
	corrupt := append([]byte(nil), buf...)
	corrupt[len(corrupt)-userRecord.Layout().Size+off] = 9

	_, err = UnarchiveUser(corrupt)
	assert.ErrorIs(t, err, archive.ErrInvalidTag)

	_, err = UnarchiveUser(buf[:userRecord.Layout().Size-1])
	assert.ErrorIs(t, err, archive.ErrCorruptLength)

	for n := 0; n < len(buf); n++ {
		assert.NotPanics(t, func() { _, _ = UnarchiveUser(buf[:n]) }, "truncated to %d bytes", n)
	}
}

func TestViewUser(t *testing.T) {
	u := fullUser(t)
	buf, err := ArchiveUser(u)
	require.NoError(t, err)

	v, err := ViewUser(buf)
	require.NoError(t, err)

	id, err := v.ID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	name, err := v.Username()
	require.NoError(t, err)
	assert.Equal(t, "Cookiezi", name.String())

	country, ok, err := v.Country()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "JP", country.String())

	joined, err := v.JoinDate()
	require.NoError(t, err)
	assert.True(t, u.JoinDate.Equal(joined))

	badges, err := v.BadgeCount()
	require.NoError(t, err)
	assert.Equal(t, 1, badges)

	u.Country = nil
	buf, err = ArchiveUser(u)
	require.NoError(t, err)
	v, err = ViewUser(buf)
	require.NoError(t, err)
	_, ok, err = v.Country()
	require.NoError(t, err)
	assert.False(t, ok)
}

const apiUserJSON = `{
	"id": 2,
	"username": "peppy",
	"country_code": "AU",
	"playmode": "osu",
	"join_date": "2007-08-28T03:09:12+00:00",
	"last_visit": null,
	"is_supporter": true,
	"follower_count": 51234,
	"previous_usernames": [],
	"badges": [
		{"awarded_at": "2019-01-01T00:00:00+00:00", "description": "Creator", "image_url": "https://assets.ppy.sh/creator.png"}
	],
	"monthly_playcounts": [
		{"start_date": "2007-08-01", "count": 3},
		{"start_date": "2007-09-01", "count": 12}
	]
}`

func TestUser_FromAPIJSON(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(apiUserJSON), &u))

	assert.Equal(t, uint32(2), u.ID)
	require.NotNil(t, u.Country)
	assert.Equal(t, "AU", u.Country.String())
	assert.Nil(t, u.LastVisit)
	assert.Nil(t, u.Birthday)
	require.NotNil(t, u.PreviousUsernames)
	assert.Empty(t, *u.PreviousUsernames)
	require.Len(t, u.MonthlyPlaycounts, 2)
	assert.Equal(t, time.September, u.MonthlyPlaycounts[1].StartDate.Month())

	buf, err := ArchiveUser(u)
	require.NoError(t, err)
	got, err := UnarchiveUser(buf)
	require.NoError(t, err)
	if diff := cmp.Diff(u, got, userCmpOpts...); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(got)
	require.NoError(t, err)
	var again User
	require.NoError(t, json.Unmarshal(out, &again))
	if diff := cmp.Diff(u, again, userCmpOpts...); diff != "" {
		t.Errorf("json round trip mismatch (-want +got):\n%s", diff)
	}
}
