package model

import (
	"fmt"
	"time"

	"github.com/ssargent/osuvault/pkg/archive"
)

// CountryCodeArchiver archives a CountryCode as a plain archived string.
func CountryCodeArchiver() archive.Adapter[CountryCode, archive.StringResolver] {
	return archive.Text(CountryCode.String, NewCountryCode)
}

// UsernameArchiver archives a Username as a plain archived string.
func UsernameArchiver() archive.Adapter[Username, archive.StringResolver] {
	return archive.Text(Username.String, NewUsername)
}

// GameModeArchiver archives a GameMode as one byte.
func GameModeArchiver() archive.Adapter[GameMode, archive.Unit] {
	return archive.Enum(GameMode.Valid)
}

type dateArchiver struct{}

// DateArchiver archives a Date as a packed ordinal date: a 4-byte
// little-endian int32 holding (year << 9) | ordinal.
func DateArchiver() archive.Adapter[Date, archive.Unit] {
	return dateArchiver{}
}

func (dateArchiver) Layout() archive.Layout {
	return archive.DateLayout()
}

func (dateArchiver) Serialize(_ *archive.Serializer, d Date) (archive.Unit, error) {
	if _, err := archive.PackOrdinalDate(d.Year(), d.Ordinal()); err != nil {
		return archive.Unit{}, err
	}
	if _, err := DateFromOrdinal(d.Year(), d.Ordinal()); err != nil {
		return archive.Unit{}, fmt.Errorf("%w: %v", archive.ErrOutOfRange, err)
	}
	return archive.Unit{}, nil
}

func (dateArchiver) Resolve(d Date, _ archive.Pos, _ archive.Unit, out []byte) {
	packed, _ := archive.PackOrdinalDate(d.Year(), d.Ordinal())
	archive.PutPackedDate(out, packed)
}

func (dateArchiver) Deserialize(v archive.View) (Date, error) {
	packed, err := v.Int32()
	if err != nil {
		return Date{}, err
	}
	year, ordinal := archive.UnpackOrdinalDate(packed)
	d, err := DateFromOrdinal(year, ordinal)
	if err != nil {
		return Date{}, archive.NewDecodeError(archive.OutOfRange, v.Pos(), "packed date %#08x is day %d of year %d", uint32(packed), ordinal, year)
	}
	return d, nil
}

var (
	badgeRecord = archive.NewRecord(
		archive.FieldOf("awarded_at", func(b *Badge) *time.Time { return &b.AwardedAt }, archive.Instant()),
		archive.FieldOf("description", func(b *Badge) *string { return &b.Description }, archive.String()),
		archive.FieldOf("image_url", func(b *Badge) *string { return &b.ImageURL }, archive.String()),
	)

	monthlyCountRecord = archive.NewRecord(
		archive.FieldOf("start_date", func(m *MonthlyCount) *Date { return &m.StartDate }, DateArchiver()),
		archive.FieldOf("count", func(m *MonthlyCount) *int32 { return &m.Count }, archive.Int32()),
	)

	userRecord = archive.NewRecord(
		archive.FieldOf("id", func(u *User) *uint32 { return &u.ID }, archive.Uint32()),
		archive.FieldOf("username", func(u *User) *Username { return &u.Username }, UsernameArchiver()),
		archive.FieldOf("country", func(u *User) **CountryCode { return &u.Country }, archive.Optional(CountryCodeArchiver())),
		archive.FieldOf("mode", func(u *User) *GameMode { return &u.Mode }, GameModeArchiver()),
		archive.FieldOf("join_date", func(u *User) *time.Time { return &u.JoinDate }, archive.Instant()),
		archive.FieldOf("last_visit", func(u *User) **time.Time { return &u.LastVisit }, archive.Optional(archive.Instant())),
		archive.FieldOf("birthday", func(u *User) **Date { return &u.Birthday }, archive.Optional(DateArchiver())),
		archive.FieldOf("is_supporter", func(u *User) *bool { return &u.IsSupporter }, archive.Bool()),
		archive.FieldOf("follower_count", func(u *User) **uint32 { return &u.FollowerCount }, archive.Optional(archive.Uint32())),
		archive.FieldOf("previous_usernames", func(u *User) **[]Username { return &u.PreviousUsernames }, archive.Optional(archive.Sequence(UsernameArchiver()))),
		archive.FieldOf("badges", func(u *User) *[]Badge { return &u.Badges }, archive.Sequence(BadgeArchiver())),
		archive.FieldOf("monthly_playcounts", func(u *User) *[]MonthlyCount { return &u.MonthlyPlaycounts }, archive.Sequence(MonthlyCountArchiver())),
	)
)

// BadgeArchiver archives a Badge as a record.
func BadgeArchiver() archive.Adapter[Badge, archive.RecordResolver] {
	return badgeRecord
}

// MonthlyCountArchiver archives a MonthlyCount as a record.
func MonthlyCountArchiver() archive.Adapter[MonthlyCount, archive.RecordResolver] {
	return monthlyCountRecord
}

// UserArchiver archives a User as a record.
func UserArchiver() archive.Adapter[User, archive.RecordResolver] {
	return userRecord
}

// ArchiveUser encodes u into a new archive buffer.
func ArchiveUser(u User, opts ...archive.Option) ([]byte, error) {
	return archive.Encode(UserArchiver(), u, opts...)
}

// UnarchiveUser decodes a buffer produced by ArchiveUser.
func UnarchiveUser(buf []byte) (User, error) {
	return archive.Decode(UserArchiver(), buf)
}

// ArchivedUser reads fields of an archived User in place, without decoding
// the whole record.
type ArchivedUser struct {
	root archive.View
}

// ViewUser returns an in-place reader over the user archived in buf.
func ViewUser(buf []byte) (ArchivedUser, error) {
	root, err := archive.Root(buf, userRecord.Layout())
	if err != nil {
		return ArchivedUser{}, err
	}
	return ArchivedUser{root: root}, nil
}

func (u ArchivedUser) field(name string) archive.View {
	off, ok := userRecord.Offset(name)
	if !ok {
		panic("model: unknown user field " + name)
	}
	return u.root.At(off)
}

func (u ArchivedUser) ID() (uint32, error) {
	return u.field("id").Uint32()
}

// Username returns the archived username without copying it.
func (u ArchivedUser) Username() (archive.StringView, error) {
	return archive.NewStringView(u.field("username"))
}

// Country returns the archived country code, if one is present.
func (u ArchivedUser) Country() (archive.StringView, bool, error) {
	ov, err := archive.NewOptionView(u.field("country"), archive.StringLayout())
	if err != nil {
		return archive.StringView{}, false, err
	}
	payload, ok := ov.Value()
	if !ok {
		return archive.StringView{}, false, nil
	}
	sv, err := archive.NewStringView(payload)
	if err != nil {
		return archive.StringView{}, false, err
	}
	return sv, true, nil
}

func (u ArchivedUser) JoinDate() (time.Time, error) {
	return archive.Instant().Deserialize(u.field("join_date"))
}

// BadgeCount returns the number of archived badges.
func (u ArchivedUser) BadgeCount() (int, error) {
	sv, err := archive.NewSequenceView(u.field("badges"), badgeRecord.Layout())
	if err != nil {
		return 0, err
	}
	return sv.Len(), nil
}
