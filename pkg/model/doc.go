// Package model defines the osu! user values that osuvault archives and the
// archivers that map them onto the archive format.
//
// The types decode from the JSON the osu! API returns. CountryCode and
// Username are text identifiers stored verbatim; Date is a proleptic
// Gregorian calendar date stored as a packed ordinal. UserArchiver composes
// them, together with the generic Sequence and Optional adapters, into a
// single record.
package model
