package model

import "time"

// User is the subset of an osu! user profile that osuvault keeps.
type User struct {
	ID                uint32         `json:"id" yaml:"id"`
	Username          Username       `json:"username" yaml:"username"`
	Country           *CountryCode   `json:"country_code,omitempty" yaml:"country_code,omitempty"`
	Mode              GameMode       `json:"playmode" yaml:"playmode"`
	JoinDate          time.Time      `json:"join_date" yaml:"join_date"`
	LastVisit         *time.Time     `json:"last_visit,omitempty" yaml:"last_visit,omitempty"`
	Birthday          *Date          `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	IsSupporter       bool           `json:"is_supporter" yaml:"is_supporter"`
	FollowerCount     *uint32        `json:"follower_count,omitempty" yaml:"follower_count,omitempty"`
	PreviousUsernames *[]Username    `json:"previous_usernames,omitempty" yaml:"previous_usernames,omitempty"`
	Badges            []Badge        `json:"badges,omitempty" yaml:"badges,omitempty"`
	MonthlyPlaycounts []MonthlyCount `json:"monthly_playcounts,omitempty" yaml:"monthly_playcounts,omitempty"`
}

// Badge is a profile badge.
type Badge struct {
	AwardedAt   time.Time `json:"awarded_at" yaml:"awarded_at"`
	Description string    `json:"description" yaml:"description"`
	ImageURL    string    `json:"image_url" yaml:"image_url"`
}

// MonthlyCount is the number of plays in the month starting at StartDate.
type MonthlyCount struct {
	StartDate Date  `json:"start_date" yaml:"start_date"`
	Count     int32 `json:"count" yaml:"count"`
}
