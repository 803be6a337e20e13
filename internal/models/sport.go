package models

import (
	"strings"
	"time"
)

// Sport identifies a league supported by the evaluator.
type Sport string

const (
	SportNBA  Sport = "NBA"
	SportWNBA Sport = "WNBA"
	SportMLB  Sport = "MLB"
	SportNFL  Sport = "NFL"
)

// AllSports lists every supported sport in a stable order.
var AllSports = []Sport{SportNBA, SportWNBA, SportMLB, SportNFL}

// ParseSport normalises a sport code. The boolean is false for unknown codes.
func ParseSport(s string) (Sport, bool) {
	sp := Sport(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllSports {
		if sp == known {
			return sp, true
		}
	}
	return "", false
}

// PathSegment returns the lower-case code used in provider URLs and cache keys.
func (s Sport) PathSegment() string {
	return strings.ToLower(string(s))
}

// IsWeekly reports whether the sport is scheduled by week instead of by date.
func (s Sport) IsWeekly() bool {
	return s == SportNFL
}

// SeasonFor returns the season key the provider uses for a given date.
func (s Sport) SeasonFor(t time.Time) int {
	switch s {
	case SportNBA:
		// 2024-25 season is keyed 2025.
		if t.Month() >= time.October {
			return t.Year() + 1
		}
		return t.Year()
	case SportNFL:
		season, _ := NFLWeekFor(t)
		return season
	default:
		return t.Year()
	}
}

// NFLWeeksPerSeason is the number of regular season weeks.
const NFLWeeksPerSeason = 18

// NFLWeekFor maps a date onto the (season, week) pair. Week 1 starts the
// Thursday after Labor Day. Dates before kickoff belong to the final week of
// the previous season.
func NFLWeekFor(t time.Time) (int, int) {
	t = t.UTC()
	year := t.Year()
	kickoff := nflKickoff(year)
	if t.Before(kickoff) {
		year--
		kickoff = nflKickoff(year)
	}
	week := int(t.Sub(kickoff).Hours()/(24*7)) + 1
	if week > NFLWeeksPerSeason {
		week = NFLWeeksPerSeason
	}
	return year, week
}

// PreviousNFLWeek steps one week back, crossing into the previous season.
func PreviousNFLWeek(season, week int) (int, int) {
	if week <= 1 {
		return season - 1, NFLWeeksPerSeason
	}
	return season, week - 1
}

func nflKickoff(year int) time.Time {
	d := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 3)
}
