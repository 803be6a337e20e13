package models

import "strings"

var nameReplacer = strings.NewReplacer(".", "", "'", "", "-", " ", "_", " ", ",", " ")

// NormalizeName lower-cases a person or team name and strips punctuation so
// provider and request spellings compare equal.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(nameReplacer.Replace(strings.ToLower(name))), " ")
}

// NameTokens splits a normalised name into tokens.
func NameTokens(name string) []string {
	return strings.Fields(NormalizeName(name))
}
