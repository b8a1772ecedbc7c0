// Package mesh resolves NEEM entity names to description files the
// simulator can load: URDF models for robots and environments, mesh
// files for task participants. Resolution walks local data directories
// first, then the episode's recorded mesh path, then an online data
// repository, and finally a table of generic shapes.
package mesh

import (
	"strings"
	"unicode"
)

// nilName marks participants that carry no physical object.
const nilName = "NIL"

// NameCandidates derives file-name search candidates from a participant
// IRI. The instance suffix (trailing digits, separator runs, the last
// underscore part of long names) is stripped, and a camel-case variant
// is added for underscored names so that both "jeroen_cup" and
// "JeroenCup" style file names match.
func NameCandidates(participant string) []string {
	name := participant
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}

	name = trimTrailingDigits(name)
	name = strings.Trim(name, " _-")

	parts := strings.Split(name, "_")
	if len(parts) > 2 {
		name = strings.Join(parts[:len(parts)-1], "_")
	}
	name = trimTrailingDigits(name)

	if name == "" {
		return nil
	}

	candidates := []string{name}
	if strings.Contains(name, "_") {
		if unicode.IsLower(rune(name[0])) {
			candidates = append(candidates, camelCase(name))
		} else {
			candidates = append(candidates, strings.ReplaceAll(name, "_", ""))
		}
	}

	return candidates
}

// IsNilParticipant reports whether the participant stands for "no
// object", such as the NIL filler some episodes record.
func IsNilParticipant(participant string) bool {
	for _, c := range NameCandidates(participant) {
		if c == nilName {
			return true
		}
	}
	return false
}

func trimTrailingDigits(s string) string {
	for len(s) > 0 && unicode.IsDigit(rune(s[len(s)-1])) {
		s = s[:len(s)-1]
	}
	return s
}

func camelCase(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	return b.String()
}
