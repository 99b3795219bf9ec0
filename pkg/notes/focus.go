// Package notes renders strength-focus tags into free-text notes and back.
// The text form looks like "[focus: legs, core] felt strong" and only exists for
// older records that stored tags inside the note.
package notes

import (
	"strings"
)

const focusPrefix = "[focus:"

// NormalizeFocus lowercases, trims and de-duplicates tags, keeping first-seen order.
func NormalizeFocus(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		tag = strings.Trim(tag, "[],")
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// EncodeFocus prefixes note with the focus annotation. With no tags the note is returned as is.
func EncodeFocus(tags []string, note string) string {
	tags = NormalizeFocus(tags)
	if len(tags) == 0 {
		return note
	}
	prefix := focusPrefix + " " + strings.Join(tags, ", ") + "]"
	note = strings.TrimSpace(note)
	if note == "" {
		return prefix
	}
	return prefix + " " + note
}

// DecodeFocus splits a leading focus annotation off note.
// Notes without a well-formed annotation come back unchanged with nil tags.
func DecodeFocus(note string) ([]string, string) {
	trimmed := strings.TrimLeft(note, " \t")
	if len(trimmed) < len(focusPrefix) || !strings.EqualFold(trimmed[:len(focusPrefix)], focusPrefix) {
		return nil, note
	}
	end := strings.Index(trimmed, "]")
	if end < 0 {
		return nil, note
	}
	tags := NormalizeFocus(strings.Split(trimmed[len(focusPrefix):end], ","))
	return tags, strings.TrimSpace(trimmed[end+1:])
}

// HasFocus reports whether note carries a focus annotation.
func HasFocus(note string) bool {
	tags, _ := DecodeFocus(note)
	return len(tags) > 0
}
