package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/8bitbanana/music-converter/internal/models"
)

// containsWord reports whether needle appears in haystack as a contiguous
// substring whose neighboring characters (if any) are non-alphabetic. The
// boundary check rejects partial-word false positives such as "win" inside
// "ElectroSwing". Both strings must already be lowercased.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	offset := 0
	for {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)

		startOK := start == 0
		if !startOK {
			r, _ := utf8.DecodeLastRuneInString(haystack[:start])
			startOK = !unicode.IsLetter(r)
		}
		endOK := end == len(haystack)
		if !endOK {
			r, _ := utf8.DecodeRuneInString(haystack[end:])
			endOK = !unicode.IsLetter(r)
		}
		if startOK && endOK {
			return true
		}
		offset = start + 1
	}
}

// MatchTracks scans candidates for titles contained in videoTitle
// (case-insensitive, word-boundary substring containment). When several
// candidates match, the longest matching title wins: a more specific match
// beats a coincidentally-matching shorter one.
func MatchTracks(videoTitle string, candidates []*models.Track) *models.Track {
	haystack := strings.ToLower(videoTitle)

	var matched *models.Track
	maxLen := 0
	for _, track := range candidates {
		title := strings.ToLower(track.Title)
		if !containsWord(haystack, title) {
			continue
		}
		if len(track.Title) > maxLen {
			maxLen = len(track.Title)
			matched = track
		}
	}
	return matched
}
