package matcher

import "strings"

// SearchTerms generates the candidate query sequence for catalog artist
// search, most specific first: the full artist name, then every non-empty
// proper subset of the artist's words, then the same expansion over the
// title's words. Catalog search is sensitive to extra or missing words
// (subtitles, "feat." clauses), so partial combinations trade extra
// request volume for recall.
func SearchTerms(artist, title string) []string {
	terms := []string{artist}
	terms = append(terms, subsetPhrases(strings.Fields(artist))...)
	terms = append(terms, subsetPhrases(strings.Fields(title))...)
	return terms
}

// subsetPhrases returns every non-empty, non-full, order-preserving word
// combination joined by spaces, smallest combinations first.
func subsetPhrases(words []string) []string {
	var phrases []string
	for r := 1; r < len(words); r++ {
		combinations(words, r, func(combo []string) {
			phrases = append(phrases, strings.Join(combo, " "))
		})
	}
	return phrases
}

// combinations emits every r-element combination of words, preserving
// order.
func combinations(words []string, r int, emit func([]string)) {
	combo := make([]string, r)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == r {
			emit(combo)
			return
		}
		for i := start; i <= len(words)-(r-depth); i++ {
			combo[depth] = words[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
}
