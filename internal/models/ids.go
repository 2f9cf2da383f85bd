package models

import "fmt"

// Service-native identifiers have a fixed length and alphabet, which lets
// them be fished out of pasted text (share links, URIs, raw ids) without
// caring about the surrounding format.
type idShape struct {
	length int
	chars  func(byte) bool
}

func alnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func alnumDashUnderscore(c byte) bool {
	return alnum(c) || c == '_' || c == '-'
}

var idShapes = map[Service]idShape{
	Spotify: {length: 22, chars: alnum},
	YouTube: {length: 11, chars: alnumDashUnderscore},
}

// ExtractServiceIDs scans text for tokens shaped like the given service's
// native identifiers. It splits the text on characters outside the service's
// id alphabet and keeps the runs of exactly the right length, so both bare
// ids and ids embedded in URLs or URIs are found.
func ExtractServiceIDs(s Service, text string) ([]string, error) {
	shape, ok := idShapes[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no extractable id format", ErrInvalidService, s)
	}

	var ids []string
	run := ""
	flush := func() {
		if len(run) == shape.length {
			ids = append(ids, run)
		}
		run = ""
	}
	for i := 0; i < len(text); i++ {
		if shape.chars(text[i]) {
			run += string(text[i])
		} else {
			flush()
		}
	}
	flush()
	return ids, nil
}
