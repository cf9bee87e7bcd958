package services

import "strings"

// pickTrack selects the catalog result to play. A result whose name equals
// the recognized title and whose artist list contains the recognized artist
// (both case-insensitive) wins; otherwise the first result is used.
func pickTrack(items []spotifyTrack, title, artist string) *spotifyTrack {
	for i := range items {
		t := &items[i]
		if t.Name == "" || len(t.Artists) == 0 {
			continue
		}
		if !strings.EqualFold(t.Name, title) {
			continue
		}
		for _, a := range t.Artists {
			if strings.EqualFold(a.Name, artist) {
				return t
			}
		}
	}
	return &items[0]
}
