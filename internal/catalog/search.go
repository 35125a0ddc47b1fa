package catalog

import "github.com/sahilm/fuzzy"

// Search fuzzy-matches pattern against entry names, best match first.
// An empty pattern returns entries unchanged.
func Search(entries []Entry, pattern string) []Entry {
	if pattern == "" {
		return entries
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	matches := fuzzy.Find(pattern, names)
	found := make([]Entry, 0, len(matches))
	for _, m := range matches {
		found = append(found, entries[m.Index])
	}
	return found
}
