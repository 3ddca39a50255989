package app

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/kk-code-lab/rmill/internal/fs"
)

func entryNames(entries []fs.DirectoryEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// matchPositions returns the positions of names matching query, ascending.
func matchPositions(names []string, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	seen := make([]bool, len(names))
	for _, r := range ranks {
		if r.OriginalIndex >= 0 && r.OriginalIndex < len(names) {
			seen[r.OriginalIndex] = true
		}
	}
	out := make([]int, 0, len(ranks))
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// bestMatch returns the position of the name query most likely means:
// an exact name, then a prefix, then a substring, then the closest fuzzy
// match. It returns -1 when nothing matches.
func bestMatch(names []string, query string) int {
	query = strings.TrimSpace(query)
	if query == "" {
		return -1
	}
	lower := strings.ToLower(query)
	for i, name := range names {
		if strings.EqualFold(name, query) {
			return i
		}
	}
	for i, name := range names {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			return i
		}
	}
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), lower) {
			return i
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return -1
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance || (r.Distance == best.Distance && r.OriginalIndex < best.OriginalIndex) {
			best = r
		}
	}
	return best.OriginalIndex
}

// cycleMatch returns the next (or previous, when backward) match after pos,
// wrapping around, or -1 when there are no matches.
func cycleMatch(matches []int, pos int, backward bool) int {
	if len(matches) == 0 {
		return -1
	}
	if backward {
		for i := len(matches) - 1; i >= 0; i-- {
			if matches[i] < pos {
				return matches[i]
			}
		}
		return matches[len(matches)-1]
	}
	for _, m := range matches {
		if m > pos {
			return m
		}
	}
	return matches[0]
}

// searchSelect selects the best match for query in the center.
func (app *Application) searchSelect(query string) bool {
	shown := app.center.Content().Shown()
	pos := bestMatch(entryNames(shown), query)
	if pos < 0 {
		return false
	}
	app.selectInCenter(shown[pos].Path)
	return true
}

// searchStep moves to the next or previous match of the last search.
func (app *Application) searchStep(backward bool) {
	if app.query == "" {
		app.notify("no search")
		return
	}
	c := app.center.Content()
	shown := c.Shown()
	pos := cycleMatch(matchPositions(entryNames(shown), app.query), c.Position(), backward)
	if pos < 0 {
		app.notify("no match for " + app.query)
		return
	}
	app.selectInCenter(shown[pos].Path)
}
