package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pders01/ellux/internal/storage"
)

// Engine scores a user's favorites in memory. It needs no index and is used
// when no index path is configured.
type Engine struct {
	favs Lister
}

func NewEngine(favs Lister) *Engine {
	return &Engine{favs: favs}
}

// Search ranks the user's favorites against query.
func (e *Engine) Search(userID, query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 || userID == "" {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	results := []*Result{}
	for i, fav := range e.favs.List(userID) {
		if r := scoreFavorite(fav, terms); r != nil {
			r.Index = i
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func scoreFavorite(fav storage.FavoriteArticle, terms []string) *Result {
	var matches []Match
	var total float64

	if s := scoreField(fav.Title, terms, 4.0); s > 0 {
		matches = append(matches, Match{Field: "title", Text: fav.Title, Weight: s})
		total += s
	}
	if s := scoreField(fav.Abstract, terms, 2.0); s > 0 {
		matches = append(matches, Match{Field: "abstract", Text: truncate(fav.Abstract, 150), Weight: s})
		total += s
	}
	if s := scoreField(fav.Section, terms, 1.0); s > 0 {
		matches = append(matches, Match{Field: "section", Text: fav.Section, Weight: s})
		total += s
	}
	if s := scoreField(fav.URL, terms, 0.5); s > 0 {
		matches = append(matches, Match{Field: "url", Text: fav.URL, Weight: s})
		total += s
	}

	if total == 0 {
		return nil
	}
	return &Result{Favorite: fav, Score: total, Matches: matches}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matched++
		}
		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matched++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matched++
			case strings.Contains(word, term):
				score += 0.5
				matched++
			}
		}
	}

	if len(terms) > 1 && matched > 1 {
		score *= 1.0 + float64(matched)/float64(len(terms))
	}

	tf := float64(matched) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit, dropping single characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if term := current.String(); len([]rune(term)) > 1 {
		terms = append(terms, term)
	}
	return terms
}

// truncate limits text length with ellipsis
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}
