package dataset

import (
	"sort"
	"strings"

	"github.com/versebench/versebench/internal/transform"
	"github.com/versebench/versebench/internal/utils"
	"github.com/versebench/versebench/internal/verses"
)

// Chapters returns the distinct chapters of records in corpus order.
func Chapters(records []CanonicalVerseRecord) []ChapterKey {
	seen := make(map[ChapterKey]bool)
	var keys []ChapterKey
	for i := range records {
		k := records[i].Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// GroupByChapter splits records by chapter, each group sorted by verse number.
func GroupByChapter(records []CanonicalVerseRecord) map[ChapterKey][]CanonicalVerseRecord {
	groups := make(map[ChapterKey][]CanonicalVerseRecord)
	for _, r := range records {
		k := r.Key()
		groups[k] = append(groups[k], r)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].Verse < g[j].Verse })
	}
	return groups
}

// Prepare normalizes each record with the canonical pipeline and hashes the
// result, producing the refs the verse mapper consumes.
func Prepare(records []CanonicalVerseRecord, pipeline *transform.Pipeline) []verses.CanonicalVerseRef {
	refs := make([]verses.CanonicalVerseRef, 0, len(records))
	for i := range records {
		processed := pipeline.Normalize(records[i].Text)
		refs = append(refs, verses.CanonicalVerseRef{
			VerseID:       records[i].VerseID(),
			VerseNumber:   records[i].Verse,
			TextProcessed: processed,
			HashProcessed: utils.SHA256Hex(processed),
		})
	}
	return refs
}

// ChapterText joins the processed verse texts of a chapter with single spaces.
func ChapterText(refs []verses.CanonicalVerseRef) string {
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.TextProcessed != "" {
			parts = append(parts, r.TextProcessed)
		}
	}
	return strings.Join(parts, " ")
}
