package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/versebench/versebench/internal/verses"
)

// CanonicalVerseRecord is one verse of the canonical corpus.
// Book is the OSIS id ("Gen"); BookIndex is its 1-based canon position.
type CanonicalVerseRecord struct {
	Translation string `json:"translation" parquet:"translation"`
	Book        string `json:"book" parquet:"book"`
	BookIndex   int    `json:"book_index" parquet:"book_index"`
	Chapter     int    `json:"chapter" parquet:"chapter"`
	Verse       int    `json:"verse" parquet:"verse"`
	Text        string `json:"text" parquet:"text"`
}

// resolveBook fills whichever of Book and BookIndex is missing.
func (r *CanonicalVerseRecord) resolveBook() error {
	if r.BookIndex > 0 {
		if r.Book == "" {
			b, ok := verses.BookByIndex(r.BookIndex)
			if !ok {
				return fmt.Errorf("unknown book index %d", r.BookIndex)
			}
			r.Book = b.OSIS
		}
		return nil
	}

	b, ok := verses.LookupBook(r.Book)
	if !ok {
		return fmt.Errorf("unknown book %q", r.Book)
	}
	r.Book = b.OSIS
	r.BookIndex = b.Index
	return nil
}

// VerseID returns the synthetic verse id for the record
func (r *CanonicalVerseRecord) VerseID() int {
	return verses.BuildVerseID(verses.BookID(r.BookIndex), r.Chapter, r.Verse)
}

// Key returns the chapter the record belongs to
func (r *CanonicalVerseRecord) Key() ChapterKey {
	return ChapterKey{Book: r.Book, BookIndex: r.BookIndex, Chapter: r.Chapter}
}

// ChapterKey identifies one chapter of the corpus
type ChapterKey struct {
	Book      string `json:"book" yaml:"book"`
	BookIndex int    `json:"bookIndex" yaml:"bookindex"`
	Chapter   int    `json:"chapter" yaml:"chapter"`
}

func (k ChapterKey) String() string {
	return fmt.Sprintf("%s %d", k.Book, k.Chapter)
}

// Name returns the book's display name, falling back to the OSIS id.
func (k ChapterKey) Name() string {
	if b, ok := verses.BookByIndex(k.BookIndex); ok {
		return b.Name
	}
	return k.Book
}

// ParseChapterKey parses "Gen 1" or "1 Kings 3": a book name or OSIS id
// followed by a chapter number.
func ParseChapterKey(s string) (ChapterKey, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexAny(s, " \t")
	if i < 0 {
		return ChapterKey{}, fmt.Errorf("invalid chapter %q: expected \"<book> <chapter>\"", s)
	}

	chapter, err := strconv.Atoi(s[i+1:])
	if err != nil || chapter <= 0 {
		return ChapterKey{}, fmt.Errorf("invalid chapter number in %q", s)
	}

	b, ok := verses.LookupBook(s[:i])
	if !ok {
		return ChapterKey{}, fmt.Errorf("unknown book %q", strings.TrimSpace(s[:i]))
	}
	if chapter > b.ChapterCount() {
		return ChapterKey{}, fmt.Errorf("%s has %d chapters", b.Name, b.ChapterCount())
	}
	return ChapterKey{Book: b.OSIS, BookIndex: b.Index, Chapter: chapter}, nil
}
