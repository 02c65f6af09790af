// Package verses parses numbered verses out of model output and reconciles
// them with canonical chapter text.
package verses

import (
	"fmt"
	"strings"
)

// Book is one book of the canon.
type Book struct {
	Index  int    `json:"index"`
	OSIS   string `json:"osis"`
	Name   string `json:"name"`
	Verses []int  `json:"-"`
}

// ID returns the synthetic book id used in verse ids.
func (b Book) ID() int {
	return BookID(b.Index)
}

// ChapterCount returns the number of chapters in the book.
func (b Book) ChapterCount() int {
	return len(b.Verses)
}

// VerseCount returns the number of verses in chapter, or 0 if out of range.
func (b Book) VerseCount(chapter int) int {
	if chapter < 1 || chapter > len(b.Verses) {
		return 0
	}
	return b.Verses[chapter-1]
}

// Books returns the 66 books in canonical order.
func Books() []Book {
	out := make([]Book, len(kjvBooks))
	copy(out, kjvBooks[:])
	return out
}

// BookByIndex returns the book with 1-based index.
func BookByIndex(index int) (Book, bool) {
	if index < 1 || index > len(kjvBooks) {
		return Book{}, false
	}
	return kjvBooks[index-1], true
}

// LookupBook finds a book by OSIS id or name, ignoring case and spaces.
func LookupBook(name string) (Book, bool) {
	key := bookKey(name)
	if key == "" {
		return Book{}, false
	}
	for _, b := range kjvBooks {
		if bookKey(b.OSIS) == key || bookKey(b.Name) == key {
			return b, true
		}
	}
	return Book{}, false
}

func bookKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// Reference is a book/chapter/verse triple.
type Reference struct {
	BookIndex int `json:"bookIndex"`
	Chapter   int `json:"chapter"`
	Verse     int `json:"verse"`
}

func (r Reference) String() string {
	if b, ok := BookByIndex(r.BookIndex); ok {
		return fmt.Sprintf("%s %d:%d", b.OSIS, r.Chapter, r.Verse)
	}
	return fmt.Sprintf("book%d %d:%d", r.BookIndex, r.Chapter, r.Verse)
}

// BookID returns bookIndex*10. The spare digit leaves room for splitting a
// book into volumes.
func BookID(bookIndex int) int {
	return bookIndex * 10
}

// BuildVerseID returns bookID*100000 + chapter*1000 + verse.
func BuildVerseID(bookID, chapter, verse int) int {
	return bookID*100000 + chapter*1000 + verse
}

// ParseVerseID splits a verse id into book id, chapter and verse. Chapters
// above 99 spill into the book id's spare digit, so the book id is rounded
// down to a multiple of ten before the chapter is recovered.
func ParseVerseID(id int) (bookID, chapter, verse int) {
	bookID = id / 100000 / 10 * 10
	rest := id - bookID*100000
	return bookID, rest / 1000, rest % 1000
}

// ReferenceFromID converts a verse id to a Reference.
func ReferenceFromID(id int) Reference {
	bookID, chapter, verse := ParseVerseID(id)
	return Reference{BookIndex: bookID / 10, Chapter: chapter, Verse: verse}
}

// ID returns the verse id for the reference.
func (r Reference) ID() int {
	return BuildVerseID(BookID(r.BookIndex), r.Chapter, r.Verse)
}
