package providers

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt asks for verbatim recitation in the line format the
// verse parser handles best.
const DefaultSystemPrompt = "You recite scripture verbatim. Output only the requested text, " +
	"one verse per line, each line starting with the verse number followed by a space. " +
	"Do not add headings, commentary or notes."

// BuildChapterPrompt builds the user prompt for reciting one chapter
func BuildChapterPrompt(bookName string, chapter int, translation string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recite %s chapter %d", bookName, chapter)
	if t := strings.TrimSpace(translation); t != "" {
		fmt.Fprintf(&b, " from the %s", t)
	}
	b.WriteString(" in full, word for word.\n")
	b.WriteString("Put each verse on its own line, prefixed by its verse number, e.g.\n")
	b.WriteString("1 <text of verse 1>\n2 <text of verse 2>")
	return b.String()
}
