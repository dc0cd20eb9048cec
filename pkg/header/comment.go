package header

import "strings"

// CommentStyle describes one comment syntax.
// Close is empty for line comments.
type CommentStyle struct {
	Name  string
	Open  string
	Close string
}

var (
	CStyleBlock = CommentStyle{Name: "c-block", Open: "/*", Close: "*/"}
	HTMLBlock   = CommentStyle{Name: "html", Open: "<!--", Close: "-->"}
	MLBlock     = CommentStyle{Name: "ml", Open: "(*", Close: "*)"}
	SlashLine   = CommentStyle{Name: "slash", Open: "//"}
	HashLine    = CommentStyle{Name: "hash", Open: "#"}
	DashLine    = CommentStyle{Name: "dash", Open: "--"}
	SemiLine    = CommentStyle{Name: "semicolon", Open: ";"}
)

// DefaultCommentStyles returns the comment syntaxes recognized by default.
// Block styles come first so that "/*" is never read as a line comment.
func DefaultCommentStyles() []CommentStyle {
	return []CommentStyle{CStyleBlock, HTMLBlock, MLBlock, SlashLine, HashLine, DashLine, SemiLine}
}

// unwrap returns the text enclosed by the comment delimiters of line.
// line must already be trimmed. A block comment must span the whole line and
// may not contain a second closing delimiter.
func (s CommentStyle) unwrap(line string) (string, bool) {
	if s.Open == "" || !strings.HasPrefix(line, s.Open) {
		return "", false
	}
	if s.Close == "" {
		return line[len(s.Open):], true
	}
	if len(line) < len(s.Open)+len(s.Close) || !strings.HasSuffix(line, s.Close) {
		return "", false
	}
	inner := line[len(s.Open) : len(line)-len(s.Close)]
	if strings.Contains(inner, s.Close) {
		return "", false
	}
	return inner, true
}
