package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/aicb-dev/aicb/internal/index"
	"github.com/aicb-dev/aicb/internal/model"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorOper    = "\033[1;32m" // bold green
	colorExpert  = "\033[1;35m" // bold magenta
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	HitSeq  int    // message seq to highlight, -1 for none
	Context int    // messages before/after hit to show, <0 = all
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	terms := strings.Fields(query)
	var filtered []string
	for _, t := range terms {
		if !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return text
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into lines fitting maxWidth visible
// columns, skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

func roleStyle(r model.Role) (color, label string) {
	switch r {
	case model.RoleUser:
		return colorUser, "USER"
	case model.RoleOperator:
		return colorOper, "OPER"
	case model.RoleExpert:
		return colorExpert, "EXPT"
	default:
		return colorDim, strings.ToUpper(string(r))
	}
}

// Conversation renders a stored conversation as ANSI text and returns the
// content, the 0-based line number of the hit message header (-1 if no
// hit), and any error.
func Conversation(db *index.DB, id string, opts Options) (string, int, error) {
	conv, err := db.ConversationByID(id)
	if err != nil {
		return "", -1, fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return "", -1, fmt.Errorf("conversation not found: %s", id)
	}
	out, hit := render(conv, opts)
	return out, hit, nil
}

// Render renders an in-memory conversation.
func Render(conv *model.Conversation, opts Options) string {
	out, _ := render(conv, opts)
	return out
}

func render(conv *model.Conversation, opts Options) (string, int) {
	total := len(conv.Messages)
	if total == 0 {
		return header(conv) + "(empty conversation)\n", -1
	}

	// Context window around the hit, whole conversation otherwise.
	start, end := 0, total
	hitIdx := -1
	if opts.HitSeq >= 0 && opts.HitSeq < total && opts.Context > 0 {
		hitIdx = opts.HitSeq
		start = hitIdx - opts.Context
		if start < 0 {
			start = 0
		}
		end = hitIdx + opts.Context + 1
		if end > total {
			end = total
		}
	} else if opts.HitSeq >= 0 && opts.HitSeq < total {
		hitIdx = opts.HitSeq
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + "--------------------------------------------------" + colorReset

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(strings.TrimSuffix(header(conv), "\n"))

	if start > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, start, colorReset))
	}

	for i := start; i < end; i++ {
		m := conv.Messages[i]
		isHit := i == hitIdx

		if i > start {
			writeLine(separator)
		}
		if isHit {
			hitLine = lineCount
		}

		roleColor, roleLabel := roleStyle(m.Role)
		ts := m.Timestamp.Format("15:04")
		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, roleLabel, ts, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", roleColor, roleLabel, colorReset, colorDim, ts, colorReset))
		}

		text := highlightKeywords(m.Content, opts.Query)
		text = indentLines(text, "  ")
		for _, tl := range strings.Split(text, "\n") {
			writeLine(tl)
		}
		writeLine("")
	}

	if end < total {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, total-end, colorReset))
	}

	return b.String(), hitLine
}

func header(conv *model.Conversation) string {
	dur := ""
	if len(conv.Messages) >= 2 {
		dur = fmt.Sprintf(" %.0f min", conv.Duration().Minutes())
	}
	return fmt.Sprintf("%s--- %s [%s] %s %s%s ---%s\n",
		colorDim,
		conv.ID,
		conv.Topic,
		conv.Metadata.Source,
		conv.Metadata.Timestamp.Format("02.01.2006 15:04"),
		dur,
		colorReset)
}
