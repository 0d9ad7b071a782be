package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// auditedTags lists the verbatim containers that must be balanced across the
// whole document. An unclosed one swallows every page section rendered after
// it, which is why strict builds reject them outright.
var auditedTags = map[string]struct{}{
	"style":    {},
	"script":   {},
	"form":     {},
	"textarea": {},
	"pre":      {},
}

// AuditRawHTML inspects the raw HTML a Markdown document would pass through
// to the rendered page and reports the first unterminated tag it finds.
// Only real raw-HTML nodes are audited; angle brackets inside code fences or
// inline code spans never trigger a failure.
func AuditRawHTML(source []byte) error {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	auditor := &htmlAuditor{source: source}
	walkErr := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.HTMLBlock:
			if err := auditor.scanBlock(node); err != nil {
				return ast.WalkStop, err
			}
		case *ast.RawHTML:
			if err := auditor.scanRaw(node); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkContinue, nil
	})
	if walkErr != nil {
		return walkErr
	}

	return auditor.unbalanced()
}

type htmlAuditor struct {
	source []byte
	// opens records the byte offsets of audited tags still awaiting a close,
	// keyed by tag name.
	opens map[string][]int
}

func (a *htmlAuditor) scanBlock(node *ast.HTMLBlock) error {
	var buf bytes.Buffer
	start := -1
	for i := 0; i < node.Lines().Len(); i++ {
		segment := node.Lines().At(i)
		if start < 0 {
			start = segment.Start
		}
		buf.Write(segment.Value(a.source))
	}
	if node.HasClosure() {
		segment := node.ClosureLine
		if start < 0 {
			start = segment.Start
		}
		buf.Write(segment.Value(a.source))
	}
	if start < 0 {
		return nil
	}
	return a.scanChunk(buf.Bytes(), start)
}

func (a *htmlAuditor) scanRaw(node *ast.RawHTML) error {
	var buf bytes.Buffer
	start := -1
	for i := 0; i < node.Segments.Len(); i++ {
		segment := node.Segments.At(i)
		if start < 0 {
			start = segment.Start
		}
		buf.Write(segment.Value(a.source))
	}
	if start < 0 {
		return nil
	}
	return a.scanChunk(buf.Bytes(), start)
}

// scanChunk walks one contiguous run of raw HTML. A tag that opens inside the
// chunk must find its '>' inside the same chunk; audited container tags are
// additionally balanced across chunks because their closing tag may arrive in
// a later block.
func (a *htmlAuditor) scanChunk(chunk []byte, offset int) error {
	i := 0
	for i < len(chunk) {
		lt := bytes.IndexByte(chunk[i:], '<')
		if lt < 0 {
			return nil
		}
		i += lt

		rest := chunk[i:]
		if len(rest) < 2 {
			return nil
		}

		closing := rest[1] == '/'
		nameStart := 1
		if closing {
			nameStart = 2
		}
		if nameStart >= len(rest) || !isTagNameByte(rest[nameStart]) {
			// Comments, declarations, and bare angle brackets are not tags.
			i++
			continue
		}

		gt := bytes.IndexByte(rest, '>')
		if gt < 0 {
			return &UnterminatedTagError{Tag: tagName(rest[nameStart:]), Offset: offset + i}
		}

		name := tagName(rest[nameStart:])
		if _, audited := auditedTags[name]; audited {
			selfClosed := gt > 0 && rest[gt-1] == '/'
			switch {
			case closing:
				a.popOpen(name)
			case !selfClosed:
				a.pushOpen(name, offset+i)
			}
		}

		i += gt + 1
	}
	return nil
}

func (a *htmlAuditor) pushOpen(name string, offset int) {
	if a.opens == nil {
		a.opens = make(map[string][]int)
	}
	a.opens[name] = append(a.opens[name], offset)
}

func (a *htmlAuditor) popOpen(name string) {
	stack := a.opens[name]
	if len(stack) == 0 {
		return
	}
	a.opens[name] = stack[:len(stack)-1]
}

// unbalanced reports the earliest audited tag left open, or nil when every
// container closed.
func (a *htmlAuditor) unbalanced() error {
	var (
		firstTag    string
		firstOffset = -1
	)
	for name, stack := range a.opens {
		for _, offset := range stack {
			if firstOffset < 0 || offset < firstOffset {
				firstTag = name
				firstOffset = offset
			}
		}
	}
	if firstOffset < 0 {
		return nil
	}
	return &UnterminatedTagError{Tag: firstTag, Offset: firstOffset}
}

func tagName(rest []byte) string {
	end := 0
	for end < len(rest) && isTagNameByte(rest[end]) {
		end++
	}
	return string(bytes.ToLower(rest[:end]))
}

func isTagNameByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '-':
		return true
	}
	return false
}
