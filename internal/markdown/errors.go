package markdown

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrontMatter marks a document whose metadata block exists
	// but cannot be decoded, or omits the required title.
	ErrMalformedFrontMatter = errors.New("markdown: malformed front matter")
	// ErrTitleRequired marks a present front-matter block with no title key.
	ErrTitleRequired = errors.New("markdown: front matter title is required")
	// ErrBodyRequired marks a document with no body content after the
	// metadata block.
	ErrBodyRequired = errors.New("markdown: document body is required")
	// ErrInvalidPostFilename marks a post file whose name does not start
	// with a YYYY-MM-DD date, so no dated permalink can be derived.
	ErrInvalidPostFilename = errors.New("markdown: post filename must start with a YYYY-MM-DD date")
	// ErrUnterminatedHTML marks raw HTML the strict audit refuses to pass
	// through.
	ErrUnterminatedHTML = errors.New("markdown: unterminated raw html")
)

// FrontMatterError reports an unusable metadata block for a single document.
// The wrapped error retains the decoder's line context.
type FrontMatterError struct {
	Path string
	Err  error
}

func (e *FrontMatterError) Error() string {
	return fmt.Sprintf("markdown: malformed front matter in %s: %v", e.Path, e.Err)
}

func (e *FrontMatterError) Unwrap() []error {
	return []error{ErrMalformedFrontMatter, e.Err}
}

// UnterminatedTagError reports raw HTML that opens a tag or verbatim
// container without ever closing it.
type UnterminatedTagError struct {
	Tag    string
	Offset int
}

func (e *UnterminatedTagError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("markdown: unterminated raw html tag at offset %d", e.Offset)
	}
	return fmt.Sprintf("markdown: unterminated raw html <%s> at offset %d", e.Tag, e.Offset)
}

func (e *UnterminatedTagError) Unwrap() error {
	return ErrUnterminatedHTML
}
