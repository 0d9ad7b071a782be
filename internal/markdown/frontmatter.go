package markdown

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/pagemill/pagemill/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured front matter, the body
// without delimiters, and whether a metadata block was present at all. A
// missing block is not an error: every field defaults and the caller decides
// how to backfill the title.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, bool, error) {
	if !hasFrontMatterBlock(source) {
		return envelopeToFrontMatter(frontMatterEnvelope{}), source, false, nil
	}

	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, true, err
	}

	return envelopeToFrontMatter(meta), body, true, nil
}

// hasFrontMatterBlock reports whether the file opens with a metadata fence.
// Both delimiter styles the decoder accepts are recognized; the fence must
// sit on the first line, matching the convention the content corpus uses.
func hasFrontMatterBlock(source []byte) bool {
	trimmed := bytes.TrimPrefix(source, []byte("\xef\xbb\xbf"))
	line := trimmed
	if idx := bytes.IndexByte(trimmed, '\n'); idx >= 0 {
		line = trimmed[:idx]
	}
	line = bytes.TrimRight(line, "\r")
	return bytes.Equal(line, []byte("---")) || bytes.Equal(line, []byte("+++"))
}

type frontMatterEnvelope struct {
	Title      string         `yaml:"title"`
	Author     string         `yaml:"author"`
	Pin        bool           `yaml:"pin"`
	Categories []string       `yaml:"categories"`
	Tags       []string       `yaml:"tags"`
	Order      *int           `yaml:"order"`
	Icon       string         `yaml:"icon"`
	Custom     map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	categories := normalizeTerms(env.Categories)
	tags := normalizeTerms(env.Tags)

	raw := make(map[string]any, len(env.Custom)+7)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Author != "" {
		raw["author"] = env.Author
	}
	raw["pin"] = env.Pin
	if len(categories) > 0 {
		raw["categories"] = append([]string(nil), categories...)
	}
	if len(tags) > 0 {
		raw["tags"] = append([]string(nil), tags...)
	}
	if env.Order != nil {
		raw["order"] = *env.Order
	}
	if env.Icon != "" {
		raw["icon"] = env.Icon
	}

	var order *int
	if env.Order != nil {
		value := *env.Order
		order = &value
	}

	return interfaces.FrontMatter{
		Title:      strings.TrimSpace(env.Title),
		Author:     strings.TrimSpace(env.Author),
		Pin:        env.Pin,
		Categories: categories,
		Tags:       tags,
		Order:      order,
		Icon:       strings.TrimSpace(env.Icon),
		Custom:     cloneMap(env.Custom),
		Raw:        raw,
	}
}

// normalizeTerms trims taxonomy terms, drops empties, and de-duplicates
// preserving first occurrence so authored order stays stable.
func normalizeTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
