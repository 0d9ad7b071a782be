// Package markdown implements the content ingestion half of the build
// pipeline: filesystem discovery of posts and tabs, front-matter extraction,
// and Markdown to HTML rendering with syntax highlighting.
package markdown
