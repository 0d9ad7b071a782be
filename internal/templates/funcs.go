package templates

import (
	"strings"
	"time"

	htmltemplate "html/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// helperFuncs builds the function map shared by every layout. The casing
// helper builds its caser per call because cases.Caser carries state and the
// engine renders from multiple goroutines.
func helperFuncs(lang string) htmltemplate.FuncMap {
	langTag := language.Make(lang)

	return htmltemplate.FuncMap{
		"safe": func(s string) htmltemplate.HTML {
			return htmltemplate.HTML(s)
		},
		"formatDate": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
		"dateISO": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"dateLong": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"titlecase": func(s string) string {
			return cases.Title(langTag).String(s)
		},
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
		"joinPath": func(parts ...string) string {
			cleaned := make([]string, 0, len(parts))
			for _, part := range parts {
				part = strings.Trim(strings.TrimSpace(part), "/")
				if part == "" {
					continue
				}
				cleaned = append(cleaned, part)
			}
			return "/" + strings.Join(cleaned, "/")
		},
	}
}
