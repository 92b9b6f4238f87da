package web

import "embed"

// StaticFS holds the embedded stylesheet.
//
//go:embed static/*
var StaticFS embed.FS

// helpFS holds the Markdown help snippets shown inside views.
//
//go:embed help/*.md
var helpFS embed.FS

// helpHTML renders the named help snippet, or "" if it is missing.
func helpHTML(name string) string {
	src, err := helpFS.ReadFile("help/" + name + ".md")
	if err != nil {
		return ""
	}
	return RenderMarkdown(string(src))
}
