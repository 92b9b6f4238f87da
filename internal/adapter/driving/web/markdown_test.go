package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**bold text**")
	assert.Contains(t, result, "<strong>bold text</strong>")
}

func TestRenderMarkdown_InlineCode(t *testing.T) {
	result := RenderMarkdown("set `PASSPANEL_SECRET_KEY`")
	assert.Contains(t, result, "<code>PASSPANEL_SECRET_KEY</code>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_GFMStrikethrough(t *testing.T) {
	result := RenderMarkdown("~~deleted~~")
	assert.Contains(t, result, "<del>deleted</del>")
}

func TestHelpHTML(t *testing.T) {
	assert.Contains(t, helpHTML(viewHome), "<strong>Fetch credentials</strong>")
	assert.Contains(t, helpHTML(viewGenerate), "<em>Add Account</em>")
	assert.Equal(t, "", helpHTML("missing"))
}
