// Package prompts holds the scoring and firewall prompt templates that peers are
// asked to complete, together with the canned answers used when peers are mocked.
package prompts

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{[a-z_]+\}`)

// Template is a prompt text with named {placeholder} slots.
type Template struct {
	name         string
	template     string
	mockResponse string
	pattern      *regexp.Regexp
}

func newTemplate(name, template, mockResponse string) *Template {
	var b strings.Builder
	b.WriteString(`^`)
	last := 0
	for _, loc := range placeholderRe.FindAllStringIndex(template, -1) {
		b.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		b.WriteString(`(?s:.*)`)
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(template[last:]))
	b.WriteString(`$`)

	return &Template{
		name:         name,
		template:     template,
		mockResponse: mockResponse,
		pattern:      regexp.MustCompile(b.String()),
	}
}

// Name returns the template identifier.
func (t *Template) Name() string {
	return t.name
}

// Text fills the placeholders in order of appearance. Missing values leave
// the placeholder untouched; extra values are ignored.
func (t *Template) Text(values ...string) string {
	i := 0
	return placeholderRe.ReplaceAllStringFunc(t.template, func(p string) string {
		if i >= len(values) {
			return p
		}
		v := values[i]
		i++
		return v
	})
}

// MatchesTemplate reports whether input could have been produced by Text.
func (t *Template) MatchesTemplate(input string) bool {
	return t.pattern.MatchString(input)
}

// MockResponse is the canned completion a mocked peer returns for this template.
func (t *Template) MockResponse() string {
	return t.mockResponse
}

// NewFirewallPrompt screens a message for prompt injection.
func NewFirewallPrompt() *Template {
	return newTemplate("firewall", firewallTemplate, "<Response>Safe</Response>")
}

// NewFollowupPrompt scores a generated follow-up question.
func NewFollowupPrompt() *Template {
	return newTemplate("followup", followupScoringTemplate, "7</Score>")
}

// NewAnswerPrompt scores an answer to a follow-up question.
func NewAnswerPrompt() *Template {
	return newTemplate("answer", answerScoringTemplate, "8</Score>")
}
