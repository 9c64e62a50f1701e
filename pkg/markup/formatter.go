// Package markup converts loosely-structured markdown report text into
// Confluence storage-format XHTML.
package markup

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Formatter handles report text to storage-format conversion. Now is
// injectable so tests get a stable banner timestamp.
type Formatter struct {
	Now func() time.Time
}

func NewFormatter() *Formatter {
	return &Formatter{Now: time.Now}
}

var (
	boldRe    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe  = regexp.MustCompile(`\*([^*\n]+)\*`)
	linkRe    = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	orderedRe = regexp.MustCompile(`^\d+\.\s+`)
)

// ToStorageFormat converts a markdown-ish report into storage markup and
// wraps it with the informational banner and the trailing disclaimer.
// Transform order is fixed: escape, bold, italic, then the block pass
// (headings, lists, rules, links inside line content, paragraphs). Later
// rules never re-match output produced by earlier ones.
func (f *Formatter) ToStorageFormat(report, subject, entityType string) string {
	text := escape(report)
	text = boldRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicRe.ReplaceAllString(text, "<em>$1</em>")

	var sb strings.Builder
	sb.WriteString(f.banner(subject, entityType))
	sb.WriteString(renderBlocks(text))
	sb.WriteString(disclaimer)
	return sb.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// inline applies the link rule to line content after block structure has
// been decided.
func inline(s string) string {
	return linkRe.ReplaceAllString(s, `<a href="$2">$1</a>`)
}

func renderBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var sb strings.Builder

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		switch {
		case line == "":
			i++

		case strings.HasPrefix(line, "### "):
			sb.WriteString("<h3>" + inline(line[4:]) + "</h3>")
			i++

		case strings.HasPrefix(line, "## "):
			sb.WriteString("<h2>" + inline(line[3:]) + "</h2>")
			i++

		case strings.HasPrefix(line, "# "):
			sb.WriteString("<h1>" + inline(line[2:]) + "</h1>")
			i++

		case line == "---":
			sb.WriteString("<hr />")
			i++

		case isBullet(line):
			sb.WriteString("<ul>")
			for i < len(lines) {
				l := strings.TrimSpace(lines[i])
				if !isBullet(l) {
					break
				}
				sb.WriteString("<li>" + inline(l[2:]) + "</li>")
				i++
			}
			sb.WriteString("</ul>")

		case orderedRe.MatchString(line):
			sb.WriteString("<ol>")
			for i < len(lines) {
				l := strings.TrimSpace(lines[i])
				if !orderedRe.MatchString(l) {
					break
				}
				sb.WriteString("<li>" + inline(orderedRe.ReplaceAllString(l, "")) + "</li>")
				i++
			}
			sb.WriteString("</ol>")

		default:
			// Plain lines up to the next blank line or block construct
			// form one paragraph.
			var parts []string
			for i < len(lines) {
				l := strings.TrimSpace(lines[i])
				if l == "" || isBlockStart(l) {
					break
				}
				parts = append(parts, l)
				i++
			}
			sb.WriteString("<p>" + inline(strings.Join(parts, " ")) + "</p>")
		}
	}
	return sb.String()
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}

func isBlockStart(line string) bool {
	return strings.HasPrefix(line, "#") || line == "---" || isBullet(line) || orderedRe.MatchString(line)
}

func (f *Formatter) banner(subject, entityType string) string {
	emoji := "\U0001F464" // person
	if entityType == "company" {
		emoji = "\U0001F3E2"
	}
	ts := f.Now().UTC().Format("January 2, 2006 15:04 MST")
	return fmt.Sprintf(
		`<ac:structured-macro ac:name="info"><ac:rich-text-body><p>%s Research report for <strong>%s</strong>. Generated %s.</p></ac:rich-text-body></ac:structured-macro>`,
		emoji, escape(subject), ts,
	)
}

const disclaimer = `<ac:structured-macro ac:name="note"><ac:rich-text-body>` +
	`<p>This page was generated automatically from external sources. Verify key facts before acting on them.</p>` +
	`</ac:rich-text-body></ac:structured-macro>`
