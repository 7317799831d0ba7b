// Package docx builds Word documents from styled paragraphs, one section per
// source page.
package docx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx"
)

// Style is a paragraph style of the generated document
type Style string

// Paragraph styles
const (
	StyleNormal   Style = "Normal"
	StyleHeading1 Style = "Heading1"
	StyleHeading2 Style = "Heading2"
	StyleHeading3 Style = "Heading3"
	StyleList     Style = "ListBullet"
	StyleCode     Style = "Code"
)

// Word template styles the list and code paragraphs map to
const (
	wordListStyle = "List Bullet"
	wordCodeStyle = "Macro Text"
)

// HeadingStyle returns the heading style for a markdown heading level,
// clamped to three levels
func HeadingStyle(level int) Style {
	switch {
	case level <= 1:
		return StyleHeading1
	case level == 2:
		return StyleHeading2
	default:
		return StyleHeading3
	}
}

func headingLevel(s Style) (uint, bool) {
	switch s {
	case StyleHeading1:
		return 1, true
	case StyleHeading2:
		return 2, true
	case StyleHeading3:
		return 3, true
	}
	return 0, false
}

// Paragraph is a styled block of text. Newlines inside code paragraphs
// become separate lines.
type Paragraph struct {
	Style Style
	Text  string
}

// Section holds the paragraphs of one source page
type Section struct {
	Paragraphs []Paragraph
}

// Document is the content of a DOCX file
type Document struct {
	Title    string
	Sections []Section
}

// AddSection appends a section and returns it for filling
func (d *Document) AddSection() *Section {
	d.Sections = append(d.Sections, Section{})
	return &d.Sections[len(d.Sections)-1]
}

// Add appends a paragraph to the section
func (s *Section) Add(style Style, text string) {
	s.Paragraphs = append(s.Paragraphs, Paragraph{Style: style, Text: text})
}

// Bytes renders the document as a DOCX package
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders the document as a DOCX package to w. Sections are separated
// by page breaks.
func (d *Document) Write(w io.Writer) error {
	out, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create docx document: %w", err)
	}

	if title := sanitize(d.Title); title != "" {
		if _, err := out.AddHeading(title, 0); err != nil {
			return fmt.Errorf("failed to add title: %w", err)
		}
	}

	for i, section := range d.Sections {
		if i > 0 {
			out.AddPageBreak()
		}
		for _, p := range section.Paragraphs {
			if err := addParagraph(out, p); err != nil {
				return err
			}
		}
	}

	if err := out.Write(w); err != nil {
		return fmt.Errorf("failed to write docx package: %w", err)
	}
	return nil
}

func addParagraph(out *godocx.RootDoc, p Paragraph) error {
	text := sanitize(p.Text)

	if level, ok := headingLevel(p.Style); ok {
		if _, err := out.AddHeading(text, level); err != nil {
			return fmt.Errorf("failed to add heading %q: %w", text, err)
		}
		return nil
	}

	switch p.Style {
	case StyleList:
		out.AddParagraph(text).Style(wordListStyle)
	case StyleCode:
		for _, line := range strings.Split(text, "\n") {
			out.AddParagraph(line).Style(wordCodeStyle)
		}
	default:
		out.AddParagraph(text)
	}
	return nil
}

// sanitize drops control characters XML 1.0 cannot represent
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' || r >= 0x20 {
			return r
		}
		return -1
	}, s)
}
