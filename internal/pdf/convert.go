package pdf

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/tabula"
	tabulareader "github.com/tsawler/tabula/reader"

	"github.com/a3tai/pdf-workdesk/internal/pdf/docx"
	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// Converter turns PDFs into other document formats
type Converter struct {
	logger *logrus.Logger
}

// NewConverter creates a new document converter
func NewConverter(logger *logrus.Logger) *Converter {
	return &Converter{logger: logger}
}

// ConvertToWord renders doc as a Word document with one section per page.
// Page structure (headings, lists, tables) comes from tabula's markdown
// rendering of each page.
func (c *Converter) ConvertToWord(doc *Document) (*Artifact, error) {
	path, cleanup, err := stageTempFile(doc.Plain())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tr, err := tabulareader.Open(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to open PDF for conversion", err).WithFile(doc.Name)
	}
	defer tr.Close()

	out := &docx.Document{Title: doc.Stem()}
	for page := 1; page <= doc.PageCount; page++ {
		md, warnings, err := tabula.FromReader(tr).Pages(page).ToMarkdown()
		if err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed,
				fmt.Sprintf("failed to convert page %d", page), err).WithFile(doc.Name).WithPage(page)
		}
		if len(warnings) > 0 {
			c.logger.WithFields(logrus.Fields{"page": page, "warnings": len(warnings)}).Debug("conversion warnings")
		}
		appendMarkdown(out.AddSection(), md)
	}

	data, err := out.Bytes()
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConversionFailed, "failed to write Word document", err).WithFile(doc.Name)
	}

	c.logger.WithFields(logrus.Fields{"document": doc.Name, "pages": doc.PageCount}).Info("converted to Word")

	return &Artifact{
		Name:     doc.Stem() + ".docx",
		MIMEType: MIMETypeDOCX,
		Data:     data,
	}, nil
}

// appendMarkdown maps markdown blocks onto document paragraphs. Consecutive
// text lines form one paragraph; blank lines end it.
func appendMarkdown(section *docx.Section, md string) {
	var para []string
	var code []string
	inFence := false

	flush := func() {
		if len(para) > 0 {
			section.Add(docx.StyleNormal, strings.Join(para, " "))
			para = nil
		}
	}

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				section.Add(docx.StyleCode, strings.Join(code, "\n"))
				code = nil
			} else {
				flush()
			}
			inFence = !inFence
			continue
		}
		if inFence {
			code = append(code, line)
			continue
		}

		switch {
		case trimmed == "", trimmed == "---":
			flush()
		case strings.HasPrefix(trimmed, "#"):
			flush()
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			section.Add(docx.HeadingStyle(level), strings.TrimSpace(trimmed[level:]))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			flush()
			section.Add(docx.StyleList, strings.TrimSpace(trimmed[2:]))
		case strings.HasPrefix(trimmed, "|"):
			flush()
			if isTableRule(trimmed) {
				continue
			}
			section.Add(docx.StyleCode, tableRow(trimmed))
		default:
			para = append(para, trimmed)
		}
	}

	if inFence && len(code) > 0 {
		section.Add(docx.StyleCode, strings.Join(code, "\n"))
	}
	flush()
}

// isTableRule reports whether line is a markdown table separator row
func isTableRule(line string) bool {
	return strings.Trim(line, "|-: ") == ""
}

// tableRow renders a markdown table row as tab separated cells
func tableRow(line string) string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return strings.Join(cells, "\t")
}
