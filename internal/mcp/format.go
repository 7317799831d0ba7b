package mcp

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/pdf-workdesk/internal/pdf"
)

// maxListedFiles limits the file listing of pdf_server_info
const maxListedFiles = 10

func formatArtifact(a *pdf.Artifact, path string) string {
	return fmt.Sprintf("Wrote %s (%d bytes, %s)\n", path, a.Size(), a.MIMEType)
}

func formatExtractText(doc *pdf.Document, result *pdf.ExtractTextResult) string {
	pages := make([]string, len(result.Pages))
	for i, p := range result.Pages {
		pages[i] = fmt.Sprint(p)
	}

	text := fmt.Sprintf("Text of %s (%s mode)\n", doc.Name, result.Mode)
	text += fmt.Sprintf("Pages: %s of %d\n", strings.Join(pages, ", "), doc.PageCount)
	if result.Truncated {
		text += "Truncated: text limit reached, select fewer pages for the rest\n"
	}
	text += "\nContent:\n"
	text += result.Text
	return text
}

func formatExtractImages(result *pdf.ExtractImagesResult, dir string, written []string) string {
	text := fmt.Sprintf("Total images found: %d\n", result.TotalCount)
	if result.TotalCount == 0 {
		return text
	}

	text += fmt.Sprintf("Saved to: %s\n\nImages:\n", dir)
	for i, img := range result.Images {
		text += fmt.Sprintf("%d. Page %d: %dx%d pixels, Format: %s, Size: %d bytes\n",
			i+1, img.PageNumber, img.Width, img.Height, img.Format, img.Size)
		if i < len(written) {
			text += fmt.Sprintf("   File: %s\n", written[i])
		}
	}
	return text
}

func formatMetadata(doc *pdf.Document, md *pdf.Metadata) string {
	text := fmt.Sprintf("Metadata of %s\n", doc.Name)
	for _, row := range md.Rows() {
		text += fmt.Sprintf("%s: %s\n", row.Key, row.Value)
	}
	if md.Version != "" {
		text += fmt.Sprintf("PDF version: %s\n", md.Version)
	}
	text += fmt.Sprintf("Encrypted: %t\n", md.Encrypted)
	text += fmt.Sprintf("Size: %d bytes\n", md.Size)
	return text
}

func formatValidateFile(result *pdf.ValidateFileResult) string {
	if !result.Valid {
		return fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}
	text := fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	if result.Message != "" {
		text += fmt.Sprintf(" (%s)", result.Message)
	}
	return text
}

func formatReduce(result *pdf.ReduceResult) string {
	return fmt.Sprintf("Reduced from %d to %d bytes (%.1f%% smaller)",
		result.OriginalSize, result.ReducedSize, result.Reduction())
}

func formatServerInfo(info *pdf.ServerInfo) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", info.ServerName, info.Version)
	text += fmt.Sprintf("Directory: %s\n", info.Directory)
	text += fmt.Sprintf("Max File Size: %d MB\n", info.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Page preview: %t\n\n", info.PreviewAvailable)

	if len(info.Files) > 0 {
		text += fmt.Sprintf("Directory Contents (%d PDF files found):\n", len(info.Files))
		for i, file := range info.Files {
			if i >= maxListedFiles {
				text += fmt.Sprintf("   ... and %d more files\n", len(info.Files)-maxListedFiles)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Path, file.Size)
		}
		if info.FilesTruncated {
			text += "   (listing truncated)\n"
		}
		text += "\n"
	} else {
		text += "Directory Contents: No PDF files found\n\n"
	}

	text += "Operations: " + strings.Join(info.Operations, ", ") + "\n"
	text += "Paper sizes: " + strings.Join(info.PaperSizes, ", ") + "\n"

	algorithms := make([]string, len(info.EncryptionAlgorithms))
	for i, a := range info.EncryptionAlgorithms {
		algorithms[i] = a.Name
	}
	text += "Encryption algorithms: " + strings.Join(algorithms, ", ") + "\n"

	return text
}

// resultText returns the text content of a tool result
func resultText(result *mcp.CallToolResult) string {
	var b strings.Builder
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}
