package descriptions

// Tool descriptions with practical examples and use cases

const (
	// Reading tools
	PDFExtractTextDescription = `Extract the text of selected pages from a PDF document.

**When to use:** Need the words of a document, or of a few pages of it, for reading, search or summarising.

**Why it's useful:** Pages can be picked with a page specification like "1-3,7" and the layout mode keeps columns and indentation readable.

**Examples:**
• Read a chapter: "Extract pages 12-20 of handbook.pdf"
• Keep table columns aligned: "Extract page 4 of invoice.pdf in layout mode"
• Whole document: "Extract all text from contract.pdf"

**Common workflows:**
1. Validate → Extract text → Summarise
2. Metadata (page count) → Extract a page range → Quote

**Best practices:** Use "all" for the whole document; page numbers start at 1, ranges must be ascending.`

	PDFExtractImagesDescription = `Extract the embedded images of selected pages and save them as files.

**When to use:** Need the photos, charts or scans contained in a PDF.

**Why it's useful:** Images are written in their stored format (JPEG, PNG, TIFF) without re-encoding; identical images are saved once.

**Examples:**
• "Save all images of brochure.pdf into brochure_images/"
• "Extract the scans on pages 2-5 of claim.pdf"

**Common workflows:**
1. Extract text → empty result on a scanned page → Extract images

**Best practices:** Choose an output directory per document to keep file names apart.`

	PDFMetadataDescription = `Show the metadata of a PDF: page count, title, author, subject, keywords, creator, producer, dates and trapping.

**When to use:** Before processing a document, to learn its size and provenance.

**Why it's useful:** PDF dates like D:20240102030405+05'30' are shown readably as 2024-01-02 03:04:05 +05'30'.

**Examples:**
• "How many pages does report.pdf have?"
• "Who created scan-0042.pdf and when?"

**Best practices:** Pass the password for protected documents.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before attempting to read or process any PDF file, especially in automated workflows or when handling user uploads.

**Why it's useful:** Identifies missing, empty, oversized and corrupted files early. Password protected files are reported as valid but locked.

**Examples:**
• Batch processing safety: "Validate all PDFs in /invoices/ before bulk text extraction"
• Upload verification: "Check user-uploaded contract.pdf is valid before processing"

**Best practices:** Always run this first in automated workflows.`

	// Editing tools
	PDFEncryptDescription = `Protect a PDF with a password, or change its password.

**When to use:** A document must only open for people who know the password.

**Why it's useful:** Supports RC4-40, RC4-128, AES-128, AES-256-R5 (default) and AES-256.

**Examples:**
• "Protect salaries.pdf with the password 'q3-2024'"
• "Change the password of locked.pdf (current 'old') to 'new' with AES-128"

**Best practices:** The output is written as protected_<name> next to the input unless an output path is given.`

	PDFDecryptDescription = `Remove the password from a protected PDF.

**When to use:** A document you have the password for must be shared or processed without it.

**Examples:**
• "Remove the password 'secret' from statement.pdf"

**Best practices:** The output is written as unprotected_<name>. Documents without a password are rejected.`

	PDFRotateDescription = `Rotate every page of a PDF clockwise by 90, 180 or 270 degrees.

**When to use:** Scans came out sideways or upside down.

**Examples:**
• "Rotate scan.pdf by 90 degrees"

**Best practices:** The output (<name>_rotated_<angle>.pdf) has no password.`

	PDFResizeDescription = `Change the paper size of a PDF and optionally scale its content.

**When to use:** A document must be printed on a different paper size, or its content should be enlarged or shrunk.

**Why it's useful:** Any paper size known to pdfcpu (A4, Letter, Legal, A3, ...) can be used; content scale ranges from 0.1 to 2.0.

**Examples:**
• "Resize flyer.pdf to Letter"
• "Fit poster.pdf onto A3 at 0.8x"

**Best practices:** pdf_server_info lists all paper sizes.`

	PDFMergeDescription = `Append a second PDF to the end of a first one.

**When to use:** Two documents belong together, e.g. a letter and its attachment.

**Examples:**
• "Merge cover.pdf and body.pdf"

**Best practices:** Pass a password per document when needed; the merged output has no password.`

	PDFConvertWordDescription = `Convert a PDF into a Word (DOCX) document.

**When to use:** The content of a PDF has to be edited in a word processor.

**Why it's useful:** Headings, lists and tables detected in the PDF become Word headings, list items and tabbed rows. Each page starts a new Word page.

**Examples:**
• "Convert proposal.pdf to Word"

**Best practices:** Scanned documents have no text to convert; extract their images instead.`

	PDFReduceDescription = `Reduce the file size of a PDF.

**When to use:** A document is too large to mail or upload.

**Why it's useful:** Combines duplicate removal, image removal, image quality reduction (1-100) and lossless stream compression, and reports the saving.

**Examples:**
• "Shrink brochure.pdf with image quality 60"
• "Remove all images from draft.pdf"

**Common workflows:**
1. Lossless first → still too large → add image quality reduction

**Best practices:** Image quality is ignored when images are removed.`

	PDFServerInfoDescription = `Get server information, available tools, PDF files in the directory, paper sizes and encryption algorithms.

**When to use:** At the start of a session, to discover what can be done and which files are available.

**Best practices:** Paths given to the other tools are relative to the directory shown here.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_extract_text":   PDFExtractTextDescription,
	"pdf_extract_images": PDFExtractImagesDescription,
	"pdf_metadata":       PDFMetadataDescription,
	"pdf_validate_file":  PDFValidateFileDescription,
	"pdf_encrypt":        PDFEncryptDescription,
	"pdf_decrypt":        PDFDecryptDescription,
	"pdf_rotate":         PDFRotateDescription,
	"pdf_resize":         PDFResizeDescription,
	"pdf_merge":          PDFMergeDescription,
	"pdf_convert_word":   PDFConvertWordDescription,
	"pdf_reduce":         PDFReduceDescription,
	"pdf_server_info":    PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}
