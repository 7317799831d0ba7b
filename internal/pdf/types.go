package pdf

// Text extraction modes
const (
	TextModePlain  = "plain"
	TextModeLayout = "layout"
)

// MIME types of produced artifacts
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypeText = "text/plain; charset=utf-8"
	MIMETypePNG  = "image/png"
)

// Artifact is the output of an operation, ready to be offered for download
type Artifact struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Size returns the artifact size in bytes
func (a *Artifact) Size() int64 {
	return int64(len(a.Data))
}

// ImageInfo describes an image extracted from a PDF page
type ImageInfo struct {
	Name       string `json:"name"`
	PageNumber int    `json:"page_number"`
	ObjectNr   int    `json:"object_number"`
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Size       int64  `json:"size"`
	Data       []byte `json:"-"`
}

// Request Types

// ExtractTextRequest represents a request to extract text from selected pages
type ExtractTextRequest struct {
	Pages string `json:"pages"`
	Mode  string `json:"mode"`
}

// ExtractImagesRequest represents a request to extract images from selected pages
type ExtractImagesRequest struct {
	Pages string `json:"pages"`
}

// EncryptRequest represents a request to add or change a password
type EncryptRequest struct {
	Password  string `json:"password"`
	Algorithm string `json:"algorithm"`
}

// RotateRequest represents a request to rotate every page clockwise
type RotateRequest struct {
	Angle int `json:"angle"`
}

// ResizeRequest represents a request to change the paper size and scale content
type ResizeRequest struct {
	PaperSize string  `json:"paper_size"`
	Scale     float64 `json:"scale"`
}

// ReduceRequest represents the size reduction options
type ReduceRequest struct {
	RemoveDuplication bool `json:"remove_duplication"`
	RemoveImages      bool `json:"remove_images"`
	ImageQuality      *int `json:"image_quality,omitempty"` // nil leaves images untouched
	Lossless          bool `json:"lossless"`
}

// Response Types

// ExtractTextResult represents the result of a text extraction
type ExtractTextResult struct {
	Text      string `json:"text"`
	Pages     []int  `json:"pages"` // 1-based, in extraction order
	Mode      string `json:"mode"`
	Truncated bool   `json:"truncated"` // text limit reached before the last selected page
}

// ExtractImagesResult represents the result of an image extraction
type ExtractImagesResult struct {
	Images     []ImageInfo `json:"images"`
	TotalCount int         `json:"total_count"`
}

// ReduceResult represents the result of a size reduction
type ReduceResult struct {
	Artifact     *Artifact `json:"artifact"`
	OriginalSize int64     `json:"original_size"`
	ReducedSize  int64     `json:"reduced_size"`
}

// Reduction returns the size reduction in percent
func (r *ReduceResult) Reduction() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return 100 - (float64(r.ReducedSize)/float64(r.OriginalSize))*100
}

// ValidateFileResult represents the result of a PDF validation operation
type ValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}
