package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileInfo describes a PDF file found in the working directory
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ServerInfo describes the capabilities of a running workdesk
type ServerInfo struct {
	ServerName           string                `json:"server_name"`
	Version              string                `json:"version"`
	Directory            string                `json:"directory"`
	MaxFileSize          int64                 `json:"max_file_size"`
	PreviewAvailable     bool                  `json:"preview_available"`
	Operations           []string              `json:"operations"`
	PaperSizes           []string              `json:"paper_sizes"`
	EncryptionAlgorithms []EncryptionAlgorithm `json:"encryption_algorithms"`
	Files                []FileInfo            `json:"files"`
	FilesTruncated       bool                  `json:"files_truncated,omitempty"`
}

// Operations lists the document operations a workdesk offers
var Operations = []string{
	"extract_text", "extract_images", "metadata", "preview",
	"encrypt", "decrypt", "rotate", "resize", "merge",
	"convert_word", "reduce",
}

// scanResult is a cached directory listing
type scanResult struct {
	files     []FileInfo
	truncated bool
	scanned   time.Time
}

// DirectoryScanner lists PDF files below a directory with depth, count and
// time limits, caching the listing for a while
type DirectoryScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
	ttl       time.Duration

	mu    sync.Mutex
	cache map[string]scanResult
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner(maxDepth, fileLimit int, timeLimit, ttl time.Duration) *DirectoryScanner {
	return &DirectoryScanner{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
		ttl:       ttl,
		cache:     make(map[string]scanResult),
	}
}

// Scan returns the PDF files below root and whether the listing was cut short
func (s *DirectoryScanner) Scan(ctx context.Context, root string) ([]FileInfo, bool, error) {
	s.mu.Lock()
	if cached, ok := s.cache[root]; ok && time.Since(cached.scanned) <= s.ttl {
		s.mu.Unlock()
		return cached.files, cached.truncated, nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeLimit)
	defer cancel()

	files := []FileInfo{}
	truncated := false
	err := s.walk(ctx, root, 0, map[string]bool{}, &files, &truncated)
	if err != nil {
		if ctx.Err() == nil {
			return nil, false, err
		}
		truncated = true
	}

	s.mu.Lock()
	s.cache[root] = scanResult{files: files, truncated: truncated, scanned: time.Now()}
	s.mu.Unlock()

	return files, truncated, nil
}

func (s *DirectoryScanner) walk(ctx context.Context, dir string, depth int, visited map[string]bool, files *[]FileInfo, truncated *bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth >= s.maxDepth {
		return nil
	}

	// Skip cycles through symlinked directories
	realPath, err := filepath.EvalSymlinks(dir)
	if err != nil || visited[realPath] {
		return nil
	}
	visited[realPath] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		if *truncated {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") || entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := s.walk(ctx, path, depth+1, visited, files, truncated); err != nil {
				return err
			}
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		*files = append(*files, FileInfo{
			Path:         path,
			Name:         entry.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		if len(*files) >= s.fileLimit {
			*truncated = true
			return nil
		}
	}
	return nil
}

// ServerInfo describes this workdesk and lists the PDFs in directory
func (s *Service) ServerInfo(ctx context.Context, scanner *DirectoryScanner, serverName, version, directory string) (*ServerInfo, error) {
	files, truncated, err := scanner.Scan(ctx, directory)
	if err != nil {
		return nil, err
	}

	return &ServerInfo{
		ServerName:           serverName,
		Version:              version,
		Directory:            directory,
		MaxFileSize:          s.MaxFileSize(),
		PreviewAvailable:     s.PreviewAvailable(),
		Operations:           Operations,
		PaperSizes:           PaperSizes(),
		EncryptionAlgorithms: EncryptionAlgorithms,
		Files:                files,
		FilesTruncated:       truncated,
	}, nil
}
