package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-workdesk/internal/config"
	"github.com/a3tai/pdf-workdesk/internal/descriptions"
	"github.com/a3tai/pdf-workdesk/internal/pdf"
	"github.com/a3tai/pdf-workdesk/internal/pdf/security"
)

// Directory listing limits for pdf_server_info
const (
	scanMaxDepth  = 3
	scanFileLimit = 200
	scanTimeLimit = 5 * time.Second
	scanCacheTTL  = 30 * time.Second
)

// Server exposes the workdesk operations as MCP tools over files in the
// configured directory
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	paths      *security.PathValidator
	scanner    *pdf.DirectoryScanner
	mcpServer  *server.MCPServer
	logger     *logrus.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *logrus.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if pdfService == nil {
		return nil, errors.New("pdfService cannot be nil")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	paths, err := security.NewPathValidator(cfg.PDFDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		paths:      paths,
		scanner:    pdf.NewDirectoryScanner(scanMaxDepth, scanFileLimit, scanTimeLimit, scanCacheTTL),
		mcpServer:  mcpServer,
		logger:     logger,
	}

	s.registerTools()

	return s, nil
}

func pathArg() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the PDF file, relative to the configured directory or absolute within it"),
	)
}

func passwordArg() mcp.ToolOption {
	return mcp.WithString("password",
		mcp.Description("Password of the PDF, if it is protected"),
	)
}

func outputArg() mcp.ToolOption {
	return mcp.WithString("output",
		mcp.Description("Where to write the result (defaults to a file next to the input)"),
	)
}

func pagesArg() mcp.ToolOption {
	return mcp.WithString("pages",
		mcp.Description(`Pages to use, e.g. "1-3,5" or "all" (default)`),
		mcp.DefaultString("all"),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	tools := []struct {
		tool    mcp.Tool
		handler server.ToolHandlerFunc
	}{
		{mcp.NewTool("pdf_extract_text",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_extract_text")),
			pathArg(), passwordArg(), pagesArg(),
			mcp.WithString("mode",
				mcp.Description("Extraction mode"),
				mcp.Enum(pdf.TextModePlain, pdf.TextModeLayout),
				mcp.DefaultString(pdf.TextModePlain),
			),
		), s.handleExtractText},
		{mcp.NewTool("pdf_extract_images",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_extract_images")),
			pathArg(), passwordArg(), pagesArg(),
			mcp.WithString("output",
				mcp.Description("Directory for the images (defaults to <name>_images next to the input)"),
			),
		), s.handleExtractImages},
		{mcp.NewTool("pdf_metadata",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_metadata")),
			pathArg(), passwordArg(),
		), s.handleMetadata},
		{mcp.NewTool("pdf_validate_file",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
			pathArg(),
		), s.handleValidateFile},
		{mcp.NewTool("pdf_encrypt",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_encrypt")),
			pathArg(), passwordArg(), outputArg(),
			mcp.WithString("new_password",
				mcp.Required(),
				mcp.Description("Password to protect the output with"),
			),
			mcp.WithString("algorithm",
				mcp.Description("Encryption algorithm"),
				mcp.Enum(encryptionAlgorithmNames()...),
				mcp.DefaultString(pdf.DefaultEncryptionAlgorithm),
			),
		), s.handleEncrypt},
		{mcp.NewTool("pdf_decrypt",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_decrypt")),
			pathArg(), outputArg(),
			mcp.WithString("password",
				mcp.Required(),
				mcp.Description("Current password of the PDF"),
			),
		), s.handleDecrypt},
		{mcp.NewTool("pdf_rotate",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_rotate")),
			pathArg(), passwordArg(), outputArg(),
			mcp.WithNumber("angle",
				mcp.Required(),
				mcp.Description("Clockwise rotation: 0, 90, 180 or 270"),
			),
		), s.handleRotate},
		{mcp.NewTool("pdf_resize",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_resize")),
			pathArg(), passwordArg(), outputArg(),
			mcp.WithString("paper_size",
				mcp.Description("Target paper size, e.g. A4 or Letter"),
				mcp.DefaultString(pdf.DefaultPaperSize),
			),
			mcp.WithNumber("scale",
				mcp.Description("Content scale from 0.1 to 2.0"),
				mcp.DefaultNumber(1),
			),
		), s.handleResize},
		{mcp.NewTool("pdf_merge",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_merge")),
			pathArg(), passwordArg(), outputArg(),
			mcp.WithString("second_path",
				mcp.Required(),
				mcp.Description("Path to the PDF appended after the first"),
			),
			mcp.WithString("second_password",
				mcp.Description("Password of the second PDF, if it is protected"),
			),
		), s.handleMerge},
		{mcp.NewTool("pdf_convert_word",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_convert_word")),
			pathArg(), passwordArg(), outputArg(),
		), s.handleConvertWord},
		{mcp.NewTool("pdf_reduce",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_reduce")),
			pathArg(), passwordArg(), outputArg(),
			mcp.WithBoolean("remove_duplication", mcp.Description("Remove duplicate objects and optimize")),
			mcp.WithBoolean("remove_images", mcp.Description("Blank out all images")),
			mcp.WithNumber("image_quality", mcp.Description("Re-encode images at this JPEG quality (1-100)")),
			mcp.WithBoolean("lossless", mcp.Description("Apply lossless stream compression")),
		), s.handleReduce},
		{mcp.NewTool("pdf_server_info",
			mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
		), s.handleServerInfo},
	}

	for _, t := range tools {
		s.mcpServer.AddTool(t.tool, t.handler)
	}
}

func encryptionAlgorithmNames() []string {
	names := make([]string, len(pdf.EncryptionAlgorithms))
	for i, a := range pdf.EncryptionAlgorithms {
		names[i] = a.Name
	}
	return names
}

// Run serves MCP over stdin and stdout until ctx is cancelled or stdin closes
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.WithField("directory", s.paths.Root()).Debug("starting MCP server on stdio")

	errWriter := s.logger.WriterLevel(logrus.ErrorLevel)
	defer errWriter.Close()

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(errWriter, "", 0))

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
