package mcp

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-workdesk/internal/pdf"
	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
	"github.com/a3tai/pdf-workdesk/internal/pdf/security"
)

// openDocument resolves the path argument named key and loads the document
// with the password argument named passwordKey
func (s *Server) openDocument(request mcp.CallToolRequest, key, passwordKey string) (string, *pdf.Document, error) {
	raw, err := request.RequireString(key)
	if err != nil {
		return "", nil, err
	}
	path, err := s.paths.Resolve(raw)
	if err != nil {
		return "", nil, err
	}
	doc, err := s.pdfService.LoadFile(path, request.GetString(passwordKey, ""))
	if err != nil {
		return "", nil, err
	}
	return path, doc, nil
}

// writeArtifact writes a next to input, or to the output argument
func (s *Server) writeArtifact(request mcp.CallToolRequest, input string, a *pdf.Artifact) (string, error) {
	target, err := s.paths.OutputPath(input, request.GetString("output", ""), a.Name)
	if err != nil {
		return "", err
	}
	if err := security.EnsureDir(target); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, a.Data, 0o644); err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"path": target,
		"size": len(a.Data),
	}).Info("artifact written")
	return target, nil
}

// artifactResult runs op on the document at path and writes its artifact
func (s *Server) artifactResult(request mcp.CallToolRequest, op func(doc *pdf.Document) (*pdf.Artifact, error)) *mcp.CallToolResult {
	path, doc, err := s.openDocument(request, "path", "password")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	artifact, err := op(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	target, err := s.writeArtifact(request, path, artifact)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(formatArtifact(artifact, target))
}

func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, doc, err := s.openDocument(request, "path", "password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractText(doc, pdf.ExtractTextRequest{
		Pages: request.GetString("pages", "all"),
		Mode:  request.GetString("mode", pdf.TextModePlain),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatExtractText(doc, result)), nil
}

func (s *Server) handleExtractImages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, doc, err := s.openDocument(request, "path", "password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractImages(doc, pdf.ExtractImagesRequest{
		Pages: request.GetString("pages", "all"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dir, err := s.paths.OutputPath(path, request.GetString("output", ""), doc.Stem()+"_images")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	written := make([]string, 0, len(result.Images))
	for _, img := range result.Images {
		target, err := s.imageTarget(dir, img.Name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := security.EnsureDir(target); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := os.WriteFile(target, img.Data, 0o644); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		written = append(written, target)
	}

	return mcp.NewToolResultText(formatExtractImages(result, dir, written)), nil
}

// imageTarget places an extracted image directly inside dir. Names come
// from the document, so the result is checked against the configured
// directory as well.
func (s *Server) imageTarget(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	if filepath.Dir(target) != filepath.Clean(dir) || !s.paths.Contains(target) {
		return "", pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument, "image name %q leaves the output directory", name)
	}
	return target, nil
}

func (s *Server) handleMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, doc, err := s.openDocument(request, "path", "password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	md, err := s.pdfService.Metadata(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMetadata(doc, md)), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.paths.Resolve(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatValidateFile(result)), nil
}

func (s *Server) handleEncrypt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	newPassword, err := request.RequireString("new_password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.artifactResult(request, func(doc *pdf.Document) (*pdf.Artifact, error) {
		return s.pdfService.Encrypt(doc, pdf.EncryptRequest{
			Password:  newPassword,
			Algorithm: request.GetString("algorithm", pdf.DefaultEncryptionAlgorithm),
		})
	}), nil
}

func (s *Server) handleDecrypt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := request.RequireString("password"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.artifactResult(request, s.pdfService.Decrypt), nil
}

func (s *Server) handleRotate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	angle, err := request.RequireFloat("angle")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.artifactResult(request, func(doc *pdf.Document) (*pdf.Artifact, error) {
		return s.pdfService.Rotate(doc, pdf.RotateRequest{Angle: int(angle)})
	}), nil
}

func (s *Server) handleResize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.artifactResult(request, func(doc *pdf.Document) (*pdf.Artifact, error) {
		return s.pdfService.Resize(doc, pdf.ResizeRequest{
			PaperSize: request.GetString("paper_size", pdf.DefaultPaperSize),
			Scale:     request.GetFloat("scale", 1),
		})
	}), nil
}

func (s *Server) handleMerge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, second, err := s.openDocument(request, "second_path", "second_password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.artifactResult(request, func(doc *pdf.Document) (*pdf.Artifact, error) {
		return s.pdfService.Merge(doc, second)
	}), nil
}

func (s *Server) handleConvertWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.artifactResult(request, s.pdfService.ConvertToWord), nil
}

func (s *Server) handleReduce(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.ReduceRequest{
		RemoveDuplication: request.GetBool("remove_duplication", false),
		RemoveImages:      request.GetBool("remove_images", false),
		Lossless:          request.GetBool("lossless", false),
	}
	if _, ok := request.GetArguments()["image_quality"]; ok {
		quality := int(request.GetFloat("image_quality", pdf.MaxImageQuality))
		req.ImageQuality = &quality
	}

	var result *pdf.ReduceResult
	toolResult := s.artifactResult(request, func(doc *pdf.Document) (*pdf.Artifact, error) {
		var err error
		result, err = s.pdfService.Reduce(doc, req)
		if err != nil {
			return nil, err
		}
		return result.Artifact, nil
	})
	if toolResult.IsError || result == nil {
		return toolResult, nil
	}

	text := formatReduce(result) + "\n" + resultText(toolResult)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.pdfService.ServerInfo(ctx, s.scanner, s.config.ServerName, s.config.Version, s.paths.Root())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfo(info)), nil
}
