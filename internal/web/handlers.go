package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-workdesk/internal/pdf"
	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
	"github.com/a3tai/pdf-workdesk/internal/session"
)

// multipartOverhead is allowed on top of the file size limit for form fields
const multipartOverhead = 1 << 20

type documentResponse struct {
	Name      string `json:"name"`
	PageCount int    `json:"page_count"`
	Encrypted bool   `json:"encrypted"`
	Version   string `json:"version,omitempty"`
	Size      int64  `json:"size"`
}

type artifactResponse struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

type uploadRequest struct {
	URL      string `json:"url"`
	Password string `json:"password"`
}

func newDocumentResponse(doc *pdf.Document) documentResponse {
	return documentResponse{
		Name:      doc.Name,
		PageCount: doc.PageCount,
		Encrypted: doc.Encrypted,
		Version:   doc.Version,
		Size:      doc.Size(),
	}
}

func artifactURL(sessionID, name string) string {
	return "/api/sessions/" + sessionID + "/artifacts/" + url.PathEscape(name)
}

func newArtifactResponse(sessionID string, a *pdf.Artifact) artifactResponse {
	return artifactResponse{
		Name:     a.Name,
		MIMEType: a.MIMEType,
		Size:     a.Size(),
		URL:      artifactURL(sessionID, a.Name),
	}
}

// session looks up the session named in the path and reports 404 when it is
// unknown or expired
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		s.writeError(w, pdferrors.New(pdferrors.ErrorTypeNotFound, "session not found"))
		return nil, false
	}
	return sess, true
}

type documentHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document)

// withDocument runs h for sessions that hold a document
func (s *Server) withDocument(h documentHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		doc := sess.Document()
		if doc == nil {
			s.writeError(w, pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "upload a document first"))
			return
		}
		h(w, r, sess, doc)
	}
}

// storeArtifact keeps a in the session and describes it
func (s *Server) storeArtifact(w http.ResponseWriter, sess *session.Session, a *pdf.Artifact) {
	sess.PutArtifact(a)
	s.writeJSON(w, http.StatusOK, newArtifactResponse(sess.ID, a))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions":    s.sessions.Len(),
		"preview":     s.service.PreviewAvailable(),
		"fetch_cache": s.fetcher.Stats(),
	})
}

func (s *Server) handlePaperSizes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"paper_sizes": pdf.PaperSizes(),
		"default":     pdf.DefaultPaperSize,
	})
}

func (s *Server) handleEncryptionAlgorithms(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"algorithms": pdf.EncryptionAlgorithms,
		"default":    pdf.DefaultEncryptionAlgorithm,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.writeError(w, pdferrors.Wrap(pdferrors.ErrorTypeLimitExceeded, "cannot create session", err))
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":         sess.ID,
		"created_at": sess.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(r.PathValue("id")) {
		s.writeError(w, pdferrors.New(pdferrors.ErrorTypeNotFound, "session not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload accepts a multipart file upload or a JSON URL reference and
// stores the document as the main or the merge document
func (s *Server) handleUpload(merge bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}

		data, name, password, err := s.readUpload(w, r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		doc, err := s.service.Load(data, name, password)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if merge {
			sess.SetMergeDocument(doc)
		} else {
			sess.SetDocument(doc)
		}

		s.logger.WithFields(logrus.Fields{
			"session": sess.ID,
			"name":    doc.Name,
			"pages":   doc.PageCount,
			"merge":   merge,
		}).Info("document uploaded")

		s.writeJSON(w, http.StatusOK, newDocumentResponse(doc))
	}
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		maxSize := s.service.MaxFileSize()
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
		if err := r.ParseMultipartForm(multipartOverhead); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, "", "", pdferrors.Newf(pdferrors.ErrorTypeFileTooLarge,
					"file too large (max: %d bytes)", maxSize)
			}
			return nil, "", "", pdferrors.Wrap(pdferrors.ErrorTypeInvalidArgument, "invalid upload", err)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", "", pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "missing file field")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", "", pdferrors.Wrap(pdferrors.ErrorTypeInvalidArgument, "cannot read upload", err)
		}
		return data, filepath.Base(header.Filename), r.FormValue("password"), nil
	}

	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, "", "", err
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, "", "", pdferrors.New(pdferrors.ErrorTypeInvalidArgument,
			"send a multipart file or a JSON body with a url")
	}

	result, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		return nil, "", "", err
	}
	return result.Data, result.Name, req.Password, nil
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	md, err := s.service.Metadata(doc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"metadata": md,
		"rows":     md.Rows(),
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		s.writeError(w, pdferrors.Newf(pdferrors.ErrorTypeInvalidArgument, "invalid page %q", r.PathValue("page")))
		return
	}

	out, err := s.service.Preview(doc, page-1)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", out.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(out.Data)
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	var req pdf.ExtractTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Pages) == "" {
		req.Pages = "all"
	}

	result, err := s.service.ExtractText(doc, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	artifact := &pdf.Artifact{
		Name:     doc.Stem() + ".txt",
		MIMEType: pdf.MIMETypeText,
		Data:     []byte(result.Text),
	}
	sess.PutArtifact(artifact)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"text":      result.Text,
		"pages":     result.Pages,
		"mode":      result.Mode,
		"truncated": result.Truncated,
		"artifact":  newArtifactResponse(sess.ID, artifact),
	})
}

type imageResponse struct {
	pdf.ImageInfo
	URL string `json:"url"`
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	var req pdf.ExtractImagesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Pages) == "" {
		req.Pages = "all"
	}

	result, err := s.service.ExtractImages(doc, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	images := make([]imageResponse, 0, len(result.Images))
	for _, img := range result.Images {
		sess.PutArtifact(&pdf.Artifact{
			Name:     img.Name,
			MIMEType: imageMIMEType(img.Name),
			Data:     img.Data,
		})
		images = append(images, imageResponse{ImageInfo: img, URL: artifactURL(sess.ID, img.Name)})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"images":      images,
		"total_count": result.TotalCount,
	})
}

func imageMIMEType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	var req pdf.EncryptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.service.Encrypt(doc, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeArtifact(w, sess, out)
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	out, err := s.service.Decrypt(doc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeArtifact(w, sess, out)
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	var req pdf.RotateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.service.Rotate(doc, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeArtifact(w, sess, out)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	var req pdf.ResizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.service.Resize(doc, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeArtifact(w, sess, out)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	second := sess.MergeDocument()
	if second == nil {
		s.writeError(w, pdferrors.New(pdferrors.ErrorTypeInvalidArgument, "upload a second document to merge"))
		return
	}

	out, err := s.service.Merge(doc, second)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeArtifact(w, sess, out)
}

func (s *Server) handleConvertWord(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	out, err := s.service.ConvertToWord(doc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeArtifact(w, sess, out)
}

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request, sess *session.Session, doc *pdf.Document) {
	var req pdf.ReduceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.service.Reduce(doc, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess.PutArtifact(result.Artifact)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"artifact":      newArtifactResponse(sess.ID, result.Artifact),
		"original_size": result.OriginalSize,
		"reduced_size":  result.ReducedSize,
		"reduction":     result.Reduction(),
	})
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	artifacts := sess.Artifacts()
	list := make([]artifactResponse, len(artifacts))
	for i, a := range artifacts {
		list[i] = newArtifactResponse(sess.ID, a)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"artifacts": list})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	name := r.PathValue("name")
	a, ok := sess.Artifact(name)
	if !ok {
		s.writeError(w, pdferrors.Newf(pdferrors.ErrorTypeNotFound, "artifact %q not found", name))
		return
	}

	w.Header().Set("Content-Type", a.MIMEType)
	w.Header().Set("Content-Length", strconv.FormatInt(a.Size(), 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	_, _ = w.Write(a.Data)
}
