package server

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/unixblacksteel/mindmap/pkg/buildinfo"
	"github.com/unixblacksteel/mindmap/pkg/chat"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/export"
	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/pipeline"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// =============================================================================
// Requests
// =============================================================================

// MindMapRequest is the body of POST /api/mindmap.
type MindMapRequest struct {
	Topic   string `json:"topic" validate:"required,max=500"`
	Refresh bool   `json:"refresh,omitempty"`
}

// ChatRequest is the body of POST /api/chat. An empty Session starts a new
// conversation; Image is an optional data URL.
type ChatRequest struct {
	Session string `json:"session,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Prompt  string `json:"prompt" validate:"required,max=8000"`
	Image   string `json:"image,omitempty" validate:"omitempty,datauri"`
}

// ChatResponse carries the reply and the session to continue with.
type ChatResponse struct {
	Session string       `json:"session"`
	Message chat.Message `json:"message"`
	Tokens  int64        `json:"tokens"`
}

// ImageRequest is the body of POST /api/image.
type ImageRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s failed %s validation", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request")
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"build":    buildinfo.Get(),
		"sessions": s.sessions.len(),
	})
}

func (s *Server) mindMap(w http.ResponseWriter, r *http.Request) {
	var req MindMapRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	tree, hit, err := s.runner.MindMap(r.Context(), req.Topic, req.Refresh)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(hit))
	s.respondJSON(w, http.StatusOK, tree)
}

func (s *Server) renderTree(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.FormatSVG
	}
	if format == pipeline.FormatPNG || format == pipeline.FormatPDF {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidFormat, "use /api/export for %s", format))
		return
	}

	res, err := s.renderRequest(r, format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.MIMEType(format))
	w.Header().Set("X-Cache", cacheStatus(hitFor(res, format)))
	w.Write(res.Artifacts[format])
}

func (s *Server) exportTree(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	format := string(f)

	res, err := s.renderRequest(r, format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	data := res.Artifacts[format]
	name := export.FileName(s.now(), f)

	w.Header().Set("Content-Type", f.MIMEType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Cache", cacheStatus(hitFor(res, format)))
	w.Write(data)
}

// renderRequest decodes the tree document in the body and renders one
// format with the query's overrides.
func (s *Server) renderRequest(r *http.Request, format string) (*pipeline.Result, error) {
	opts, err := s.renderOptions(r, format)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var tree *mindmap.Node
	if isYAML(r.Header.Get("Content-Type")) {
		tree, err = mindmap.ParseYAML(data)
	} else {
		tree, err = mindmap.Parse(data)
	}
	if err != nil {
		return nil, err
	}
	return s.runner.Render(r.Context(), tree, opts)
}

func (s *Server) renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.render
	opts.Formats = []string{format}
	opts.Logger = s.logger

	q := r.URL.Query()
	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive number", name)
		}
		*dst = n
	}
	for name, dst := range map[string]*bool{
		"interactive": &opts.Interactive,
		"detailed":    &opts.Detailed,
		"transparent": &opts.Transparent,
		"refresh":     &opts.Refresh,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean", name)
			}
			*dst = b
		}
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidConfig, "no generation client configured"))
		return
	}
	var req ChatRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	mode, err := chat.ParseMode(req.Mode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var attachment *genai.Image
	if req.Image != "" {
		if attachment, err = decodeImage(req.Image); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	id, session := s.sessions.get(req.Session, s.now())
	reply, err := session.Send(r.Context(), mode, req.Prompt, attachment)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ChatResponse{Session: id, Message: reply, Tokens: session.TokensUsed()})
}

func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidConfig, "no generation client configured"))
		return
	}
	var req ImageRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	img, err := s.gen.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Write(img.Data)
}

// =============================================================================
// Helpers
// =============================================================================

// decodeImage parses a base64 data URL and checks that it holds an image.
func decodeImage(dataURL string) (*genai.Image, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image must be a base64 data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode image")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "attachment is %s, not an image", mt.String())
	}
	return &genai.Image{MIMEType: mt.String(), Data: data}, nil
}

func isYAML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml"
}

func hitFor(res *pipeline.Result, format string) bool {
	for _, f := range res.CacheInfo.ArtifactHits {
		if f == format {
			return true
		}
	}
	return false
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

