package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/manga-panels/internal/fetch"
	"github.com/ironsheep/manga-panels/internal/imaging"
	"github.com/ironsheep/manga-panels/internal/pipeline"
	"github.com/ironsheep/manga-panels/internal/textdetect"
)

// Version is reported in the MCP handshake.
var Version = "0.1.0"

var (
	errMissingURL = errors.New("chapter_url is required")
	errFetch      = errors.New("chapter download failed")
)

// ChapterFetcher downloads the page images of a chapter into dir.
type ChapterFetcher interface {
	Chapter(ctx context.Context, chapterURL, dir string) ([]string, error)
}

// TextBackend describes the text detection engine in health reports.
type TextBackend interface {
	Info() textdetect.Info
}

// Options wires a Server.
type Options struct {
	// Chapter runs the chapter endpoint and tool. Nil builds a contour-only
	// extractor with the default configuration.
	Chapter *pipeline.Extractor

	// Folder runs panels_extract_folder. Nil falls back to Chapter.
	Folder *pipeline.Extractor

	// Fetcher downloads chapters. Nil uses fetch.New with the default timeout.
	Fetcher ChapterFetcher

	// WorkDir receives one UUID-named folder per downloaded chapter.
	WorkDir string

	// KeepDownloads leaves chapter folders on disk after extraction.
	KeepDownloads bool

	// Text is reported by GET /healthz when set.
	Text TextBackend

	Log logrus.FieldLogger
}

// Server serves panel extraction over HTTP and over MCP stdio.
type Server struct {
	chapter       *pipeline.Extractor
	folder        *pipeline.Extractor
	fetcher       ChapterFetcher
	workDir       string
	keepDownloads bool
	text          TextBackend
	cache         *imaging.ImageCache
	log           logrus.FieldLogger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error. The HTTP API reuses it for its error
// bodies, with Code holding the HTTP status.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server. It fails only when the default extractor cannot be
// built.
func New(opts Options) (*Server, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	chapter := opts.Chapter
	if chapter == nil {
		var err error
		chapter, err = pipeline.New(pipeline.DefaultConfig(), nil, nil, log)
		if err != nil {
			return nil, err
		}
	}
	folder := opts.Folder
	if folder == nil {
		folder = chapter
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.New(fetch.DefaultTimeout, log)
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}

	return &Server{
		chapter:       chapter,
		folder:        folder,
		fetcher:       fetcher,
		workDir:       workDir,
		keepDownloads: opts.KeepDownloads,
		text:          opts.Text,
		cache:         imaging.NewImageCache(),
		log:           log,
	}, nil
}

// Run serves MCP on stdin and stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.log.WithError(err).Error("failed to encode response")
			}
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.WithError(err).Error("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.WithField("method", req.Method).Debug("mcp request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{"tools": GetToolDefinitions()},
		}
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, -32601, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "manga-panels",
				"version": Version,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}

// extractChapter downloads a chapter into a fresh work folder and extracts
// its panels with the chapter extractor.
func (s *Server) extractChapter(ctx context.Context, chapterURL string) (*pipeline.ExtractionResult, error) {
	if chapterURL == "" {
		return nil, errMissingURL
	}

	dir := filepath.Join(s.workDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work folder: %w", err)
	}
	if !s.keepDownloads {
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				s.log.WithError(err).WithField("dir", dir).Warn("failed to remove work folder")
			}
		}()
	}

	log := s.log.WithFields(logrus.Fields{"chapter_url": chapterURL, "dir": dir})
	paths, err := s.fetcher.Chapter(ctx, chapterURL, dir)
	if err != nil {
		if errors.Is(err, fetch.ErrInvalidURL) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errFetch, err)
	}
	log.WithField("pages", len(paths)).Info("chapter downloaded")

	return s.chapter.Extract(ctx, dir)
}
