package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/manga-panels/internal/imaging"
	"github.com/ironsheep/manga-panels/internal/segment"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "panels_extract_folder").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "panels_extract_folder":
		return s.handleExtractFolder(ctx, args)
	case "panels_extract_chapter":
		return s.handleExtractChapter(ctx, args)
	case "panels_segment_image":
		return s.handleSegmentImage(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type extractFolderArgs struct {
	Folder string `json:"folder"`
}

func (s *Server) handleExtractFolder(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractFolderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Folder == "" {
		return nil, fmt.Errorf("folder is required")
	}
	return s.folder.Extract(ctx, a.Folder)
}

type extractChapterArgs struct {
	ChapterURL string `json:"chapter_url"`
}

func (s *Server) handleExtractChapter(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractChapterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.extractChapter(ctx, a.ChapterURL)
}

type segmentImageArgs struct {
	Path         string  `json:"path"`
	MinPct       float64 `json:"min_pct"`
	MaxPct       float64 `json:"max_pct"`
	IncludeCrops bool    `json:"include_crops"`
	OverlayPath  string  `json:"overlay_path"`
	Reload       bool    `json:"reload"`
}

// SegmentResult is the output of panels_segment_image.
type SegmentResult struct {
	Image   imaging.PageInfo      `json:"image"`
	Panels  []segment.Panel       `json:"panels"`
	Crops   []*imaging.CropResult `json:"crops,omitempty"`
	Overlay string                `json:"overlay,omitempty"`
}

func (s *Server) handleSegmentImage(args json.RawMessage) (interface{}, error) {
	var a segmentImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MinPct == 0 {
		a.MinPct = 2
	}
	if a.MaxPct == 0 {
		a.MaxPct = 90
	}

	window, err := segment.NewWindow(a.MinPct, a.MaxPct)
	if err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	seg := segment.NewSegmenter(window)
	cands := seg.Candidates(img)
	// Same order as the sorted panels, so crop i and overlay label i match panel i.
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Bounds.Min.Y < cands[j].Bounds.Min.Y
	})
	result := &SegmentResult{
		Image:  imaging.Info(a.Path, img),
		Panels: segment.Panels(cands, b.Dx(), b.Dy()),
	}

	if a.IncludeCrops {
		for _, c := range cands {
			crop, err := segment.CropPanel(img, c, imaging.White)
			if err != nil {
				return nil, err
			}
			enc, err := imaging.EncodePNG(crop)
			if err != nil {
				return nil, err
			}
			result.Crops = append(result.Crops, enc)
		}
	}

	if a.OverlayPath != "" {
		rects := make([]image.Rectangle, len(cands))
		for i, c := range cands {
			rects[i] = c.Bounds
		}
		overlay := imaging.DrawPanels(img, rects, imaging.OverlayColor, 2)
		if err := imaging.Save(overlay, a.OverlayPath); err != nil {
			return nil, err
		}
		result.Overlay = a.OverlayPath
	}

	return result, nil
}
