package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/image-panel-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "panel_process").
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
// Every call is independent: nothing computed for one call is kept for the next.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.log.With(zap.String("request", uuid.NewString()), zap.String("tool", params.Name))
	log.Debug("Tool call started")

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if isUserError(err) {
			log.Info("Tool call rejected", zap.Error(err))
		} else {
			log.Warn("Tool call failed", zap.Error(err))
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("Tool call finished")

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

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each user action maps to one tool:
//   - panel_process: Process
//   - panel_download_page: DownloadPage(i)
//   - panel_download_pdf: DownloadPdf
//   - panel_download_png: DownloadPng
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "panel_partition":
		return s.handlePanelPartition(args)
	}

	if err := s.throttle(ctx); err != nil {
		return nil, err
	}

	switch name {
	case "panel_process":
		return s.handlePanelProcess(ctx, args)
	case "panel_download_page":
		return s.handlePanelDownloadPage(args)
	case "panel_download_pdf":
		return s.handlePanelDownload(ctx, args, imaging.FormatPDF)
	case "panel_download_png":
		return s.handlePanelDownload(ctx, args, imaging.FormatPNG)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// throttle waits for the rate limiter, when one is configured.
func (s *Server) throttle(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request throttled: %w", err)
	}
	return nil
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared Arguments ===

type sourceArgs struct {
	Path        string `json:"path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	Format      string `json:"format,omitempty"`
	Name        string `json:"name,omitempty"`
}

// load decodes the image named by the arguments.
func (a *sourceArgs) load() (*imaging.Source, error) {
	switch {
	case a.Path != "" && a.ImageBase64 != "":
		return nil, fmt.Errorf("%w: give either path or image_base64, not both", imaging.ErrInvalidInput)
	case a.Path != "":
		return imaging.LoadFile(a.Path)
	case a.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(a.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: image_base64 is not valid base64: %v", imaging.ErrInvalidInput, err)
		}
		return imaging.Decode(bytes.NewReader(data), a.Format)
	default:
		return nil, fmt.Errorf("%w: path or image_base64 is required", imaging.ErrInvalidInput)
	}
}

// baseName returns the base used for download file names.
func (a *sourceArgs) baseName() string {
	switch {
	case a.Name != "":
		return imaging.BaseName(a.Name)
	case a.Path != "":
		return imaging.BaseName(filepath.Base(a.Path))
	}
	return imaging.DefaultBaseName
}

// gridArgs holds optional grid parameters; nil fields take configured defaults.
type gridArgs struct {
	Columns *int `json:"columns,omitempty"`
	Rows    *int `json:"rows,omitempty"`
	Margin  *int `json:"margin,omitempty"`
}

func (s *Server) gridSpec(a gridArgs) imaging.GridSpec {
	spec := s.cfg.Panel.Grid()
	if a.Columns != nil {
		spec.Columns = *a.Columns
	}
	if a.Rows != nil {
		spec.Rows = *a.Rows
	}
	if a.Margin != nil {
		spec.Margin = *a.Margin
	}
	return spec
}

// Download is a file offered to the user.
type Download struct {
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	DataBase64 string `json:"data_base64"`
}

func newDownload(name, mime string, data []byte) Download {
	return Download{
		FileName:   name,
		MimeType:   mime,
		DataBase64: base64.StdEncoding.EncodeToString(data),
	}
}

func encodeImage(name string, img image.Image) (Download, error) {
	data, err := imaging.EncodeSingle(img)
	if err != nil {
		return Download{}, err
	}
	return newDownload(name, "image/png", data), nil
}

// === Basic Image Information Handlers ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}
	return src.Info(), nil
}

// === Layout Handlers ===

type panelPartitionArgs struct {
	gridArgs
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PartitionResult describes the layout of a panel.
type PartitionResult struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	Columns    int `json:"columns"`
	Rows       int `json:"rows"`
	Margin     int `json:"margin"`
	PageWidth  int `json:"page_width"`
	PageHeight int `json:"page_height"`

	// UntiledWidth and UntiledHeight are the strips on the right and bottom
	// edges not covered by any page.
	UntiledWidth  int `json:"untiled_width"`
	UntiledHeight int `json:"untiled_height"`

	Pages []imaging.PageRect `json:"pages"`
}

func newPartitionResult(width, height int, grid imaging.PageGrid) *PartitionResult {
	spec := grid.Spec
	return &PartitionResult{
		Width:         width,
		Height:        height,
		Columns:       spec.Columns,
		Rows:          spec.Rows,
		Margin:        spec.Margin,
		PageWidth:     grid.PageWidth,
		PageHeight:    grid.PageHeight,
		UntiledWidth:  width - (spec.Columns*grid.PageWidth + (spec.Columns-1)*spec.Margin),
		UntiledHeight: height - (spec.Rows*grid.PageHeight + (spec.Rows-1)*spec.Margin),
		Pages:         grid.Pages,
	}
}

func (s *Server) handlePanelPartition(args json.RawMessage) (interface{}, error) {
	var a panelPartitionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	grid, err := imaging.Plan(a.Width, a.Height, s.gridSpec(a.gridArgs))
	if err != nil {
		return nil, err
	}
	return newPartitionResult(a.Width, a.Height, grid), nil
}

// === Process Handler ===

type panelProcessArgs struct {
	sourceArgs
	gridArgs
	Thumbnails bool  `json:"thumbnails"`
	Overlay    *bool `json:"overlay,omitempty"`
}

// ProcessResult is the answer to panel_process.
type ProcessResult struct {
	Layout     *PartitionResult `json:"layout"`
	Preview    Download         `json:"preview"`
	Overlay    *Download        `json:"overlay,omitempty"`
	Thumbnails []Download       `json:"thumbnails,omitempty"`
}

func (s *Server) handlePanelProcess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a panelProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}

	grid, pages, err := imaging.Split(ctx, src.Image, s.gridSpec(a.gridArgs), imaging.SplitOptions{Workers: s.cfg.Panel.Workers})
	if err != nil {
		return nil, err
	}
	base := a.baseName()
	result := &ProcessResult{Layout: newPartitionResult(src.Width(), src.Height(), grid)}

	sheet, err := imaging.Preview(pages, grid.Spec.Columns, s.cfg.Preview.Options())
	if err != nil {
		return nil, err
	}
	if result.Preview, err = encodeImage(base+"_preview.png", sheet); err != nil {
		return nil, err
	}

	if a.Overlay == nil || *a.Overlay {
		overlay, err := imaging.LayoutOverlay(src.Image, grid, s.cfg.Preview.OverlayColor)
		if err != nil {
			return nil, err
		}
		d, err := encodeImage(base+"_layout.png", overlay)
		if err != nil {
			return nil, err
		}
		result.Overlay = &d
	}

	if a.Thumbnails {
		size := s.cfg.Preview.ThumbnailSize
		for i, page := range pages {
			thumb, err := imaging.Thumbnail(page, size, size)
			if err != nil {
				return nil, err
			}
			d, err := encodeImage(imaging.PageFileName(base+"_thumb", i+1), thumb)
			if err != nil {
				return nil, err
			}
			result.Thumbnails = append(result.Thumbnails, d)
		}
	}

	return result, nil
}

// === Download Handlers ===

type panelDownloadPageArgs struct {
	sourceArgs
	gridArgs
	Page int `json:"page"`
}

// DownloadResult is the answer to the download tools.
type DownloadResult struct {
	Download
	Page  int    `json:"page,omitempty"`
	Pages int    `json:"pages"`
	Note  string `json:"note,omitempty"`
}

func (s *Server) handlePanelDownloadPage(args json.RawMessage) (interface{}, error) {
	var a panelDownloadPageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}

	grid, page, err := imaging.SplitPage(src.Image, s.gridSpec(a.gridArgs), a.Page)
	if err != nil {
		return nil, err
	}
	d, err := encodeImage(imaging.PageFileName(a.baseName(), a.Page), page)
	if err != nil {
		return nil, err
	}
	return &DownloadResult{Download: d, Page: a.Page, Pages: len(grid.Pages)}, nil
}

type panelDownloadArgs struct {
	sourceArgs
	gridArgs
}

// firstPageOnlyNote explains the PNG whole-panel export.
const firstPageOnlyNote = "PNG export contains only the first page of the panel"

func (s *Server) handlePanelDownload(ctx context.Context, args json.RawMessage, format imaging.Format) (interface{}, error) {
	var a panelDownloadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := a.load()
	if err != nil {
		return nil, err
	}

	grid, pages, err := imaging.Split(ctx, src.Image, s.gridSpec(a.gridArgs), imaging.SplitOptions{Workers: s.cfg.Panel.Workers})
	if err != nil {
		return nil, err
	}
	base := a.baseName()
	data, err := imaging.EncodeMulti(pages, format, imaging.EncodeOptions{
		Resolution: s.cfg.Panel.Resolution,
		Title:      base,
	})
	if err != nil {
		return nil, err
	}

	result := &DownloadResult{
		Download: newDownload(imaging.PanelFileName(base, format), format.MimeType(), data),
		Pages:    len(grid.Pages),
	}
	if format == imaging.FormatPNG {
		result.Note = firstPageOnlyNote
	}
	return result, nil
}

// isUserError reports whether err is caused by the request rather than the server.
func isUserError(err error) bool {
	return errors.Is(err, imaging.ErrInvalidInput) ||
		errors.Is(err, imaging.ErrDegenerateGeometry) ||
		errors.Is(err, imaging.ErrUnsupportedFormat)
}
