package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ironsheep/idcard-studio/internal/card"
	"github.com/ironsheep/idcard-studio/internal/history"
	"github.com/ironsheep/idcard-studio/internal/imaging"
	"github.com/ironsheep/idcard-studio/internal/preview"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "photo_render", "card_undo").
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
	return s.toolResponse(req.ID, result, err)
}

// toolResponse wraps a tool result, or its error, in a JSON-RPC response.
func (s *Server) toolResponse(id interface{}, result interface{}, err error) *MCPResponse {
	if err != nil {
		return s.errorResponse(id, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
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
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads photos from cache as needed
//  4. Renders or edits the card history
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Photo Operations
	case "photo_load":
		return s.handlePhotoLoad(args)
	case "photo_default_crop":
		return s.handlePhotoDefaultCrop(args)
	case "photo_render":
		return s.handlePhotoRender(ctx, args)

	// Card Operations
	case "card_get":
		return s.handleCardGet()
	case "card_update":
		return s.handleCardUpdate(args)
	case "card_set_photo":
		return s.handleCardSetPhoto(args)
	case "card_undo":
		return s.handleCardUndo()
	case "card_redo":
		return s.handleCardRedo()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// previewArgs returns the arguments of a photo_render call in preview mode.
// ok is false for any other request.
func previewArgs(req *MCPRequest) (a photoRenderArgs, ok bool) {
	if req.Method != "tools/call" {
		return a, false
	}
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name != "photo_render" {
		return a, false
	}
	if err := decodeArgs(params.Arguments, &a); err != nil {
		return a, false
	}
	if a.Mode == "" {
		a.Mode = renderModePreview
	}
	return a, a.Mode == renderModePreview
}

// queuePreview submits a preview render call to the scheduler and returns a
// function that waits for its response. Calls must be queued in the order
// they arrive so the newest one is never superseded. ok is false for any
// request that is not a preview render.
func (s *Server) queuePreview(req *MCPRequest) (wait func(context.Context) *MCPResponse, ok bool) {
	a, ok := previewArgs(req)
	if !ok {
		return nil, false
	}
	if s.cfg.Debug {
		log.Printf("Request %v: preview of %s", req.ID, a.Path)
	}

	ticket, err := s.submitPreview(a)
	if err != nil {
		resp := s.toolResponse(req.ID, nil, err)
		return func(context.Context) *MCPResponse { return resp }, true
	}
	return func(ctx context.Context) *MCPResponse {
		result, err := awaitPreview(ctx, ticket)
		return s.toolResponse(req.ID, result, err)
	}, true
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

// decodeArgs unmarshals tool arguments, treating missing arguments as an empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Photo Operation Handlers ===

type viewportArgs struct {
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
}

func (s *Server) viewport(a viewportArgs) imaging.Size {
	if a.ViewportWidth > 0 && a.ViewportHeight > 0 {
		return imaging.Size{Width: a.ViewportWidth, Height: a.ViewportHeight}
	}
	return s.cfg.Viewport
}

type photoLoadArgs struct {
	Path string `json:"path"`
	viewportArgs
}

func (s *Server) handlePhotoLoad(args json.RawMessage) (interface{}, error) {
	var a photoLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadPhotoInfo(s.cache, a.Path, s.viewport(a.viewportArgs))
}

type photoDefaultCropArgs struct {
	Path   string  `json:"path"`
	Aspect float64 `json:"aspect"`
	viewportArgs
}

func (s *Server) handlePhotoDefaultCrop(args json.RawMessage) (interface{}, error) {
	var a photoDefaultCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Aspect == 0 {
		a.Aspect = 1.0
	}
	photo, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	displayed := imaging.FitSize(imaging.SizeOf(photo.Buffer.Bounds()), s.viewport(a.viewportArgs))
	return imaging.DefaultCropRegion(displayed.Width, displayed.Height, a.Aspect), nil
}

const (
	renderModePreview = "preview"
	renderModeFinal   = "final"
)

type photoRenderArgs struct {
	Path      string              `json:"path"`
	Region    *imaging.CropRegion `json:"region,omitempty"`
	Params    json.RawMessage     `json:"params,omitempty"`
	Normalize bool                `json:"normalize"`
	Mode      string              `json:"mode"`
	Scale     float64             `json:"scale"`
}

// renderInputs resolves the photo, crop region and parameters of a render
// request, applying defaults for anything left out.
func (s *Server) renderInputs(a photoRenderArgs) (*imaging.Photo, imaging.CropRegion, imaging.EditParams, error) {
	photo, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, imaging.CropRegion{}, imaging.EditParams{}, err
	}

	var region imaging.CropRegion
	if a.Region != nil {
		region = *a.Region
	} else {
		displayed := imaging.FitSize(imaging.SizeOf(photo.Buffer.Bounds()), s.cfg.Viewport)
		region = imaging.DefaultCropRegion(displayed.Width, displayed.Height, 1)
	}

	// Sliders left out keep their neutral value.
	params := imaging.DefaultParams()
	if err := decodeArgs(a.Params, &params); err != nil {
		return nil, imaging.CropRegion{}, imaging.EditParams{}, fmt.Errorf("%w: %w", imaging.ErrInvalidParams, err)
	}
	if a.Normalize {
		params = params.Normalize()
	}
	return photo, region, params, nil
}

// previewResult is returned instead of an image when a newer preview took over.
type previewResult struct {
	Superseded bool   `json:"superseded"`
	Generation uint64 `json:"generation"`
}

func (s *Server) handlePhotoRender(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a photoRenderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Mode == "" {
		a.Mode = renderModePreview
	}

	switch a.Mode {
	case renderModePreview:
		ticket, err := s.submitPreview(a)
		if err != nil {
			return nil, err
		}
		return awaitPreview(ctx, ticket)

	case renderModeFinal:
		photo, region, params, err := s.renderInputs(a)
		if err != nil {
			return nil, err
		}
		if a.Scale == 0 {
			a.Scale = s.cfg.ExportScale
		}
		buf, err := s.finalRenderer.Render(photo.Buffer, region, params, a.Scale)
		if err != nil {
			return nil, fmt.Errorf("final render failed: %w", err)
		}
		return imaging.NewRenderResult(buf)

	default:
		return nil, fmt.Errorf("unknown render mode %q: want %s or %s", a.Mode, renderModePreview, renderModeFinal)
	}
}

// submitPreview resolves a preview render and queues it on the scheduler.
func (s *Server) submitPreview(a photoRenderArgs) (*preview.Ticket, error) {
	photo, region, params, err := s.renderInputs(a)
	if err != nil {
		return nil, err
	}
	scale := a.Scale
	if scale == 0 {
		scale = s.cfg.PreviewScale
	}
	return s.previews.Submit(preview.Request{
		Source: photo.Buffer,
		Region: region,
		Params: params,
		Scale:  scale,
	}), nil
}

// awaitPreview waits for a queued preview. A render overtaken by a newer one
// answers with previewResult instead of an error.
func awaitPreview(ctx context.Context, ticket *preview.Ticket) (interface{}, error) {
	buf, err := ticket.Wait(ctx)
	if errors.Is(err, preview.ErrSuperseded) {
		return previewResult{Superseded: true, Generation: ticket.Generation}, nil
	}
	if err != nil {
		return nil, err
	}
	return imaging.NewRenderResult(buf)
}

// === Card Operation Handlers ===

// cardState is the result of every card tool.
type cardState struct {
	Card       card.Data `json:"card"`
	CanUndo    bool      `json:"can_undo"`
	CanRedo    bool      `json:"can_redo"`
	ExportName string    `json:"export_name"`
}

func newCardState(st history.State[card.Data]) cardState {
	return cardState{
		Card:       st.Present,
		CanUndo:    st.CanUndo,
		CanRedo:    st.CanRedo,
		ExportName: st.Present.ExportName(),
	}
}

func (s *Server) handleCardGet() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newCardState(s.card.State()), nil
}

type cardUpdateArgs struct {
	Fields json.RawMessage `json:"fields"`
}

func (s *Server) handleCardUpdate(args json.RawMessage) (interface{}, error) {
	var a cardUpdateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Fields) == 0 {
		return nil, fmt.Errorf("fields is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.card.Present().Apply(a.Fields)
	if err != nil {
		return nil, err
	}
	return newCardState(s.card.Push(next)), nil
}

type cardSetPhotoArgs struct {
	Path      string              `json:"path"`
	Region    *imaging.CropRegion `json:"region,omitempty"`
	Params    json.RawMessage     `json:"params,omitempty"`
	Normalize bool                `json:"normalize"`
	Scale     float64             `json:"scale"`
}

func (s *Server) handleCardSetPhoto(args json.RawMessage) (interface{}, error) {
	var a cardSetPhotoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = s.cfg.ExportScale
	}

	photo, region, params, err := s.renderInputs(photoRenderArgs{
		Path:      a.Path,
		Region:    a.Region,
		Params:    a.Params,
		Normalize: a.Normalize,
	})
	if err != nil {
		return nil, err
	}

	// The editor stays open on failure; nothing is pushed.
	buf, err := s.finalRenderer.Render(photo.Buffer, region, params, a.Scale)
	if err != nil {
		log.Printf("Final render of %s failed: %v", a.Path, err)
		return nil, fmt.Errorf("final render failed: %w", err)
	}
	result, err := imaging.NewRenderResult(buf)
	if err != nil {
		return nil, err
	}
	url := result.DataURL()

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.card.Update(func(d card.Data) card.Data {
		d = d.Clone()
		d.PhotoURL = url
		return d
	})
	return newCardState(st), nil
}

func (s *Server) handleCardUndo() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newCardState(s.card.Undo()), nil
}

func (s *Server) handleCardRedo() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newCardState(s.card.Redo()), nil
}
