package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ironsheep/idcard-studio/internal/card"
	"github.com/ironsheep/idcard-studio/internal/history"
	"github.com/ironsheep/idcard-studio/internal/imaging"
	"github.com/ironsheep/idcard-studio/internal/preview"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds one JSON-RPC message. Card updates may carry image data URLs.
const maxLineSize = 64 * 1024 * 1024

// Server handles MCP protocol communication
type Server struct {
	cfg   Config
	cache *imaging.ImageCache

	previewRenderer *imaging.Renderer
	finalRenderer   *imaging.Renderer
	previews        *preview.Scheduler

	// mu serializes every access to the card history.
	mu   sync.Mutex
	card *history.Manager[card.Data]
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

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance. The card starts from card.Default
// for the current date.
func New(cfg Config) *Server {
	seed := uint64(time.Now().UnixNano())
	initial := card.Default(time.Now(), rand.New(rand.NewPCG(seed, seed>>32)))
	return NewWithCard(cfg, initial)
}

// NewWithCard creates a server whose card history starts at initial.
func NewWithCard(cfg Config, initial card.Data) *Server {
	previewRenderer := imaging.NewRenderer(imaging.PreviewOptions(cfg.MaxPixels))
	return &Server{
		cfg:             cfg,
		cache:           imaging.NewImageCache(),
		previewRenderer: previewRenderer,
		finalRenderer:   imaging.NewRenderer(imaging.FinalOptions(cfg.MaxPixels)),
		previews:        preview.NewForRenderer(previewRenderer, cfg.Debug),
		card:            history.New(initial, history.WithLimit[card.Data](cfg.HistoryLimit)),
	}
}

// Run serves requests read from in, writing responses to out, until in is
// exhausted or ctx is done. The preview scheduler runs alongside and stops
// with it.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.previews.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.serve(gctx, in, out)
	})
	return g.Wait()
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	var writeMu sync.Mutex
	encoder := json.NewEncoder(out)
	write := func(resp *MCPResponse) {
		if resp == nil {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := encoder.Encode(resp); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}

	// Previews are queued here, in arrival order, and answered out of order
	// so a newer one can supersede them.
	var inflight errgroup.Group
	defer inflight.Wait()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		if wait, ok := s.queuePreview(&req); ok {
			inflight.Go(func() error {
				write(wait(ctx))
				return nil
			})
			continue
		}
		write(s.handleRequest(ctx, &req))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	if s.cfg.Debug {
		log.Printf("Request %v: %s", req.ID, req.Method)
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
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
				"name":    "idcard-mcp",
				"version": "0.1.0",
			},
		},
	}
}
