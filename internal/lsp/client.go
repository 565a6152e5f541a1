package lsp

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/tidwall/gjson"
)

// shutdownTimeout bounds the polite shutdown exchange on Close.
const shutdownTimeout = 2 * time.Second

// FoldingRange is one server-reported foldable region. Only line-level
// folding is used; character offsets are ignored (the client advertises
// lineFoldingOnly).
type FoldingRange struct {
	StartLine uint32
	EndLine   uint32
	Kind      string
}

// Client fetches folding ranges from a language server over stdio.
type Client struct {
	transport *Transport
	cmd       *exec.Cmd
}

// Start launches the server command and performs the initialize handshake.
// rootURI identifies the workspace (file:// URI).
func Start(ctx context.Context, rootURI string, command string, args ...string) (*Client, error) {
	cmd := exec.Command(command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lsp: starting %s: %w", command, err)
	}

	c := NewClient(stdout, stdin, stdin)
	c.cmd = cmd
	c.transport.Start(ctx)

	if err := c.Initialize(ctx, rootURI); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// NewClient creates a client over an existing connection. Used directly in
// tests; production code goes through Start.
func NewClient(r io.Reader, w io.Writer, closer io.Closer) *Client {
	return &Client{transport: NewTransport(r, w, closer)}
}

// Transport exposes the underlying transport.
func (c *Client) Transport() *Transport {
	return c.transport
}

// Initialize performs the initialize/initialized handshake, advertising
// line-only folding support.
func (c *Client) Initialize(ctx context.Context, rootURI string) error {
	params := map[string]any{
		"processId": nil,
		"rootUri":   rootURI,
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"foldingRange": map[string]any{
					"lineFoldingOnly": true,
				},
			},
		},
	}

	if _, err := c.transport.Call(ctx, "initialize", params); err != nil {
		return fmt.Errorf("lsp: initialize: %w", err)
	}
	if err := c.transport.Notify("initialized", struct{}{}); err != nil {
		return fmt.Errorf("lsp: initialized: %w", err)
	}
	return nil
}

// DidOpen announces a document to the server.
func (c *Client) DidOpen(uri, languageID, text string) error {
	params := map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": languageID,
			"version":    1,
			"text":       text,
		},
	}
	return c.transport.Notify("textDocument/didOpen", params)
}

// FoldingRanges requests the folding ranges for a document. A null result
// or missing capability yields an empty slice, not an error: missing
// ranges only mean nothing can be folded.
func (c *Client) FoldingRanges(ctx context.Context, uri string) ([]FoldingRange, error) {
	params := map[string]any{
		"textDocument": map[string]any{"uri": uri},
	}

	raw, err := c.transport.Call(ctx, "textDocument/foldingRange", params)
	if err != nil {
		return nil, fmt.Errorf("lsp: foldingRange: %w", err)
	}

	return parseFoldingRanges(raw), nil
}

// parseFoldingRanges extracts ranges from the raw result array. Entries
// without a startLine/endLine pair, and inverted entries, are skipped.
func parseFoldingRanges(raw []byte) []FoldingRange {
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil
	}

	var ranges []FoldingRange
	parsed.ForEach(func(_, value gjson.Result) bool {
		start := value.Get("startLine")
		end := value.Get("endLine")
		if !start.Exists() || !end.Exists() {
			return true
		}
		if end.Uint() < start.Uint() {
			return true
		}
		ranges = append(ranges, FoldingRange{
			StartLine: uint32(start.Uint()),
			EndLine:   uint32(end.Uint()),
			Kind:      value.Get("kind").String(),
		})
		return true
	})
	return ranges
}

// Close shuts the server down politely, then closes the transport and
// reaps the process.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Best effort: the transport may already be gone.
	_, _ = c.transport.Call(ctx, "shutdown", nil)
	_ = c.transport.Notify("exit", nil)

	err := c.transport.Close()
	if c.cmd != nil {
		_ = c.cmd.Wait()
	}
	return err
}
