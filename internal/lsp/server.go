package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"texlint/internal/diag"
	"texlint/internal/latex"
	"texlint/internal/source"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior. Zero values fall back to
// the same defaults the CLI uses.
type ServerOptions struct {
	Debounce       time.Duration
	MaxDiagnostics int
	Validate       latex.Options
	Disabled       []diag.Code
	Pipeline       latex.Pipeline
	Format         latex.FormatOptions
	// WorkspaceConfig loads .texlint.toml from the workspace root sent in
	// initialize, replacing the options above.
	WorkspaceConfig bool
	Version         string
	Log             io.Writer // defaults to stderr
}

// Server handles stdio JSON-RPC for the texlint LSP.
type Server struct {
	conn *conn
	log  io.Writer

	mu       sync.Mutex
	docs     *store
	settings settings
	root     string
	shutdown bool
	timer    *time.Timer
	gen      uint64 // bumped on every schedule; only the newest timer runs
	ctx      context.Context

	debounce        time.Duration
	maxDiagnostics  int
	workspaceConfig bool
	version         string
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	s := &Server{
		conn:            newConn(in, out),
		log:             opts.Log,
		docs:            newStore(),
		debounce:        opts.Debounce,
		maxDiagnostics:  opts.MaxDiagnostics,
		workspaceConfig: opts.WorkspaceConfig,
		version:         opts.Version,
		ctx:             context.Background(),
		settings: settings{
			validate: opts.Validate,
			disabled: opts.Disabled,
			pipeline: opts.Pipeline,
			format:   opts.Format,
		},
	}
	if s.log == nil {
		s.log = os.Stderr
	}
	if s.debounce <= 0 {
		s.debounce = 200 * time.Millisecond
	}
	if s.maxDiagnostics <= 0 {
		s.maxDiagnostics = 100
	}
	if len(s.settings.pipeline) == 0 {
		s.settings.pipeline = latex.DefaultPipeline()
	}
	return s
}

// Run serves LSP requests until exit or EOF. Spans for diagnostics runs
// are opened under ctx.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	defer s.stopTimer()
	for ctx.Err() == nil {
		msg, err := s.conn.read()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, errMalformed):
			s.logf("%v", err)
			continue
		case err != nil:
			return err
		}
		if msg.Method == "" {
			// ответы клиента на наши запросы, их нет
			continue
		}
		if err := s.handleMessage(msg); err != nil {
			return err
		}
	}
	return ctx.Err()
}

type handlerFunc func(s *Server, msg *rpcMessage) error

var handlers = map[string]handlerFunc{
	"initialize":                       request((*Server).initialize),
	"initialized":                      func(*Server, *rpcMessage) error { return nil },
	"shutdown":                         request((*Server).shutdownRequest),
	"exit":                             (*Server).exit,
	"workspace/didChangeConfiguration": notification((*Server).didChangeConfiguration),
	"textDocument/didOpen":             notification((*Server).didOpen),
	"textDocument/didChange":           notification((*Server).didChange),
	"textDocument/didSave":             notification((*Server).didSave),
	"textDocument/didClose":            notification((*Server).didClose),
	"textDocument/formatting":          request((*Server).formatting),
	"textDocument/rangeFormatting":     request((*Server).rangeFormatting),
	"textDocument/foldingRange":        request((*Server).foldingRange),
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	if h, ok := handlers[msg.Method]; ok {
		return h(s, msg)
	}
	if len(msg.ID) > 0 {
		return s.conn.replyError(msg.ID, codeMethodNotFound, "method not found: "+msg.Method)
	}
	return nil
}

func decodeParams[P any](msg *rpcMessage) (P, error) {
	var params P
	if len(msg.Params) == 0 {
		return params, nil
	}
	err := json.Unmarshal(msg.Params, &params)
	return params, err
}

// request adapts a typed method into a handler that always answers.
func request[P, R any](fn func(*Server, P) (R, error)) handlerFunc {
	return func(s *Server, msg *rpcMessage) error {
		params, err := decodeParams[P](msg)
		if err != nil {
			return s.conn.replyError(msg.ID, codeInvalidParams, "invalid params: "+err.Error())
		}
		result, err := fn(s, params)
		if err != nil {
			return err
		}
		return s.conn.reply(msg.ID, result)
	}
}

// notification adapts a typed method into a handler that never answers.
// Undecodable params are logged and dropped.
func notification[P any](fn func(*Server, P)) handlerFunc {
	return func(s *Server, msg *rpcMessage) error {
		params, err := decodeParams[P](msg)
		if err != nil {
			s.logf("%s: invalid params: %v", msg.Method, err)
			return nil
		}
		fn(s, params)
		return nil
	}
}

func (s *Server) initialize(params initializeParams) (initializeResult, error) {
	root := params.root()
	if root != "" {
		if abs, err := source.AbsolutePath(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	if root != "" && s.workspaceConfig {
		s.loadWorkspaceConfig(root)
	}
	if len(params.InitializationOptions) > 0 {
		s.applySettings(params.InitializationOptions)
	}

	return initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    syncIncremental,
				Save:      saveOptions{IncludeText: true},
			},
			DocumentFormattingProvider:      true,
			DocumentRangeFormattingProvider: true,
			FoldingRangeProvider:            true,
		},
		ServerInfo: &serverInfo{Name: "texlint", Version: s.version},
	}, nil
}

func (s *Server) shutdownRequest(json.RawMessage) (any, error) {
	s.mu.Lock()
	s.shutdown = true
	uris := s.docs.takePublished()
	s.mu.Unlock()
	s.stopTimer()
	for _, uri := range uris {
		s.publish(uri, nil, nil)
	}
	return nil, nil
}

func (s *Server) exit(*rpcMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return ErrExit
	}
	return ErrExitWithoutShutdown
}

func (s *Server) didOpen(params didOpenTextDocumentParams) {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return
	}
	s.mu.Lock()
	s.docs.open(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.mu.Unlock()
	s.scheduleDiagnostics()
}

func (s *Server) didChange(params didChangeTextDocumentParams) {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return
	}
	s.mu.Lock()
	ok := s.docs.update(uri, params.TextDocument.Version, func(text string) string {
		return applyChanges(text, params.ContentChanges)
	})
	verbose := s.settings.trace
	s.mu.Unlock()
	if !ok {
		s.logf("didChange for unopened document %s", uri)
		return
	}
	if verbose {
		s.logf("didChange: uri=%s version=%d changes=%d", uri, params.TextDocument.Version, len(params.ContentChanges))
	}
	s.scheduleDiagnostics()
}

func (s *Server) didSave(params didSaveTextDocumentParams) {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return
	}
	s.mu.Lock()
	if doc, ok := s.docs.get(uri); ok && params.Text != nil {
		doc.text = *params.Text
	}
	s.docs.touch(uri)
	s.mu.Unlock()
	s.scheduleDiagnostics()
}

func (s *Server) didClose(params didCloseTextDocumentParams) {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return
	}
	s.mu.Lock()
	published := s.docs.close(uri)
	s.mu.Unlock()
	if published {
		s.publish(uri, nil, nil)
	}
}

// document returns the open text for uri.
func (s *Server) document(uri string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs.get(canonicalURI(uri))
	if !ok {
		return "", false
	}
	return doc.text, true
}

func (s *Server) currentSettings() settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Server) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// publish sends diagnostics for uri; a nil version clears them.
func (s *Server) publish(uri string, version *int, list []lspDiagnostic) {
	if list == nil {
		list = []lspDiagnostic{}
	}
	err := s.conn.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: list,
	})
	if err != nil {
		s.logf("publish %s: %v", uri, err)
	}
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}
