package workspace

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/ziracms/editor-sub001/config"
	"github.com/ziracms/editor-sub001/index"
	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/outline"
)

const lsName = "navi"

type LSPServer struct {
	// WatchInterval enables polling the workspace for files changed
	// outside the editor.
	WatchInterval time.Duration

	cfg       *config.Config
	workspace *Workspace
	watcher   *Watcher
	handler   protocol.Handler
	server    *server.Server
	version   string
}

func NewLSPServer(version string, cfg *config.Config) *LSPServer {
	ls := &LSPServer{
		cfg:     cfg,
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentDefinition:     ls.textDocumentDefinition,
		TextDocumentCompletion:     ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.workspace = New(rootDir, ls.cfg)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"$", ">", ":", "\\", "."},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if ls.WatchInterval > 0 {
		ls.watcher = NewWatcher(ls.workspace, ls.WatchInterval)
		ls.watcher.Start(context.Background())
		log.Infof("watching %s every %s", ls.workspace.RootDir(), ls.WatchInterval)
		return nil
	}
	docs, err := ls.workspace.Scan(context.Background())
	if err != nil {
		log.Errorf("%s", err)
		return nil
	}
	log.Infof("indexed %d files", len(docs))
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	path, err := uriToPath(uri)
	if err != nil {
		return
	}
	doc, err := ls.workspace.Update(path, text)
	if err != nil {
		log.Debugf("%s", err)
		return
	}
	ls.publishDiagnostics(ctx, uri, toDiagnostics(doc))
}

func (ls *LSPServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.publishDiagnostics(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
		return nil
	}
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if doc, err := ls.workspace.Open(path); err == nil {
		ls.publishDiagnostics(ctx, params.TextDocument.URI, toDiagnostics(doc))
	}
	return nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc := ls.workspace.Get(path)
	if doc == nil {
		return nil, nil
	}
	return toDocumentSymbols(doc.Outline()), nil
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	decls := ls.workspace.DefinitionAt(path, int(params.Position.Line)+1, int(params.Position.Character))
	if len(decls) == 0 {
		return nil, nil
	}
	return toLocations(decls), nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc := ls.workspace.Get(path)
	if doc == nil {
		return nil, nil
	}
	offset := doc.Lines().Offset(int(params.Position.Line)+1, int(params.Position.Character))
	prefix := strings.TrimLeft(PrefixAt(doc.Text, offset), `$\`)

	completions := ls.workspace.Completions(prefix)
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toCompletionKind(c.Kind)
		detail := c.Detail
		items = append(items, protocol.CompletionItem{
			Label:  c.Label,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items, nil
}

// toDiagnostics marks each structural error with a one-character range at
// the offending symbol.
func toDiagnostics(doc *Document) []protocol.Diagnostic {
	errs := doc.Errors()
	out := make([]protocol.Diagnostic, 0, len(errs))
	severity := protocol.DiagnosticSeverityError
	source := lsName
	for _, e := range errs {
		out = append(out, protocol.Diagnostic{
			Range:    errorRange(doc, e),
			Severity: &severity,
			Source:   &source,
			Message:  e.Text,
		})
	}
	return out
}

func errorRange(doc *Document, e lang.Error) protocol.Range {
	line := protocol.UInteger(max(e.Line-1, 0))
	col := protocol.UInteger(doc.Lines().Column(e.Symbol))
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: col},
		End:   protocol.Position{Line: line, Character: col + 1},
	}
}

func lineRange(line int) protocol.Range {
	pos := protocol.Position{Line: protocol.UInteger(max(line-1, 0))}
	return protocol.Range{Start: pos, End: pos}
}

func toDocumentSymbols(symbols []outline.Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, s := range symbols {
		sym := protocol.DocumentSymbol{
			Name:           s.Name,
			Kind:           toSymbolKind(s.Kind),
			Range:          lineRange(s.Line),
			SelectionRange: lineRange(s.Line),
		}
		if s.Detail != "" {
			detail := s.Detail
			sym.Detail = &detail
		}
		if len(s.Children) > 0 {
			sym.Children = toDocumentSymbols(s.Children)
		}
		out = append(out, sym)
	}
	return out
}

func toLocations(decls []index.Declaration) []protocol.Location {
	out := make([]protocol.Location, 0, len(decls))
	for _, d := range decls {
		out = append(out, protocol.Location{
			URI:   pathToURI(d.Path),
			Range: lineRange(d.Line),
		})
	}
	return out
}

func toSymbolKind(kind outline.Kind) protocol.SymbolKind {
	switch kind {
	case outline.KindNamespace:
		return protocol.SymbolKindNamespace
	case outline.KindImport:
		return protocol.SymbolKindModule
	case outline.KindClass, outline.KindTrait:
		return protocol.SymbolKindClass
	case outline.KindInterface:
		return protocol.SymbolKindInterface
	case outline.KindEnum:
		return protocol.SymbolKindEnum
	case outline.KindFunction:
		return protocol.SymbolKindFunction
	case outline.KindMethod:
		return protocol.SymbolKindMethod
	case outline.KindProperty:
		return protocol.SymbolKindProperty
	case outline.KindConstant:
		return protocol.SymbolKindConstant
	case outline.KindSelector, outline.KindKeyframes, outline.KindFont:
		return protocol.SymbolKindKey
	case outline.KindMedia:
		return protocol.SymbolKindNamespace
	default:
		return protocol.SymbolKindVariable
	}
}

func toCompletionKind(kind outline.Kind) protocol.CompletionItemKind {
	switch kind {
	case outline.KindClass, outline.KindTrait, outline.KindEnum:
		return protocol.CompletionItemKindClass
	case outline.KindInterface:
		return protocol.CompletionItemKindInterface
	case outline.KindFunction:
		return protocol.CompletionItemKindFunction
	case outline.KindMethod:
		return protocol.CompletionItemKindMethod
	case outline.KindProperty:
		return protocol.CompletionItemKindProperty
	case outline.KindConstant:
		return protocol.CompletionItemKindConstant
	case outline.KindVariable:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}

func uriToPath(uri protocol.DocumentUri) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
