package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "glint-lsp"

// LspServer bridges LSP editor features to the compiler front end and the
// bound capability catalog. Diagnostics come from the parser and the
// static analyzer; completion and hover come from the catalog plus the
// current document's own functions.
type LspServer struct {
	cat *catalog.Catalog

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server over the given catalog. cat may be nil;
// diagnostics still work, completion and hover lose the capability items.
func NewLSP(cat *catalog.Catalog) *LspServer {
	s := &LspServer{
		cat:     cat,
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "Glint LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	// "_" completes mid-identifier so the capability and constant
	// namespaces surface as soon as their prefix is typed.
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "_"},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			text := whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, pos)
	if prefix == "" {
		return nil, nil
	}

	return s.complete(text, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	word := extractWord(text, pos)
	if word == "" {
		return nil, nil
	}

	return s.hover(text, word), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	word := extractWord(text, pos)
	if word == "" {
		return nil, nil
	}

	locations := s.definition(uri, text, word)
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

// --- Catalog- and document-backed logic ---

// glintKeywords are offered as completions alongside names.
var glintKeywords = []string{
	"let", "const", "function", "if", "else", "for", "while", "return",
	"true", "false", "null", "undefined",
}

func (s *LspServer) complete(text, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	lowerPrefix := strings.ToLower(prefix)

	// Capability names
	if s.cat != nil {
		for _, name := range s.cat.Names() {
			if strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
				kind := protocol.CompletionItemKindFunction
				detail := "capability"
				if desc, ok := s.cat.Capability(name); ok {
					detail = desc.Signature()
				}
				nameCopy := name
				items = append(items, protocol.CompletionItem{
					Label:      name,
					Kind:       &kind,
					Detail:     &detail,
					InsertText: &nameCopy,
				})
			}
		}

		// Constants
		for _, name := range s.cat.ConstantNames() {
			if strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
				val, _ := s.cat.Constant(name)
				kind := protocol.CompletionItemKindConstant
				detail := fmt.Sprintf("constant = %d", val)
				nameCopy := name
				items = append(items, protocol.CompletionItem{
					Label:      name,
					Kind:       &kind,
					Detail:     &detail,
					InsertText: &nameCopy,
				})
			}
		}
	}

	// Functions declared in the current document
	if res := compiler.Validate(text); res.Valid {
		for name, fn := range res.Program.Functions() {
			if strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
				kind := protocol.CompletionItemKindFunction
				detail := functionSignature(fn)
				nameCopy := name
				items = append(items, protocol.CompletionItem{
					Label:      name,
					Kind:       &kind,
					Detail:     &detail,
					InsertText: &nameCopy,
				})
			}
		}
	}

	// Keywords
	for _, kw := range glintKeywords {
		if strings.HasPrefix(kw, lowerPrefix) {
			kind := protocol.CompletionItemKindKeyword
			kwCopy := kw
			items = append(items, protocol.CompletionItem{
				Label:      kw,
				Kind:       &kind,
				InsertText: &kwCopy,
			})
		}
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	return items
}

func (s *LspServer) hover(text, word string) *protocol.Hover {
	// Capability namespace → descriptor lookup
	if catalog.IsCapabilityName(word) {
		if s.cat == nil {
			return nil
		}
		desc, ok := s.cat.Capability(word)
		if !ok {
			return nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**%s**\n\n", desc.Name)
		fmt.Fprintf(&b, "```\n%s\n```\n", desc.Signature())
		if desc.AliasOf != "" {
			fmt.Fprintf(&b, "\nAlias of `%s`\n", desc.AliasOf)
		}
		if desc.RuntimeName != "" {
			fmt.Fprintf(&b, "\nDispatches to `%s` at runtime\n", desc.RuntimeName)
		}

		return markdownHover(b.String())
	}

	// Constant namespace → constant table lookup
	if catalog.IsConstantName(word) {
		if s.cat == nil {
			return nil
		}
		val, ok := s.cat.Constant(word)
		if !ok {
			return nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**%s**\n\n", word)
		fmt.Fprintf(&b, "Constant value `%d` (0x%X)", val, val)

		return markdownHover(b.String())
	}

	// Anything else → a function declared in this document
	res := compiler.Validate(text)
	if !res.Valid {
		return nil
	}
	fn, ok := res.Program.Functions()[word]
	if !ok {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", fn.Name)
	fmt.Fprintf(&b, "```\n%s\n```\n", functionSignature(fn))
	fmt.Fprintf(&b, "\nDeclared at line %d", fn.Span().Start.Line)

	return markdownHover(b.String())
}

func (s *LspServer) definition(uri protocol.DocumentUri, text, word string) []protocol.Location {
	// Capabilities live in the host, not in any document; answer with a
	// virtual URI the editor can present.
	if catalog.IsCapabilityName(word) {
		if s.cat == nil {
			return nil
		}
		if _, ok := s.cat.Capability(word); !ok {
			return nil
		}
		return []protocol.Location{{
			URI:   protocol.DocumentUri(fmt.Sprintf("glint://capability/%s", word)),
			Range: rangeAt(compiler.Position{}, 0),
		}}
	}

	res := compiler.Validate(text)
	if !res.Valid {
		return nil
	}
	fn, ok := res.Program.Functions()[word]
	if !ok {
		return nil
	}

	sp := fn.Span()
	return []protocol.Location{{
		URI: uri,
		Range: protocol.Range{
			Start: lspPos(sp.Start),
			End:   lspPos(sp.End),
		},
	}}
}

// functionSignature renders a declaration head in annotation style.
func functionSignature(fn *compiler.FunctionDecl) string {
	var b strings.Builder
	b.WriteString(fn.Name)
	b.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Type != "" {
			b.WriteString(": ")
			b.WriteString(string(p.Type))
		}
	}
	b.WriteByte(')')
	if fn.ReturnType != "" {
		b.WriteString(": ")
		b.WriteString(string(fn.ReturnType))
	}
	return b.String()
}

func markdownHover(value string) *protocol.Hover {
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	var diagnostics []protocol.Diagnostic
	source := lspName

	res := compiler.Validate(text)
	if !res.Valid {
		severity := protocol.DiagnosticSeverityError
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    rangeAt(res.Err.Pos, res.Err.Len),
			Severity: &severity,
			Source:   &source,
			Message:  res.Err.Msg,
		})
	} else {
		a := compiler.NewAnalyzer()
		a.Analyze(res.Program)
		for _, d := range a.Diagnostics() {
			severity := protocol.DiagnosticSeverityError
			if d.Warning {
				severity = protocol.DiagnosticSeverityWarning
			}
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    rangeAt(d.Pos, 0),
				Severity: &severity,
				Source:   &source,
				Message:  d.Msg,
			})
		}
	}

	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// --- Position mapping ---

// lspPos converts a 1-based compiler position to a 0-based LSP position.
func lspPos(pos compiler.Position) protocol.Position {
	line := pos.Line - 1
	if line < 0 {
		line = 0
	}
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(col),
	}
}

// rangeAt builds a single-line range of the given length starting at pos.
func rangeAt(pos compiler.Position, length int) protocol.Range {
	start := lspPos(pos)
	if length < 0 {
		length = 0
	}
	return protocol.Range{
		Start: start,
		End: protocol.Position{
			Line:      start.Line,
			Character: start.Character + protocol.UInteger(length),
		},
	}
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}

	if start == col {
		return ""
	}

	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Find start
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}

	// Find end
	end := col
	for end < len(line) {
		ch := rune(line[end])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			end++
		} else {
			break
		}
	}

	if start == end {
		return ""
	}

	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
