package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

type DiagnosticKind uint8

const (
	UnterminatedLiteral DiagnosticKind = iota
	ModuleNotFound
	BinaryPackageSkipped
	AmbiguousGuardBlock
	WildcardImport
	ModuleAliasDropped
	ReadFailed
	CycleBroken
	SyntaxError
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnterminatedLiteral:
		return "unterminated-literal"
	case ModuleNotFound:
		return "not-found"
	case BinaryPackageSkipped:
		return "binary-package"
	case AmbiguousGuardBlock:
		return "ambiguous-guard-block"
	case WildcardImport:
		return "wildcard-import"
	case ModuleAliasDropped:
		return "module-alias-dropped"
	case ReadFailed:
		return "read-failed"
	case CycleBroken:
		return "cycle"
	case SyntaxError:
		return "syntax-error"
	}
	return "unknown"
}

// Diagnostic is a non fatal finding attached to a file position.
type Diagnostic struct {
	Kind    DiagnosticKind
	Path    string
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s (%s)", d.Path, d.Line, d.Message, d.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Path, d.Message, d.Kind)
}

// DiagnosticSink collects diagnostics and logs them as they arrive.
type DiagnosticSink struct {
	mu     sync.Mutex
	items  []Diagnostic
	logger *log.Logger
}

func NewDiagnosticSink(logger *log.Logger) *DiagnosticSink {
	return &DiagnosticSink{logger: logger}
}

func (s *DiagnosticSink) Add(d Diagnostic) {
	s.mu.Lock()
	s.items = append(s.items, d)
	s.mu.Unlock()

	if s.logger == nil {
		return
	}
	keyvals := []interface{}{"kind", d.Kind.String(), "path", d.Path}
	if d.Line > 0 {
		keyvals = append(keyvals, "line", d.Line)
	}
	// cycles are expected in real code bases, they only matter when debugging
	if d.Kind == CycleBroken {
		s.logger.Debug(d.Message, keyvals...)
		return
	}
	s.logger.Warn(d.Message, keyvals...)
}

func (s *DiagnosticSink) Items() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

func NewLogger(w io.Writer, verbose bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "python-inliner",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// discardLogger is used where no output is wanted, mostly in tests.
func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
