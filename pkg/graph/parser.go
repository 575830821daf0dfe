package graph

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// ParseError reports a fatal patch-description problem, with enough
// context (line number and text) to let a user find the offending line.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("patch line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Parse reads a newline-separated patch description and builds a wired
// Graph, reg resolves type names to factories.
func Parse(r io.Reader, reg *registry.Registry, sampleRate float64, maxBlockSize int) (*Graph, error) {
	g := New(sampleRate, maxBlockSize)
	typeCounts := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		head := fields[0]
		typeName, alias, ok := strings.Cut(head, ":")
		explicitAlias := ok
		if !ok {
			alias = typeName
		}

		if !explicitAlias {
			typeCounts[typeName]++
			if n := typeCounts[typeName]; n > 1 {
				alias = fmt.Sprintf("%s%d", typeName, n)
			}
		}
		if _, exists := g.Lookup(alias); exists {
			return nil, &ParseError{lineNo, raw, fmt.Sprintf("duplicate alias %q", alias)}
		}

		var configParts []string
		var inTokens, cvTokens []string
		for _, tok := range fields[1:] {
			switch {
			case strings.HasPrefix(tok, "in="):
				inTokens = append(inTokens, strings.TrimPrefix(tok, "in="))
			case strings.HasPrefix(tok, "cv="):
				cvTokens = append(cvTokens, strings.TrimPrefix(tok, "cv="))
			default:
				configParts = append(configParts, tok)
			}
		}
		config := strings.Join(configParts, ",")

		if !reg.Has(typeName) {
			return nil, &ParseError{lineNo, raw, fmt.Sprintf("unknown module type %q", typeName)}
		}
		mod, err := reg.Create(typeName, alias, config, sampleRate)
		if err != nil {
			return nil, &ParseError{lineNo, raw, fmt.Sprintf("failed to create %q: %v", typeName, err)}
		}
		node := g.Append(alias, mod)

		for _, group := range inTokens {
			for _, srcAlias := range strings.Split(group, ",") {
				srcAlias = strings.TrimSpace(srcAlias)
				if srcAlias == "" {
					continue
				}
				src, ok := g.Lookup(srcAlias)
				if !ok {
					return nil, &ParseError{lineNo, raw, fmt.Sprintf("unknown or forward-referenced alias %q", srcAlias)}
				}
				out, ok := src.Mod.(module.HasAudioOutput)
				if !ok || out.AudioOutput() == nil {
					return nil, &ParseError{lineNo, raw, fmt.Sprintf("alias %q has no audio output", srcAlias)}
				}
				if len(node.AudioInputs) >= module.MaxInputs {
					return nil, &ParseError{lineNo, raw, fmt.Sprintf("module %q exceeds %d audio inputs", alias, module.MaxInputs)}
				}
				node.AudioInputs = append(node.AudioInputs, out.AudioOutput())
			}
		}

		for _, group := range cvTokens {
			for _, pair := range strings.Split(group, ",") {
				pair = strings.TrimSpace(pair)
				if pair == "" {
					continue
				}
				srcAlias, paramName, ok := strings.Cut(pair, ":")
				if !ok {
					return nil, &ParseError{lineNo, raw, fmt.Sprintf("malformed cv entry %q (want alias:param)", pair)}
				}
				src, ok := g.Lookup(srcAlias)
				if !ok {
					return nil, &ParseError{lineNo, raw, fmt.Sprintf("unknown or forward-referenced alias %q", srcAlias)}
				}
				out, ok := src.Mod.(module.HasControlOutput)
				if !ok || out.ControlOutput() == nil {
					return nil, &ParseError{lineNo, raw, fmt.Sprintf("alias %q has no control output", srcAlias)}
				}
				if host, ok := mod.(module.ParamHost); ok {
					if !host.Params().Has(paramName) {
						// Best-effort only: unknown cv:param names are
						// accepted and routed; the target may ignore them.
						// Not fatal.
						fmt.Fprintf(diagnosticsSink, "warning: patch line %d: %q has no parameter %q (routed anyway)\n", lineNo, alias, paramName)
					}
				}
				if len(node.ControlInputs) >= module.MaxControlInputs {
					return nil, &ParseError{lineNo, raw, fmt.Sprintf("module %q exceeds %d control inputs", alias, module.MaxControlInputs)}
				}
				node.ControlInputs = append(node.ControlInputs, ControlInput{Source: out.ControlOutput(), Param: paramName})
			}
		}

		if len(g.Nodes) > module.MaxModules {
			return nil, &ParseError{lineNo, raw, fmt.Sprintf("patch exceeds %d modules", module.MaxModules)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("patch is empty")
	}
	return g, nil
}

// diagnosticsSink is where non-fatal parse warnings go; discarded until
// SetDiagnosticsSink is called (cmd/patchrack wires its logger here).
var diagnosticsSink io.Writer = devNullWriter{}

// SetDiagnosticsSink redirects non-fatal parser warnings.
func SetDiagnosticsSink(w io.Writer) { diagnosticsSink = w }

type devNullWriter struct{}

func (devNullWriter) Write(p []byte) (int, error) { return len(p), nil }
