// Package control wires the three non-CV parameter sources — OSC, MIDI
// CC, and (via pkg/ui) keystrokes — onto the patch graph's modules.
// Grounded on the background-listener shape
// (a dedicated goroutine decoding a stream and calling back into shared
// state under lock) applied here to github.com/hypebeast/go-osc's server
// and gitlab.com/gomidi/midi/v2's port listener instead of an audio
// stream.
package control

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/halvorsen-audio/patchrack/pkg/graph"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	osc "github.com/hypebeast/go-osc/osc"
)

// OSCServer decodes incoming `/<alias>/<param> <float>` messages and
// dispatches them onto the matching module's SetParam. Unlike
// go-osc's StandardDispatcher, routing can't be registered per-address up
// front — aliases are only known once the patch is parsed — so OSCServer
// implements osc.Dispatcher itself and splits the address at dispatch
// time.
type OSCServer struct {
	g      *graph.Graph
	logOut io.Writer
	conn   net.PacketConn
}

// NewOSCServer binds the first free UDP port starting at basePort,
// incrementing until one succeeds. logOut receives the bound port
// announcement and any per-message diagnostics; normally os.Stderr.
func NewOSCServer(g *graph.Graph, basePort int, logOut io.Writer) (*OSCServer, error) {
	var lastErr error
	for port := basePort; port < basePort+256; port++ {
		conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", port))
		if err != nil {
			lastErr = err
			continue
		}
		fmt.Fprintf(logOut, "osc: listening on udp :%d\n", port)
		return &OSCServer{g: g, logOut: logOut, conn: conn}, nil
	}
	return nil, fmt.Errorf("osc: no free port in [%d, %d): %w", basePort, basePort+256, lastErr)
}

// Serve reads and dispatches packets until the connection is closed
// (normally from Close, called during engine shutdown). Meant to run on
// its own goroutine — dedicated OSC thread.
func (s *OSCServer) Serve() {
	buf := make([]byte, 65535)
	for {
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		pkt, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			fmt.Fprintf(s.logOut, "osc: malformed packet: %v\n", err)
			continue
		}
		s.dispatch(pkt)
	}
}

// Close stops Serve by closing the listening socket.
func (s *OSCServer) Close() error {
	return s.conn.Close()
}

func (s *OSCServer) dispatch(pkt osc.Packet) {
	switch p := pkt.(type) {
	case *osc.Message:
		s.route(p)
	case *osc.Bundle:
		for _, m := range p.Messages {
			s.route(m)
		}
	}
}

// route implements the `/<alias>/<param> <float>` address pattern:
// locate the module by alias and call SetParam(param, value).
// Unknown alias or param, or a non-float argument, is logged and
// dropped — OSC has no reply channel ("no reply; errors ...
// silently logged").
func (s *OSCServer) route(m *osc.Message) {
	parts := strings.Split(strings.TrimPrefix(m.Address, "/"), "/")
	if len(parts) != 2 {
		fmt.Fprintf(s.logOut, "osc: address %q is not /<alias>/<param>\n", m.Address)
		return
	}
	alias, paramName := parts[0], parts[1]
	if len(m.Arguments) != 1 {
		fmt.Fprintf(s.logOut, "osc: %s expects exactly one float argument\n", m.Address)
		return
	}

	value, ok := asFloat(m.Arguments[0])
	if !ok {
		fmt.Fprintf(s.logOut, "osc: %s argument is not numeric\n", m.Address)
		return
	}

	node, ok := s.g.Lookup(alias)
	if !ok {
		fmt.Fprintf(s.logOut, "osc: unknown alias %q\n", alias)
		return
	}
	setter, ok := node.Mod.(module.ParamSetter)
	if !ok {
		fmt.Fprintf(s.logOut, "osc: %q has no settable parameters\n", alias)
		return
	}
	setter.SetParam(paramName, value)
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
