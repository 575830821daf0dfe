package control

import (
	"bytes"
	"testing"

	"github.com/halvorsen-audio/patchrack/pkg/graph"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	_ "github.com/halvorsen-audio/patchrack/pkg/modules"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	osc "github.com/hypebeast/go-osc/osc"
)

func newTestGraphWithVCA(t *testing.T) (*graph.Graph, string) {
	t.Helper()
	reg := registry.Global()
	require.True(t, reg.Has("vca"))

	mod, err := reg.Create("vca", "v1", "", 48000)
	require.NoError(t, err)

	g := graph.New(48000, 480)
	g.Append("v1", mod)
	return g, "v1"
}

func TestOSCRouteSetsKnownParam(t *testing.T) {
	g, alias := newTestGraphWithVCA(t)
	var logBuf bytes.Buffer
	s := &OSCServer{g: g, logOut: &logBuf}

	msg := osc.NewMessage("/" + alias + "/level")
	msg.Append(float32(0.25))
	s.route(msg)

	node, ok := g.Lookup(alias)
	require.True(t, ok)
	host, ok := node.Mod.(module.ParamHost)
	require.True(t, ok)
	assert.Equal(t, 0.25, host.Params().Get("level"))
}

func TestOSCRouteIgnoresUnknownAlias(t *testing.T) {
	g, _ := newTestGraphWithVCA(t)
	var logBuf bytes.Buffer
	s := &OSCServer{g: g, logOut: &logBuf}

	msg := osc.NewMessage("/nope/level")
	msg.Append(float32(0.5))
	s.route(msg)

	assert.Contains(t, logBuf.String(), "unknown alias")
}

func TestOSCRouteRejectsMalformedAddress(t *testing.T) {
	g, _ := newTestGraphWithVCA(t)
	var logBuf bytes.Buffer
	s := &OSCServer{g: g, logOut: &logBuf}

	msg := osc.NewMessage("/onlyonesegment")
	msg.Append(float32(0.5))
	s.route(msg)

	assert.Contains(t, logBuf.String(), "not /<alias>/<param>")
}

func TestAsFloat(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{float32(1.5), 1.5, true},
		{float64(2.5), 2.5, true},
		{int32(3), 3, true},
		{int64(4), 4, true},
		{"5.5", 5.5, true},
		{"not-a-number", 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := asFloat(tc.in)
		assert.Equal(t, tc.ok, ok)
		if ok {
			assert.InDelta(t, tc.want, got, 1e-9)
		}
	}
}
