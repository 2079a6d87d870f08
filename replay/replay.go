// Package replay reads packets from a YAML capture description so signatures can be exercised without a live
// capture.
package replay

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"nidscore/detect"
	"nidscore/detect/ast"
	"nidscore/encoding"
	"nidscore/flow"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the top level of a replay file.
type File struct {
	Packets []Packet `yaml:"packets"`
}

// Packet is one packet of a replay file.
type Packet struct {
	Proto string `yaml:"proto"`
	// Src and Dst are host:port.
	Src string `yaml:"src"`
	Dst string `yaml:"dst"`

	// Payload is text. PayloadHex, when set, replaces it with hex-encoded bytes; spaces are ignored.
	Payload    string `yaml:"payload"`
	PayloadHex string `yaml:"payloadHex"`

	// HTTP buffers keyed by list name, such as http_uri. http_uri and http_host are derived from http_raw_uri
	// and http_raw_host when only the raw form is given.
	HTTP map[string]string `yaml:"http"`

	DCE      bool   `yaml:"dce"`
	DCEStub  string `yaml:"dceStub"`
	DCEIface string `yaml:"dceIface"`
}

// Load reads a replay file.
func Load(path string) ([]*detect.Packet, error) {
	bb, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read replay file %s", path)
	}

	pkts, err := Parse(bb)
	if err != nil {
		return nil, errors.Wrapf(err, "replay file %s", path)
	}
	return pkts, nil
}

// Parse converts replay text into packets.
func Parse(data []byte) (pkts []*detect.Packet, err error) {
	var f File
	if err = yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse replay file")
	}

	for i, p := range f.Packets {
		var pkt *detect.Packet
		pkt, err = p.toPacket()
		if err != nil {
			return nil, errors.Wrapf(err, "packet %d", i)
		}
		pkts = append(pkts, pkt)
	}

	return
}

func (p Packet) toPacket() (*detect.Packet, error) {
	key := flow.Key{Proto: strings.ToLower(p.Proto)}
	if key.Proto == "" {
		key.Proto = "tcp"
	}

	var err error
	if key.SrcIP, key.SrcPort, err = splitEndpoint(p.Src); err != nil {
		return nil, errors.Wrap(err, "src")
	}
	if key.DstIP, key.DstPort, err = splitEndpoint(p.Dst); err != nil {
		return nil, errors.Wrap(err, "dst")
	}

	pkt := &detect.Packet{
		FlowKey:  key,
		Payload:  []byte(p.Payload),
		IsDCE:    p.DCE || p.DCEStub != "" || p.DCEIface != "",
		DCEIface: p.DCEIface,
	}

	if p.PayloadHex != "" {
		if pkt.Payload, err = hex.DecodeString(strings.Join(strings.Fields(p.PayloadHex), "")); err != nil {
			return nil, errors.Wrap(err, "payloadHex")
		}
	}

	if pkt.IsDCE {
		pkt.DCEStub = []byte(p.DCEStub)
	}

	if len(p.HTTP) > 0 {
		pkt.HTTP = make(map[ast.ListID][]byte, len(p.HTTP))
		for name, v := range p.HTTP {
			l, ok := ast.ListFromName(name)
			if !ok || !l.IsHTTP() {
				return nil, fmt.Errorf("unknown http buffer %q", name)
			}
			pkt.HTTP[l] = []byte(v)
		}
		deriveNormalized(pkt.HTTP, ast.ListHTTPRawURI, ast.ListURI, encoding.NormalizeURI)
		deriveNormalized(pkt.HTTP, ast.ListHTTPRawHost, ast.ListHTTPHost, encoding.NormalizeHost)
	}

	return pkt, nil
}

// deriveNormalized fills the normalized buffer from its raw form when only the raw one is given.
func deriveNormalized(bufs map[ast.ListID][]byte, raw, normalized ast.ListID, normalize func([]byte) []byte) {
	if _, ok := bufs[normalized]; ok {
		return
	}
	if r, ok := bufs[raw]; ok {
		bufs[normalized] = normalize(r)
	}
}

func splitEndpoint(s string) (ip string, port uint16, err error) {
	if s == "" {
		return "", 0, nil
	}

	host, ps, err := net.SplitHostPort(s)
	if err != nil {
		return
	}

	v, err := strconv.ParseUint(ps, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("port %q: %w", ps, err)
	}
	return host, uint16(v), nil
}

// Feed sends pkts on out in order and closes out. It stops early when ctx is cancelled.
func Feed(ctx context.Context, pkts []*detect.Packet, out chan<- *detect.Packet) error {
	defer close(out)

	for _, p := range pkts {
		select {
		case out <- p:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
