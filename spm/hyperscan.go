//go:build cgo && hyperscan

package spm

import (
	"bytes"
	"errors"
	"fmt"

	hs "github.com/flier/gohs/hyperscan"
)

// Hyperscan is the name of the Hyperscan backed search. Only available when built with the hyperscan tag.
const Hyperscan = "hyperscan"

const scratchPoolSize = 64

var errStopScan = errors.New("stop scan")

func init() {
	Register(Hyperscan, func() (Backend, error) { return hyperscanBackend{}, nil })
}

type hyperscanBackend struct{}

func (hyperscanBackend) Name() string { return Hyperscan }

func (hyperscanBackend) Compile(needle []byte, nocase bool) (Pattern, error) {
	if len(needle) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}

	p := hs.NewPattern(escapeLiteral(needle), hs.SomLeftMost)
	if nocase {
		p.Flags |= hs.Caseless
	}

	db, err := hs.NewBlockDatabase(p)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Hyperscan database for pattern %q: %v", needle, err)
	}

	scratch, err := hs.NewScratch(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create Hyperscan scratch space: %v", err)
	}

	hp := &hyperscanPattern{
		db:      db,
		n:       len(needle),
		scratch: make(chan *hs.Scratch, scratchPoolSize),
	}
	hp.scratch <- scratch
	return hp, nil
}

// escapeLiteral writes every byte as \xHH so that the needle is matched literally.
func escapeLiteral(needle []byte) string {
	var b bytes.Buffer
	for _, c := range needle {
		fmt.Fprintf(&b, "\\x%02X", c)
	}
	return b.String()
}

type hyperscanPattern struct {
	db      hs.BlockDatabase
	n       int
	scratch chan *hs.Scratch
}

func (p *hyperscanPattern) Len() int { return p.n }

func (p *hyperscanPattern) Index(haystack []byte) (int, error) {
	if len(haystack) < p.n {
		return -1, nil
	}

	s, err := p.getScratch()
	if err != nil {
		return -1, fmt.Errorf("failed to allocate Hyperscan scratch: %v", err)
	}
	defer p.putScratch(s)

	pos := -1
	handler := func(id uint, from, to uint64, flags uint, context interface{}) error {
		pos = int(from)
		return errStopScan
	}

	err = p.db.Scan(haystack, s, handler, nil)
	if err != nil && pos == -1 {
		return -1, fmt.Errorf("hyperscan scan failed: %v", err)
	}

	return pos, nil
}

func (p *hyperscanPattern) getScratch() (*hs.Scratch, error) {
	select {
	case s := <-p.scratch:
		return s, nil
	default:
		return hs.NewScratch(p.db)
	}
}

func (p *hyperscanPattern) putScratch(s *hs.Scratch) {
	select {
	case p.scratch <- s:
	default:
		s.Free()
	}
}
