package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"nidscore/detect/ast"
	"nidscore/detect/keywords"
	"nidscore/observability"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// SignatureEntry is one signature in a signature file.
type SignatureEntry struct {
	// SID is used when the rule does not carry a sid keyword. When both are set they must agree.
	SID      uint32 `yaml:"sid"`
	Msg      string `yaml:"msg"`
	Rule     string `yaml:"rule"`
	Disabled bool   `yaml:"disabled"`
}

// LoadStats summarizes one load.
type LoadStats struct {
	Files    int
	Loaded   int
	Failed   int
	Disabled int
}

// SignatureLoader reads signature files and compiles them.
type SignatureLoader interface {
	// Load compiles every signature of paths. Signatures that fail to compile are logged and skipped;
	// only unreadable or unparsable files are errors.
	Load(paths []string) (sigs []*ast.Signature, stats LoadStats, err error)
}

// LoaderFileSystem is what the loader needs from the file system.
type LoaderFileSystem interface {
	ReadFile(name string) ([]byte, error)
	Abs(path string) (string, error)
}

// LoaderFileSystemImpl reads from the host file system.
type LoaderFileSystemImpl struct{}

// ReadFile reads a whole file.
func (fs *LoaderFileSystemImpl) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// Abs returns an absolute path.
func (fs *LoaderFileSystemImpl) Abs(path string) (string, error) { return filepath.Abs(path) }

type signatureLoaderImpl struct {
	logger   zerolog.Logger
	compiler keywords.Compiler
	fs       LoaderFileSystem
	metrics  *observability.Metrics
}

// NewSignatureLoader creates a SignatureLoader. metrics may be nil.
func NewSignatureLoader(logger zerolog.Logger, compiler keywords.Compiler, fs LoaderFileSystem, metrics *observability.Metrics) SignatureLoader {
	return &signatureLoaderImpl{
		logger:   logger,
		compiler: compiler,
		fs:       fs,
		metrics:  metrics,
	}
}

func (l *signatureLoaderImpl) Load(paths []string) (sigs []*ast.Signature, stats LoadStats, err error) {
	seen := make(map[uint32]string)
	visited := make(map[string]bool)

	for _, p := range paths {
		var abs string
		abs, err = l.fs.Abs(p)
		if err != nil {
			err = errors.Wrapf(err, "signature file %s", p)
			return
		}
		if visited[abs] {
			l.logger.Warn().Str("file", p).Msg("Skipping signature file listed twice")
			continue
		}
		visited[abs] = true

		var entries []SignatureEntry
		entries, err = l.readFile(abs)
		if err != nil {
			return
		}

		loaded, failed := 0, 0
		for i, e := range entries {
			if e.Disabled {
				stats.Disabled++
				continue
			}

			s, cerr := l.compileEntry(e)
			if cerr == nil {
				if other, dup := seen[s.ID]; dup {
					cerr = fmt.Errorf("duplicate sid, first defined in %s", other)
				}
			}
			if cerr != nil {
				failed++
				l.logger.Warn().Str("file", p).Int("entry", i).Uint32("sid", e.SID).Err(cerr).Msg("Skipping signature that failed to compile")
				continue
			}

			seen[s.ID] = p
			sigs = append(sigs, s)
			loaded++
		}

		l.logger.Info().Str("file", p).Int("loaded", loaded).Int("failed", failed).Msg("Loaded signature file")
		l.metrics.ObserveLoad(p, loaded, failed)
		stats.Files++
		stats.Loaded += loaded
		stats.Failed += failed
	}

	return
}

func (l *signatureLoaderImpl) readFile(path string) (entries []SignatureEntry, err error) {
	bb, err := l.fs.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read signature file %s", path)
		return
	}

	if err = yaml.Unmarshal(bb, &entries); err != nil {
		err = errors.Wrapf(err, "failed to parse signature file %s", path)
		return
	}

	return
}

func (l *signatureLoaderImpl) compileEntry(e SignatureEntry) (s *ast.Signature, err error) {
	s, err = l.compiler.Compile(e.Rule)
	if err != nil {
		return
	}

	switch {
	case s.ID == 0 && e.SID == 0:
		err = errors.New("signature has no sid")
	case s.ID == 0:
		s.ID = e.SID
	case e.SID != 0 && e.SID != s.ID:
		err = fmt.Errorf("sid %d does not match rule sid %d", e.SID, s.ID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "signature %d", e.SID)
	}

	if s.Msg == "" {
		s.Msg = e.Msg
	}

	return
}
