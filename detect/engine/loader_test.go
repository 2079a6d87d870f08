package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"nidscore/detect/keywords"
	"nidscore/observability"
	"nidscore/spm"
	"nidscore/testutils"
	"nidscore/varname"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLoaderFileSystem struct {
	files map[string]string
}

func (fs *mockLoaderFileSystem) ReadFile(name string) ([]byte, error) {
	s, ok := fs.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(s), nil
}

func (fs *mockLoaderFileSystem) Abs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Join("/rules", path), nil
}

func newTestLoader(t *testing.T, files map[string]string) SignatureLoader {
	b, err := spm.New(spm.Portable)
	require.NoError(t, err)

	c := keywords.NewCompiler(b, varname.NewStore())
	return NewSignatureLoader(testutils.NewTestLogger(t), c, &mockLoaderFileSystem{files: files}, observability.NewMetrics(prometheus.NewRegistry()))
}

func TestLoadSkipsBadSignatures(t *testing.T) {
	// Arrange
	l := newTestLoader(t, map[string]string{
		"/rules/a.yaml": `
- sid: 1
  msg: first
  rule: 'content:"abc";'
- sid: 2
  rule: 'isdataat:4,relative;'
- rule: 'content:"x"; sid:3; msg:"third";'
- sid: 4
  rule: 'content:"x";'
  disabled: true
- sid: 5
  rule: 'content:"x"; sid:6;'
`,
		"/rules/b.yaml": `
- sid: 1
  rule: 'content:"dup";'
- sid: 7
  rule: 'flowvar_set:user,"admin";'
`,
	})

	// Act
	sigs, stats, err := l.Load([]string{"a.yaml", "b.yaml", "/rules/a.yaml"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Files: 2, Loaded: 3, Failed: 3, Disabled: 1}, stats)

	var ids []uint32
	for _, s := range sigs {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []uint32{1, 3, 7}, ids)
	assert.Equal(t, "first", sigs[0].Msg)
	assert.Equal(t, "third", sigs[1].Msg)
}

func TestLoadFileErrors(t *testing.T) {
	l := newTestLoader(t, map[string]string{"/rules/bad.yaml": "- sid: [1"})

	_, _, err := l.Load([]string{"missing.yaml"})
	assert.Error(t, err)

	_, _, err = l.Load([]string{"bad.yaml"})
	assert.Error(t, err)
}

func TestLoadManySignatures(t *testing.T) {
	var s string
	for i := 1; i <= 100; i++ {
		s += fmt.Sprintf("- rule: 'content:\"pattern%d\"; sid:%d;'\n", i, i)
	}
	l := newTestLoader(t, map[string]string{"/rules/many.yaml": s})

	sigs, stats, err := l.Load([]string{"many.yaml"})

	require.NoError(t, err)
	assert.Len(t, sigs, 100)
	assert.Equal(t, 0, stats.Failed)
}
