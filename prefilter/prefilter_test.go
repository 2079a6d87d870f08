package prefilter

import (
	"testing"

	"nidscore/detect"
	"nidscore/detect/ast"
	"nidscore/detect/keywords"
	"nidscore/spm"
	"nidscore/varname"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileAll(t *testing.T, rules ...string) []*ast.Signature {
	t.Helper()
	b, err := spm.New(spm.Portable)
	require.NoError(t, err)

	c := keywords.NewCompiler(b, varname.NewStore())
	var sigs []*ast.Signature
	for _, r := range rules {
		s, err := c.Compile(r)
		require.NoError(t, err, r)
		sigs = append(sigs, s)
	}
	return sigs
}

func ids(sigs []*ast.Signature) (r []uint32) {
	for _, s := range sigs {
		r = append(r, s.ID)
	}
	return
}

func TestFastPattern(t *testing.T) {
	sigs := compileAll(t,
		`content:"ab"; content:"longer"; sid:1;`,
		`content:"xyz"; nocase; sid:2;`,
		`content:!"neg"; isdataat:3; sid:3;`,
		`content:"GET"; http_method; content:"x"; sid:4;`,
	)

	l, p := FastPattern(sigs[0])
	assert.Equal(t, ast.ListPayload, l)
	assert.Equal(t, "longer", string(p))

	_, p = FastPattern(sigs[1])
	assert.Nil(t, p)

	_, p = FastPattern(sigs[2])
	assert.Nil(t, p)

	l, p = FastPattern(sigs[3])
	assert.Equal(t, ast.ListHTTPMethod, l)
	assert.Equal(t, "GET", string(p))
}

func TestCandidates(t *testing.T) {
	// Arrange
	sigs := compileAll(t,
		`content:"attack"; sid:1;`,
		`isdataat:2; sid:2;`,
		`content:"other"; sid:3;`,
		`content:"attack"; content:"!"; sid:4;`,
		`content:"POST"; http_method; sid:5;`,
	)
	pf := New(sigs)

	// Act
	payloadOnly := pf.Candidates(&detect.Packet{Payload: []byte("an attack!")})
	withHTTP := pf.Candidates(&detect.Packet{
		Payload: []byte("nothing"),
		HTTP:    map[ast.ListID][]byte{ast.ListHTTPMethod: []byte("POST")},
	})

	// Assert
	assert.Equal(t, []uint32{1, 2, 4}, ids(payloadOnly))
	assert.Equal(t, []uint32{2, 5}, ids(withHTTP))
	assert.Equal(t, 3, pf.Patterns())
	assert.Equal(t, 1, pf.AlwaysCount())
}

func TestCandidatesEmpty(t *testing.T) {
	pf := New(nil)
	assert.Empty(t, pf.Candidates(&detect.Packet{Payload: []byte("x")}))
}
