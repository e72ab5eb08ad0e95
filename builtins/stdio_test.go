package builtins

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBinder struct {
	bound map[string]uint32
}

func newRecordingBinder() *recordingBinder {
	return &recordingBinder{bound: map[string]uint32{}}
}

func (r *recordingBinder) Bind(name string, v uint32) { r.bound[name] = v }

func TestStdio_PrintfFormatsDecimalCharAndHex(t *testing.T) {
	var out strings.Builder
	table := Register(strings.NewReader(""), &out)
	_, err := table["printf"].Invoke([]uint32{65, 65, 42}, []string{"char=%c dec=%d hex=%x"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "char=A dec=65 hex=2a", out.String())
}

func TestStdio_PrintfLiteralPercent(t *testing.T) {
	var out strings.Builder
	table := Register(strings.NewReader(""), &out)
	_, err := table["printf"].Invoke(nil, []string{"100%%"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "100%", out.String())
}

func TestStdio_PrintfNegativeNumberUsesSignedDecimal(t *testing.T) {
	var out strings.Builder
	table := Register(strings.NewReader(""), &out)
	_, err := table["printf"].Invoke([]uint32{0xFFFFFFFF}, []string{"%d"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "-1", out.String())
}

func TestStdio_ScanfBindsByPseudoAddress(t *testing.T) {
	var out strings.Builder
	table := Register(strings.NewReader("42\n"), &out)
	binder := newRecordingBinder()
	_, err := table["scanf"].Invoke(nil, []string{"%d"}, []string{"x"}, binder)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), binder.bound["x"])
}

func TestStdio_ScanfRejectsNonDecimalFormat(t *testing.T) {
	var out strings.Builder
	table := Register(strings.NewReader("1.5\n"), &out)
	binder := newRecordingBinder()
	_, err := table["scanf"].Invoke(nil, []string{"%f"}, []string{"x"}, binder)
	require.Error(t, err)
}

func TestStdio_ScanfArityMismatchErrors(t *testing.T) {
	var out strings.Builder
	table := Register(strings.NewReader("1 2\n"), &out)
	binder := newRecordingBinder()
	_, err := table["scanf"].Invoke(nil, []string{"%d %d"}, []string{"x"}, binder)
	require.Error(t, err)
}

func TestStdio_GetcharReadsOneByte(t *testing.T) {
	var out strings.Builder
	table := Register(strings.NewReader("A"), &out)
	v, err := table["getchar"].Invoke(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32('A'), v)
}

func TestStdio_RegisterDeclaresReturnAndArgTypes(t *testing.T) {
	table := Register(strings.NewReader(""), &strings.Builder{})
	assert.Nil(t, table["printf"].ArgTypes, "printf must bypass arity checking")
	assert.Equal(t, []string{}, table["getchar"].ArgTypes)
	assert.Equal(t, "char", table["getchar"].ReturnType)
}
