package csvstream

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
)

func Test_ParseString_Basic(t *testing.T) {
	result, err := ParseString("a,b,c\nd,e,f\n", Config{})
	assert.NoError(t, err)
	assert.Equal(t, []any{
		[]string{"a", "b", "c"},
		[]string{"d", "e", "f"},
	}, result.Data)
	assert.Equal(t, ",", result.Meta.Delimiter)
	assert.Empty(t, result.Errs)
}

func Test_ParseString_NoTrailingNewline_QuotedLastField(t *testing.T) {
	result, err := ParseString(`a,b,"c"`, Config{})
	assert.NoError(t, err)
	assert.Equal(t, []any{[]string{"a", "b", "c"}}, result.Data)
	assert.Empty(t, result.Errs)
}

func Test_ParseString_Header(t *testing.T) {
	result, err := ParseString("id,name\n1,alice\n2,bob\n", Config{Header: true})
	assert.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, result.Meta.Fields)
	assert.Equal(t, []any{
		map[string]any{"id": "1", "name": "alice"},
		map[string]any{"id": "2", "name": "bob"},
	}, result.Data)
}

func Test_ParseString_Header_TooFewFields(t *testing.T) {
	result, err := ParseString("a,b,c\n1,2\n", Config{Header: true})
	assert.NoError(t, err)
	if assert.Len(t, result.Errs, 1) {
		assert.Equal(t, CodeTooFewFields, result.Errs[0].Code)
		assert.Equal(t, 0, *result.Errs[0].Row)
	}
}

func Test_ParseString_Header_TooManyFields(t *testing.T) {
	result, err := ParseString("a,b\n1,2,3,4\n", Config{Header: true})
	assert.NoError(t, err)
	if assert.Len(t, result.Errs, 1) {
		assert.Equal(t, CodeTooManyFields, result.Errs[0].Code)
	}
	record := result.Data[0].(map[string]any)
	assert.Equal(t, []string{"3", "4"}, record["__parsed_extra"])
}

func Test_ParseString_SkipEmptyLines(t *testing.T) {
	result, err := ParseString("a,b\n\nc,d\n", Config{SkipEmptyLines: SkipEmptyLinesStrict})
	assert.NoError(t, err)
	assert.Equal(t, []any{
		[]string{"a", "b"},
		[]string{"c", "d"},
	}, result.Data)
}

func Test_ParseString_Preview_Truncates(t *testing.T) {
	result, err := ParseString("a\nb\nc\nd\n", Config{Preview: 2})
	assert.NoError(t, err)
	assert.Len(t, result.Data, 2)
	assert.True(t, result.Meta.Truncated)
}

func Test_ParseString_MissingQuotes(t *testing.T) {
	result, err := ParseString(`a,"b,c`, Config{})
	assert.NoError(t, err)
	if assert.Len(t, result.Errs, 1) {
		assert.Equal(t, CodeMissingQuotes, result.Errs[0].Code)
		assert.Equal(t, 0, *result.Errs[0].Row)
	}
}

func Test_ParseString_DelimiterAutoDetect(t *testing.T) {
	result, err := ParseString("a;b;c\nd;e;f\n", Config{})
	assert.NoError(t, err)
	assert.Equal(t, ";", result.Meta.Delimiter)
}

func Test_ParseString_SkipFirstNLines(t *testing.T) {
	result, err := ParseString("# ignore me\n# and me\na,b\nc,d\n", Config{SkipFirstNLines: 2})
	assert.NoError(t, err)
	assert.Equal(t, []any{
		[]string{"a", "b"},
		[]string{"c", "d"},
	}, result.Data)
}

func Test_ParseString_Step_Abort(t *testing.T) {
	var seen []any
	cfg := Config{
		Step: func(r StepResult, abort *AbortHandle) {
			seen = append(seen, r.Data)
			abort.Abort()
		},
	}
	result, err := ParseString("a\nb\nc\n", cfg)
	assert.NoError(t, err)
	assert.Len(t, seen, 1)
	assert.True(t, result.Meta.Aborted)
}

func Test_ParseReader(t *testing.T) {
	result, err := ParseReader(strings.NewReader("a,b\nc,d\n"), Config{})
	assert.NoError(t, err)
	assert.Equal(t, []any{
		[]string{"a", "b"},
		[]string{"c", "d"},
	}, result.Data)
}

func Test_ParseReader_NilReader(t *testing.T) {
	_, err := ParseReader(nil, Config{})
	assert.ErrorIs(t, err, ErrReaderNil)
}

func Test_ParseString_Meta(t *testing.T) {
	const text = "id,name\n1,alice\n"
	result, err := ParseString(text, Config{Header: true})
	assert.NoError(t, err)

	expMeta := Meta{
		Delimiter: ",",
		Newline:   "\n",
		Cursor:    len(text),
		Fields:    []string{"id", "name"},
		NumBytes:  int64(len(text)),
	}
	if diff := deep.Equal(expMeta, result.Meta); diff != nil {
		t.Error(diff)
	}
}
