package delimiter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brinkdata/csvstream/internal/delimiter"
)

func Test_Detect(t *testing.T) {
	tests := []struct {
		name    string
		sample  string
		expOK   bool
		expBest string
	}{
		{
			name:    "comma separated",
			sample:  "a,b,c\nd,e,f\ng,h,i\n",
			expOK:   true,
			expBest: ",",
		},
		{
			name:    "tab separated",
			sample:  "a\tb\tc\nd\te\tf\n",
			expOK:   true,
			expBest: "\t",
		},
		{
			name:    "pipe beats comma when rows contain a stray comma",
			sample:  "a|b,x|c\nd|e,y|f\ng|h,z|i\n",
			expOK:   true,
			expBest: "|",
		},
		{
			name:   "single column, no delimiter produces multiple fields",
			sample: "a\nb\nc\n",
			expOK:  false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			best, ok := delimiter.Detect(test.sample, delimiter.Options{})
			assert.Equal(t, test.expOK, ok)
			if test.expOK {
				assert.Equal(t, test.expBest, best)
			}
		})
	}
}

func Test_Detect_FinalChunk_NoTrailingNewline(t *testing.T) {
	// The whole input is one row with no trailing newline. Without
	// FinalChunk, that row would be withheld as a presumably-truncated
	// tail and every candidate would score as a single, unsplit field.
	best, ok := delimiter.Detect(`a,b,"c"`, delimiter.Options{FinalChunk: true})
	assert.True(t, ok)
	assert.Equal(t, ",", best)
}

func Test_Detect_NotFinalChunk_WithholdsTrailingRow(t *testing.T) {
	// Same shape, but the sample is explicitly a non-final prefix: the
	// trailing, newline-less row must not count toward scoring.
	best, ok := delimiter.Detect(`a,b,"c"`, delimiter.Options{})
	assert.False(t, ok)
	assert.Empty(t, best)
}
