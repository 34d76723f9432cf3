package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := map[string]string{
		"王小明":                          "王小明",
		"  <b>Senior</b>   engineer\t": "Senior engineer",
		"&lt;script&gt;x&lt;/script&gt;": "x",
		"a &amp; b":                      "a & b",
		"":                               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Text(in), in)
	}
}
