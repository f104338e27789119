package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"math":    "%math%",
		"a_c":     `%a\_c%`,
		"100%":    `%100\%%`,
		`back\sl`: `%back\\sl%`,
		"":        "%%",
	}

	for in, want := range cases {
		assert.Equal(t, want, ContainsPattern(in), in)
	}
}
