package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"boiler":   "boiler",
		"%%":       `\%\%`,
		"__":       `\_\_`,
		`50%_off\`: `50\%\_off\\`,
		"o'brien":  "o'brien",
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeLike(in), in)
	}
}
