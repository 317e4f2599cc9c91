package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"electric, sedan", []string{"electric", "sedan"}},
		{"  suv ,4x4,  ", []string{"suv", "4x4"}},
		{"", []string{}},
		{" , ,", []string{}},
		{"classic", []string{"classic"}},
		{"b,a,b", []string{"b", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.raw))
		})
	}
}
