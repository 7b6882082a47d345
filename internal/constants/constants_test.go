package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSection_IsValid(t *testing.T) {
	for _, section := range Sections() {
		assert.True(t, section.IsValid(), section.String())
	}

	assert.False(t, Section("formatter").IsValid(), "section names are case sensitive")
	assert.False(t, Section("Handler").IsValid())
}

func TestSections_ResolutionOrder(t *testing.T) {
	assert.Equal(t, []Section{SectionFormatter, SectionOutstream, SectionLogger}, Sections())
}
