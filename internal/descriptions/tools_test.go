package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	assert.Equal(t, PDFRotateDescription, GetToolDescription("pdf_rotate"))
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_unknown"))
}

func TestToolDescriptions(t *testing.T) {
	assert.Len(t, ToolDescriptions, 12)
	for name, desc := range ToolDescriptions {
		assert.NotEmpty(t, desc, name)
		assert.Equal(t, desc, GetToolDescription(name))
	}
}
