package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOTPEmail(t *testing.T) {
	body, err := RenderOTPEmail("042917", 5*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, body, "<strong>042917</strong>")
	assert.Contains(t, body, "expires in 5 minutes")
}
