package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, OTPLength)

		for _, c := range otp {
			assert.True(t, c >= '0' && c <= '9', "otp should only hold digits: %s", otp)
		}
	}
}
