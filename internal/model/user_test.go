package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignupSessionReached(t *testing.T) {
	tests := []struct {
		current string
		step    string
		want    bool
	}{
		{SignupStepStart, SignupStepStart, true},
		{SignupStepStart, SignupStepOTPVerified, false},
		{SignupStepOTPVerified, SignupStepOTPVerified, true},
		{SignupStepUsernameSet, SignupStepOTPVerified, true},
		{SignupStepOTPVerified, SignupStepUsernameSet, false},
		{"", SignupStepStart, false},
		{"unknown", SignupStepStart, false},
	}

	for _, tt := range tests {
		session := SignupSession{Step: tt.current}
		assert.Equal(t, tt.want, session.Reached(tt.step), "%q reached %q", tt.current, tt.step)
	}
}
