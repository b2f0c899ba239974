package model

import (
	"time"

	"github.com/google/uuid"
)

// Signup steps, in the order a session moves through them.
const (
	SignupStepStart       = "start_signup"
	SignupStepOTPVerified = "otp_verified"
	SignupStepUsernameSet = "username_set"
)

var signupStepRank = map[string]int{
	SignupStepStart:       1,
	SignupStepOTPVerified: 2,
	SignupStepUsernameSet: 3,
}

// SignupSession is the Redis hash that carries an account through signup
// until the password step creates the user row.
type SignupSession struct {
	Id           uuid.UUID `redis:"-"`
	Email        string    `redis:"email"`
	OTPHash      string    `redis:"otp_hash"`
	OTPExpiresAt int64     `redis:"otp_expires_at"`
	Step         string    `redis:"step"`
	Username     string    `redis:"username"`
	CreatedAt    int64     `redis:"created_at"`
}

// Reached reports whether the session finished step or any later one.
func (session SignupSession) Reached(step string) bool {
	rank, ok := signupStepRank[session.Step]
	return ok && rank >= signupStepRank[step]
}

type UserLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserSignupStartRequest struct {
	Email string `json:"email"`
}

type UserVerifyOTPRequest struct {
	SessionId string `json:"sessionId"`
	OTP       string `json:"otp"`
}

type UserVerifyUsernameRequest struct {
	SessionId string `json:"sessionId"`
	Username  string `json:"username"`
}

type UserVerifyPasswordRequest struct {
	SessionId string `json:"sessionId"`
	Password  string `json:"password"`
}

type UserSignupStartResponse struct {
	SessionId    uuid.UUID `json:"sessionId"`
	OtpExpiresAt int64     `json:"otpExpiresAt"`
}

type UserSignupStatus struct {
	SessionId uuid.UUID `json:"sessionId"`
	Step      string    `json:"step"`
}

type UserResponse struct {
	Id             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	AvatarImage    *string   `json:"avatarImage"`
	CreateDatetime time.Time `json:"createDatetime"`
	UpdateDatetime time.Time `json:"updateDatetime"`
}

type User struct {
	Id             uuid.UUID
	Username       string
	Email          string
	Password       string
	AvatarImage    *string
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}
