package util

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed template/*.html
var TemplateFS embed.FS

var otpTemplate = template.Must(template.ParseFS(TemplateFS, "template/otp.html"))

// RenderOTPEmail fills the signup verification email body.
func RenderOTPEmail(otp string, validFor time.Duration) (string, error) {
	var body bytes.Buffer
	err := otpTemplate.Execute(&body, struct {
		OTP       string
		ExpiresIn int
	}{
		OTP:       otp,
		ExpiresIn: int(validFor.Minutes()),
	})
	if err != nil {
		return "", err
	}

	return body.String(), nil
}
