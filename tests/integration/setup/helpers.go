package setup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TruncateAllTables empties every table, children first.
func TruncateAllTables(t *testing.T, db *pgxpool.Pool, ctx context.Context) {
	tables := []string{
		"post_upvotes",
		"post_comments",
		"posts",
		"group_images",
		"groups",
		"users",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}
}

// CreateTestPNGImage encodes a small solid PNG the image pipeline can convert.
func CreateTestPNGImage(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 255, G: 69, B: 0, A: 255})
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	return buf.Bytes()
}

type FormFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

// CreateMultipartFormData builds a multipart body. file may be nil.
func CreateMultipartFormData(t *testing.T, fields map[string]string, file *FormFile) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value), "failed to write form field %s", key)
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, file.FieldName, file.FileName))
		header.Set("Content-Type", file.ContentType)

		part, err := writer.CreatePart(header)
		require.NoError(t, err, "failed to create form file part")

		_, err = part.Write(file.Data)
		require.NoError(t, err, "failed to write file data")
	}

	require.NoError(t, writer.Close(), "failed to close multipart writer")

	return body, writer.FormDataContentType()
}

func CreateJSONRequest(method, url string, jsonBody []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func CreateAuthRequest(method, url string, jsonBody []byte, token string) *http.Request {
	req := CreateJSONRequest(method, url, jsonBody)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

func CreateAuthMultipartRequest(method, url string, body *bytes.Buffer, contentType string, token string) *http.Request {
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

// MustJSON marshals v or fails the test.
func MustJSON(t *testing.T, v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// Do sends req through the app with a timeout generous enough for image
// conversion and SMTP delivery.
func Do(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	require.NoError(t, err, "request %s %s should complete", req.Method, req.URL.Path)
	return resp
}

// DecodeJSON reads the response body into out and closes it.
func DecodeJSON(t *testing.T, resp *http.Response, out any) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NotEmpty(t, body, "response body should not be empty")
	require.NoError(t, json.Unmarshal(body, out), "failed to parse JSON response: %s", body)
}

func ParseJSONResponse(t *testing.T, resp *http.Response) map[string]any {
	var result map[string]any
	DecodeJSON(t, resp, &result)
	return result
}

// ErrorResponse is the body every failed request returns under "error".
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

func ParseErrorResponse(t *testing.T, resp *http.Response) ErrorResponse {
	var envelope struct {
		Error *ErrorResponse `json:"error"`
	}
	DecodeJSON(t, resp, &envelope)
	require.NotNil(t, envelope.Error, "response should contain error field")

	return *envelope.Error
}

// RequireError asserts the status and error code of a failed response.
func RequireError(t *testing.T, resp *http.Response, status int, code string, param string) ErrorResponse {
	t.Helper()

	require.Equal(t, status, resp.StatusCode)
	errResp := ParseErrorResponse(t, resp)
	require.Equal(t, code, errResp.Code, "unexpected error: %s", errResp.Message)
	if param != "" {
		require.Equal(t, param, errResp.Param)
	}

	return errResp
}

type mailhogMessage struct {
	Content struct {
		Headers map[string][]string `json:"Headers"`
		Body    string              `json:"Body"`
	} `json:"Content"`
}

var otpPattern = regexp.MustCompile(`<strong>(\d{6})</strong>`)

// GetOTPFromMailhog polls MailHog until a message addressed to email arrives
// and returns the OTP inside it.
func GetOTPFromMailhog(t *testing.T, mailhogURL, email string) string {
	apiURL := fmt.Sprintf("%s/api/v1/messages", mailhogURL)

	for attempt := 0; attempt < 20; attempt++ {
		// #nosec G107 -- MailHog test container
		resp, err := http.Get(apiURL)
		require.NoError(t, err, "failed to fetch messages from MailHog")

		var messages []mailhogMessage
		DecodeJSON(t, resp, &messages)

		for _, message := range messages {
			recipients := message.Content.Headers["To"]
			if !slices.ContainsFunc(recipients, func(to string) bool { return strings.Contains(to, email) }) {
				continue
			}

			// gomail sends html as quoted-printable
			body := strings.ReplaceAll(message.Content.Body, "=\r\n", "")
			matches := otpPattern.FindStringSubmatch(body)
			if len(matches) > 1 {
				return matches[1]
			}
		}

		time.Sleep(250 * time.Millisecond)
	}

	require.Failf(t, "otp not delivered", "no OTP email for %s", email)
	return ""
}

func GenerateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		// #nosec G404 -- test data only
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
