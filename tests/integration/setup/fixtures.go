package setup

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ferdian3456/threadit/internal/model"
	"github.com/stretchr/testify/require"
)

const TestPassword = "correct-horse-battery"

// StartSignup begins a signup and returns the session with the delivered OTP.
func (env *TestEnv) StartSignup(t *testing.T, email string) (model.UserSignupStartResponse, string) {
	req := CreateJSONRequest(http.MethodPost, "/api/auth/signup/start", MustJSON(t, model.UserSignupStartRequest{Email: email}))
	resp := Do(t, env.App, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, "signup start should succeed")

	var session model.UserSignupStartResponse
	DecodeJSON(t, resp, &session)
	require.NotEmpty(t, session.SessionId)

	return session, GetOTPFromMailhog(t, env.MailhogURL, email)
}

// SignupUser walks the whole signup flow and returns the issued tokens.
func (env *TestEnv) SignupUser(t *testing.T, username string) model.TokenResponse {
	t.Helper()

	email := fmt.Sprintf("%s@threadit.test", username)
	session, otp := env.StartSignup(t, email)
	sessionId := session.SessionId.String()

	resp := Do(t, env.App, CreateJSONRequest(http.MethodPost, "/api/auth/signup/otp",
		MustJSON(t, model.UserVerifyOTPRequest{SessionId: sessionId, OTP: otp})))
	require.Equal(t, http.StatusOK, resp.StatusCode, "otp verification should succeed")

	resp = Do(t, env.App, CreateJSONRequest(http.MethodPost, "/api/auth/signup/username",
		MustJSON(t, model.UserVerifyUsernameRequest{SessionId: sessionId, Username: username})))
	require.Equal(t, http.StatusOK, resp.StatusCode, "username step should succeed")

	resp = Do(t, env.App, CreateJSONRequest(http.MethodPost, "/api/auth/signup/password",
		MustJSON(t, model.UserVerifyPasswordRequest{SessionId: sessionId, Password: TestPassword})))
	require.Equal(t, http.StatusOK, resp.StatusCode, "password step should succeed")

	var token model.TokenResponse
	DecodeJSON(t, resp, &token)
	require.NotEmpty(t, token.AccessToken)

	return token
}

func (env *TestEnv) CreateGroup(t *testing.T, accessToken string, name string) model.GroupResponse {
	t.Helper()

	body, contentType := CreateMultipartFormData(t, map[string]string{"name": name}, nil)
	resp := Do(t, env.App, CreateAuthMultipartRequest(http.MethodPost, "/api/groups", body, contentType, accessToken))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create group should succeed")

	var group model.GroupResponse
	DecodeJSON(t, resp, &group)

	return group
}

func (env *TestEnv) CreatePost(t *testing.T, accessToken string, groupId string, title string) string {
	t.Helper()

	payload := model.PostCreateRequest{Title: title, GroupId: groupId}
	resp := Do(t, env.App, CreateAuthRequest(http.MethodPost, "/api/posts", MustJSON(t, payload), accessToken))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create post should succeed")

	var created model.PostCreateResponse
	DecodeJSON(t, resp, &created)

	return created.Id.String()
}

// CreateComment posts a comment, as a reply when parentId is not empty.
func (env *TestEnv) CreateComment(t *testing.T, accessToken string, postId string, parentId string, content string) model.Comment {
	t.Helper()

	payload := model.CommentCreateRequest{Content: content}
	if parentId != "" {
		payload.ParentId = &parentId
	}

	url := fmt.Sprintf("/api/posts/%s/comments", postId)
	resp := Do(t, env.App, CreateAuthRequest(http.MethodPost, url, MustJSON(t, payload), accessToken))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create comment should succeed")

	var comment model.Comment
	DecodeJSON(t, resp, &comment)

	return comment
}

func (env *TestEnv) GetCommentThread(t *testing.T, accessToken string, postId string, query string) (*http.Response, model.CommentThreadResponse) {
	t.Helper()

	url := fmt.Sprintf("/api/posts/%s/comments", postId)
	if query != "" {
		url += "?" + query
	}

	resp := Do(t, env.App, CreateAuthRequest(http.MethodGet, url, nil, accessToken))

	var thread model.CommentThreadResponse
	if resp.StatusCode == http.StatusOK {
		DecodeJSON(t, resp, &thread)
	}

	return resp, thread
}
