package integration

import (
	"net/http"
	"testing"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/tests/integration/setup"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUpvotes(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	alice := env.SignupUser(t, "alice")
	bob := env.SignupUser(t, "bobby")
	group := env.CreateGroup(t, alice.AccessToken, "votes")
	postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "vote on me")
	path := "/api/posts/" + postId + "/upvotes"

	vote := func(token string, value int16) model.UpvoteResponse {
		resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodPut, path, setup.MustJSON(t, model.UpvoteRequest{Value: value}), token))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.UpvoteResponse
		setup.DecodeJSON(t, resp, &result)
		return result
	}

	get := func(token string) model.UpvoteResponse {
		resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodGet, path, nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.UpvoteResponse
		setup.DecodeJSON(t, resp, &result)
		return result
	}

	t.Run("no votes yet", func(t *testing.T) {
		require.Equal(t, model.UpvoteResponse{Upvotes: 0, UserVote: 0}, get(alice.AccessToken))
	})

	t.Run("votes add up per user", func(t *testing.T) {
		require.Equal(t, model.UpvoteResponse{Upvotes: 1, UserVote: 1}, vote(alice.AccessToken, 1))
		require.Equal(t, model.UpvoteResponse{Upvotes: 2, UserVote: 1}, vote(bob.AccessToken, 1))

		// voting again replaces the previous vote
		require.Equal(t, model.UpvoteResponse{Upvotes: 0, UserVote: -1}, vote(bob.AccessToken, -1))
		require.Equal(t, model.UpvoteResponse{Upvotes: 0, UserVote: 1}, get(alice.AccessToken))
	})

	t.Run("post shows the viewer vote", func(t *testing.T) {
		resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodGet, "/api/posts/"+postId, nil, bob.AccessToken))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var post model.PostResponse
		setup.DecodeJSON(t, resp, &post)
		require.Equal(t, int64(0), post.Upvotes)
		require.Equal(t, int16(-1), post.UserVote)
	})

	t.Run("remove vote", func(t *testing.T) {
		resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodDelete, path, nil, bob.AccessToken))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.UpvoteResponse
		setup.DecodeJSON(t, resp, &result)
		require.Equal(t, model.UpvoteResponse{Upvotes: 1, UserVote: 0}, result)

		// removing a vote that does not exist is a no-op
		resp = setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodDelete, path, nil, bob.AccessToken))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid value", func(t *testing.T) {
		for _, value := range []int16{0, 2, -2} {
			resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodPut, path, setup.MustJSON(t, model.UpvoteRequest{Value: value}), alice.AccessToken))
			setup.RequireError(t, resp, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "value")
		}
	})

	t.Run("unknown post", func(t *testing.T) {
		resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodPut, "/api/posts/"+uuid.NewString()+"/upvotes",
			setup.MustJSON(t, model.UpvoteRequest{Value: 1}), alice.AccessToken))
		setup.RequireError(t, resp, http.StatusNotFound, constant.ERR_NOT_FOUND_ERROR, "postId")
	})
}
