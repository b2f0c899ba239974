package integration

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/tests/integration/setup"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	token := env.SignupUser(t, "groupowner")

	t.Run("without image", func(t *testing.T) {
		group := env.CreateGroup(t, token.AccessToken, "golang")

		require.Equal(t, "golang", group.Name)
		require.Nil(t, group.Image)
		require.NotEmpty(t, group.Id)
	})

	t.Run("with image stores a webp object", func(t *testing.T) {
		body, contentType := setup.CreateMultipartFormData(t, map[string]string{"name": "photography"}, &setup.FormFile{
			FieldName:   "image",
			FileName:    "cover.png",
			ContentType: "image/png",
			Data:        setup.CreateTestPNGImage(t, 512, 512),
		})

		resp := setup.Do(t, env.App, setup.CreateAuthMultipartRequest(http.MethodPost, "/api/groups", body, contentType, token.AccessToken))
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var group model.GroupResponse
		setup.DecodeJSON(t, resp, &group)
		require.NotNil(t, group.Image)
		require.True(t, strings.HasSuffix(*group.Image, ".webp"))

		var objectKey string
		err := env.DB.QueryRow(context.Background(),
			"SELECT gi.object_key FROM groups g JOIN group_images gi ON g.image_id = gi.id WHERE g.id = $1", group.Id).Scan(&objectKey)
		require.NoError(t, err)

		info, err := env.MinIO.StatObject(context.Background(), setup.TestBucketName, objectKey+".webp", minio.StatObjectOptions{})
		require.NoError(t, err)
		require.Equal(t, "image/webp", info.ContentType)
	})

	t.Run("name is unique regardless of case", func(t *testing.T) {
		body, contentType := setup.CreateMultipartFormData(t, map[string]string{"name": "GoLang"}, nil)
		resp := setup.Do(t, env.App, setup.CreateAuthMultipartRequest(http.MethodPost, "/api/groups", body, contentType, token.AccessToken))

		errResp := setup.RequireError(t, resp, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "name")
		require.Equal(t, "Group name is already taken", errResp.Message)
	})

	t.Run("rejects bad names", func(t *testing.T) {
		for _, name := range []string{"", "  ", "ab", strings.Repeat("n", constant.GROUP_NAME_MAX_LENGTH+1)} {
			body, contentType := setup.CreateMultipartFormData(t, map[string]string{"name": name}, nil)
			resp := setup.Do(t, env.App, setup.CreateAuthMultipartRequest(http.MethodPost, "/api/groups", body, contentType, token.AccessToken))
			setup.RequireError(t, resp, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "name")
		}
	})

	t.Run("rejects non image upload", func(t *testing.T) {
		body, contentType := setup.CreateMultipartFormData(t, map[string]string{"name": "documents"}, &setup.FormFile{
			FieldName:   "image",
			FileName:    "notes.txt",
			ContentType: "text/plain",
			Data:        []byte("plain text"),
		})

		resp := setup.Do(t, env.App, setup.CreateAuthMultipartRequest(http.MethodPost, "/api/groups", body, contentType, token.AccessToken))
		setup.RequireError(t, resp, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "image")
	})
}

func TestSearchGroups(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	token := env.SignupUser(t, "searcher")

	for _, name := range []string{"rustaceans", "golang", "gophers", "trustfall"} {
		env.CreateGroup(t, token.AccessToken, name)
	}

	search := func(query string) *http.Response {
		path := "/api/groups"
		if query != "" {
			path += "?search=" + url.QueryEscape(query)
		}
		return setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodGet, path, nil, token.AccessToken))
	}

	names := func(resp *http.Response) []string {
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list model.GroupListResponse
		setup.DecodeJSON(t, resp, &list)

		result := []string{}
		for _, group := range list.Data {
			result = append(result, group.Name)
		}
		return result
	}

	t.Run("no search lists by name", func(t *testing.T) {
		require.Equal(t, []string{"golang", "gophers", "rustaceans", "trustfall"}, names(search("")))
	})

	t.Run("substring match ignores case", func(t *testing.T) {
		require.ElementsMatch(t, []string{"rustaceans", "trustfall"}, names(search("RUST")))
	})

	t.Run("no match returns empty list", func(t *testing.T) {
		require.Empty(t, names(search("haskell")))
	})

	t.Run("search too long", func(t *testing.T) {
		resp := search(strings.Repeat("s", constant.GROUP_NAME_MAX_LENGTH+1))
		setup.RequireError(t, resp, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "search")
	})
}
