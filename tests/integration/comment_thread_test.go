package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/tests/integration/setup"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func snapshotVersion(t *testing.T, env *setup.TestEnv, postId string) int64 {
	version, err := env.Redis.Get(context.Background(), "comments:post:"+postId+":version").Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	require.NoError(t, err)
	return version
}

func snapshotKey(postId string, version int64) string {
	return fmt.Sprintf("comments:post:%s:v%d", postId, version)
}

func contents(nodes []*model.CommentNode) []string {
	result := []string{}
	for _, node := range nodes {
		result = append(result, node.Content)
	}
	return result
}

// writeSnapshotAt stores a comment list under one snapshot version, standing
// in for a snapshot that went stale or was written by a buggy producer.
func writeSnapshotAt(t *testing.T, env *setup.TestEnv, postId string, version int64, comments []model.Comment) {
	err := env.Redis.Set(context.Background(), snapshotKey(postId, version), setup.MustJSON(t, comments), time.Minute).Err()
	require.NoError(t, err)
}

func writeSnapshot(t *testing.T, env *setup.TestEnv, postId string, comments []model.Comment) {
	writeSnapshotAt(t, env, postId, snapshotVersion(t, env, postId), comments)
}

func flatComment(postId uuid.UUID, parent *uuid.UUID, content string) model.Comment {
	now := time.Now().UTC()
	return model.Comment{
		Id:             uuid.New(),
		PostId:         postId,
		ParentId:       parent,
		Content:        content,
		Author:         model.CommentAuthor{Id: uuid.New(), Username: "ghost"},
		CreateDatetime: now,
		UpdateDatetime: now,
	}
}

func TestCommentThread(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	alice := env.SignupUser(t, "alicia")
	bob := env.SignupUser(t, "roberto")
	group := env.CreateGroup(t, alice.AccessToken, "threads")

	t.Run("replies nest under their parents", func(t *testing.T) {
		postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "nested")

		a := env.CreateComment(t, alice.AccessToken, postId, "", "A")
		b := env.CreateComment(t, bob.AccessToken, postId, "", "B")
		a1 := env.CreateComment(t, bob.AccessToken, postId, a.Id.String(), "A1")
		a1a := env.CreateComment(t, alice.AccessToken, postId, a1.Id.String(), "A1a")
		a2 := env.CreateComment(t, alice.AccessToken, postId, a.Id.String(), "A2")
		b1 := env.CreateComment(t, alice.AccessToken, postId, b.Id.String(), "B1")

		require.Equal(t, a.Id, *a1.ParentId)
		require.Equal(t, "roberto", a1.Author.Username)

		resp, thread := env.GetCommentThread(t, bob.AccessToken, postId, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		require.Equal(t, 6, thread.Count)
		require.Equal(t, -1, thread.FocusIndex)
		require.Equal(t, []string{"A", "B"}, contents(thread.Data))

		rootA, rootB := thread.Data[0], thread.Data[1]
		require.Nil(t, rootA.ParentId)
		require.Equal(t, []string{"A1", "A2"}, contents(rootA.Replies))
		require.Equal(t, []string{"A1a"}, contents(rootA.Replies[0].Replies))
		require.Empty(t, rootA.Replies[0].Replies[0].Replies)
		require.NotNil(t, rootA.Replies[0].Replies[0].Replies, "leaf replies should encode as an empty list")
		require.Empty(t, rootA.Replies[1].Replies)
		require.Equal(t, []string{"B1"}, contents(rootB.Replies))

		focus := map[string]int{
			a.Id.String():       0,
			a1a.Id.String():     0,
			a2.Id.String():      0,
			b.Id.String():       1,
			b1.Id.String():      1,
			uuid.New().String(): -1,
		}
		for id, want := range focus {
			resp, thread := env.GetCommentThread(t, bob.AccessToken, postId, "focus="+id)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, want, thread.FocusIndex, "focus %s", id)
		}
	})

	t.Run("post without comments", func(t *testing.T) {
		postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "quiet")

		resp, thread := env.GetCommentThread(t, alice.AccessToken, postId, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, thread.Data)
		require.Empty(t, thread.Data)
		require.Zero(t, thread.Count)
	})

	t.Run("thread build is traced", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		previous := otel.GetTracerProvider()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
		t.Cleanup(func() { otel.SetTracerProvider(previous) })

		postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "traced")
		env.CreateComment(t, alice.AccessToken, postId, "", "root")

		resp, _ := env.GetCommentThread(t, alice.AccessToken, postId, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var build sdktrace.ReadOnlySpan
		for _, span := range recorder.Ended() {
			if span.Name() == "CommentUsecase.GetCommentThread/build" {
				build = span
			}
		}
		require.NotNil(t, build, "thread build span should be recorded")

		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range build.Attributes() {
			attrs[kv.Key] = kv.Value
		}
		require.Equal(t, postId, attrs["post.id"].AsString())
		require.EqualValues(t, 1, attrs["comment.records"].AsInt64())
		require.EqualValues(t, 1, attrs["comment.roots"].AsInt64())
	})

	t.Run("snapshot is cached and retired on write", func(t *testing.T) {
		ctx := context.Background()
		postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "cached")
		env.CreateComment(t, alice.AccessToken, postId, "", "first")
		version := snapshotVersion(t, env, postId)

		resp, _ := env.GetCommentThread(t, alice.AccessToken, postId, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		ttl, err := env.Redis.TTL(ctx, snapshotKey(postId, version)).Result()
		require.NoError(t, err)
		require.Greater(t, ttl, time.Duration(0))

		// reads are served from the cache, not from postgres
		postUUID := uuid.MustParse(postId)
		writeSnapshot(t, env, postId, []model.Comment{flatComment(postUUID, nil, "from cache")})

		resp, thread := env.GetCommentThread(t, alice.AccessToken, postId, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, []string{"from cache"}, contents(thread.Data))

		env.CreateComment(t, bob.AccessToken, postId, "", "second")
		require.Equal(t, version+1, snapshotVersion(t, env, postId))

		exists, err := env.Redis.Exists(ctx, snapshotKey(postId, version)).Result()
		require.NoError(t, err)
		require.Zero(t, exists)

		resp, thread = env.GetCommentThread(t, alice.AccessToken, postId, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, []string{"first", "second"}, contents(thread.Data))
	})

	t.Run("list loaded before a write never hides the new comment", func(t *testing.T) {
		postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "racing")
		first := env.CreateComment(t, alice.AccessToken, postId, "", "first")

		// a slow reader takes the version and the rows before the write lands
		staleVersion := snapshotVersion(t, env, postId)
		var staleRows []model.Comment
		_, thread := env.GetCommentThread(t, alice.AccessToken, postId, "")
		for _, node := range thread.Data {
			staleRows = append(staleRows, node.Comment)
		}
		require.Len(t, staleRows, 1)
		require.Equal(t, first.Id, staleRows[0].Id)

		reply := env.CreateComment(t, bob.AccessToken, postId, first.Id.String(), "reply")

		// and stores them after the write dropped the old snapshot
		writeSnapshotAt(t, env, postId, staleVersion, staleRows)

		resp, thread := env.GetCommentThread(t, bob.AccessToken, postId, "focus="+reply.Id.String())
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 2, thread.Count)
		require.Equal(t, 0, thread.FocusIndex)
		require.Equal(t, []string{"reply"}, contents(thread.Data[0].Replies))
	})

	t.Run("broken snapshot fails the whole fetch", func(t *testing.T) {
		postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "broken")
		postUUID := uuid.MustParse(postId)

		missing := uuid.New()
		root := flatComment(postUUID, nil, "root")
		duplicate := root
		duplicate.Content = "copy"

		cycleA := flatComment(postUUID, nil, "cycle a")
		cycleB := flatComment(postUUID, &cycleA.Id, "cycle b")
		cycleA.ParentId = &cycleB.Id

		snapshots := map[string][]model.Comment{
			"dangling parent": {root, flatComment(postUUID, &missing, "orphan")},
			"duplicate id":    {root, duplicate},
			"cycle":           {root, cycleA, cycleB},
		}

		for name, snapshot := range snapshots {
			t.Run(name, func(t *testing.T) {
				writeSnapshot(t, env, postId, snapshot)

				resp, _ := env.GetCommentThread(t, alice.AccessToken, postId, "")
				setup.RequireError(t, resp, http.StatusInternalServerError, constant.ERR_COMMENT_THREAD_ERROR_CODE, "")
			})
		}
	})

	t.Run("malformed focus", func(t *testing.T) {
		postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "focus")

		resp, _ := env.GetCommentThread(t, alice.AccessToken, postId, "focus=nope")
		setup.RequireError(t, resp, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "focus")
	})

	t.Run("unknown post", func(t *testing.T) {
		resp, _ := env.GetCommentThread(t, alice.AccessToken, uuid.NewString(), "")
		setup.RequireError(t, resp, http.StatusNotFound, constant.ERR_NOT_FOUND_ERROR, "postId")
	})
}

func TestCreateCommentValidation(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	token := env.SignupUser(t, "commenter")
	group := env.CreateGroup(t, token.AccessToken, "comments")
	postId := env.CreatePost(t, token.AccessToken, group.Id.String(), "here")
	otherPostId := env.CreatePost(t, token.AccessToken, group.Id.String(), "elsewhere")
	foreign := env.CreateComment(t, token.AccessToken, otherPostId, "", "not yours")

	ptr := func(s string) *string { return &s }

	tests := []struct {
		name    string
		postId  string
		payload model.CommentCreateRequest
		status  int
		code    string
		param   string
	}{
		{"empty content", postId, model.CommentCreateRequest{Content: "   "}, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "content"},
		{"content too long", postId, model.CommentCreateRequest{Content: strings.Repeat("é", constant.COMMENT_CONTENT_MAX_LENGTH+1)}, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "content"},
		{"malformed parent", postId, model.CommentCreateRequest{Content: "hi", ParentId: ptr("nope")}, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "parentId"},
		{"unknown parent", postId, model.CommentCreateRequest{Content: "hi", ParentId: ptr(uuid.NewString())}, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "parentId"},
		{"parent on another post", postId, model.CommentCreateRequest{Content: "hi", ParentId: ptr(foreign.Id.String())}, http.StatusBadRequest, constant.ERR_VALIDATION_CODE, "parentId"},
		{"unknown post", uuid.NewString(), model.CommentCreateRequest{Content: "hi"}, http.StatusNotFound, constant.ERR_NOT_FOUND_ERROR, "postId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodPost, "/api/posts/"+tt.postId+"/comments", setup.MustJSON(t, tt.payload), token.AccessToken))
			setup.RequireError(t, resp, tt.status, tt.code, tt.param)
		})
	}

	t.Run("content at the limit is accepted", func(t *testing.T) {
		content := strings.Repeat("é", constant.COMMENT_CONTENT_MAX_LENGTH)
		comment := env.CreateComment(t, token.AccessToken, postId, "", content)
		require.Equal(t, content, comment.Content)
	})

	t.Run("empty parent id is a top level comment", func(t *testing.T) {
		comment := env.CreateComment(t, token.AccessToken, postId, "", "top")
		require.Nil(t, comment.ParentId)
	})
}

func TestDeleteComment(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	alice := env.SignupUser(t, "alicedel")
	bob := env.SignupUser(t, "bobdel")
	group := env.CreateGroup(t, alice.AccessToken, "cleanup")
	postId := env.CreatePost(t, alice.AccessToken, group.Id.String(), "prune")

	root := env.CreateComment(t, alice.AccessToken, postId, "", "root")
	reply := env.CreateComment(t, bob.AccessToken, postId, root.Id.String(), "reply")
	env.CreateComment(t, alice.AccessToken, postId, reply.Id.String(), "nested")
	sibling := env.CreateComment(t, bob.AccessToken, postId, "", "sibling")

	deletePath := func(commentId string) string {
		return "/api/posts/" + postId + "/comments/" + commentId
	}

	t.Run("only the author may delete", func(t *testing.T) {
		resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodDelete, deletePath(root.Id.String()), nil, bob.AccessToken))
		setup.RequireError(t, resp, http.StatusForbidden, constant.ERR_FORBIDDEN_ERROR, "commentId")
	})

	t.Run("unknown comment", func(t *testing.T) {
		resp := setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodDelete, deletePath(uuid.NewString()), nil, alice.AccessToken))
		setup.RequireError(t, resp, http.StatusNotFound, constant.ERR_NOT_FOUND_ERROR, "commentId")
	})

	t.Run("deleting a comment removes its replies", func(t *testing.T) {
		resp, thread := env.GetCommentThread(t, alice.AccessToken, postId, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 4, thread.Count)

		resp = setup.Do(t, env.App, setup.CreateAuthRequest(http.MethodDelete, deletePath(root.Id.String()), nil, alice.AccessToken))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, thread = env.GetCommentThread(t, alice.AccessToken, postId, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 1, thread.Count)
		require.Equal(t, sibling.Id, thread.Data[0].Id)

		var remaining int
		err := env.DB.QueryRow(context.Background(), "SELECT COUNT(*) FROM post_comments WHERE post_id = $1", postId).Scan(&remaining)
		require.NoError(t, err)
		require.Equal(t, 1, remaining)
	})
}

func TestCommentThreadReattachPolicy(t *testing.T) {
	env := setup.NewTestEnv(t, map[string]any{
		"COMMENT_ORPHAN_POLICY": constant.COMMENT_ORPHAN_POLICY_REATTACH,
	})
	token := env.SignupUser(t, "reattach")
	group := env.CreateGroup(t, token.AccessToken, "orphans")
	postId := env.CreatePost(t, token.AccessToken, group.Id.String(), "lost parents")
	postUUID := uuid.MustParse(postId)

	missing := uuid.New()
	root := flatComment(postUUID, nil, "root")
	orphan := flatComment(postUUID, &missing, "orphan")
	orphanReply := flatComment(postUUID, &orphan.Id, "orphan reply")
	writeSnapshot(t, env, postId, []model.Comment{root, orphan, orphanReply})

	resp, thread := env.GetCommentThread(t, token.AccessToken, postId, "focus="+orphanReply.Id.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, 3, thread.Count)
	require.Equal(t, []string{"root", "orphan"}, contents(thread.Data))
	require.False(t, thread.Data[0].ParentDeleted)
	require.True(t, thread.Data[1].ParentDeleted)
	require.Equal(t, []string{"orphan reply"}, contents(thread.Data[1].Replies))
	require.Equal(t, 1, thread.FocusIndex)

	// cycles are never reattached
	cycleA := flatComment(postUUID, nil, "cycle a")
	cycleB := flatComment(postUUID, &cycleA.Id, "cycle b")
	cycleA.ParentId = &cycleB.Id
	writeSnapshot(t, env, postId, []model.Comment{root, cycleA, cycleB})

	resp, _ = env.GetCommentThread(t, token.AccessToken, postId, "")
	setup.RequireError(t, resp, http.StatusInternalServerError, constant.ERR_COMMENT_THREAD_ERROR_CODE, "")
}
