package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/observability"
	"github.com/ferdian3456/threadit/internal/repository"
	"github.com/ferdian3456/threadit/internal/thread"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type CommentUsecase struct {
	CommentRepository *repository.CommentRepository
	PostRepository    *repository.PostRepository
	Log               *zap.Logger
	Config            *koanf.Koanf
}

func NewCommentUsecase(commentRepository *repository.CommentRepository, postRepository *repository.PostRepository, zap *zap.Logger, koanf *koanf.Koanf) *CommentUsecase {
	return &CommentUsecase{
		CommentRepository: commentRepository,
		PostRepository:    postRepository,
		Log:               zap,
		Config:            koanf,
	}
}

func (usecase *CommentUsecase) cacheTTL() time.Duration {
	seconds := usecase.Config.Int("COMMENT_CACHE_TTL_SECONDS")
	if seconds <= 0 {
		return constant.DEFAULT_COMMENT_CACHE_TTL
	}

	return time.Duration(seconds) * time.Second
}

func (usecase *CommentUsecase) buildOptions() []thread.Option {
	if usecase.Config.String("COMMENT_ORPHAN_POLICY") == constant.COMMENT_ORPHAN_POLICY_REATTACH {
		return []thread.Option{thread.WithOrphansAsRoots()}
	}

	return nil
}

func (usecase *CommentUsecase) findPost(ctx context.Context, postIdParam string) (uuid.UUID, error) {
	postId, err := parsePostId(postIdParam)
	if err != nil {
		return postId, err
	}

	exists, err := usecase.PostRepository.CheckPostExists(ctx, postId)
	if err != nil {
		return postId, err
	}

	if exists != 1 {
		return postId, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Post not found",
			Param:   "postId",
		}
	}

	return postId, nil
}

// loadSnapshot returns the flat comment list of a post, preferring the cache.
// The version is read before Postgres so a write racing this load leaves the
// stored list under a version nobody reads again. Cache failures are logged
// and fall through to Postgres.
func (usecase *CommentUsecase) loadSnapshot(ctx context.Context, postId uuid.UUID) ([]model.Comment, error) {
	logPost := zap.String("postId", postId.String())

	version, err := usecase.CommentRepository.GetCommentVersion(ctx, postId)
	if err != nil {
		usecase.Log.Warn("failed to read comment snapshot version", logPost, zap.Error(err))
		return usecase.CommentRepository.GetComments(ctx, postId)
	}

	comments, found, err := usecase.CommentRepository.GetCommentSnapshot(ctx, postId, version)
	if err != nil {
		usecase.Log.Warn("failed to read comment snapshot", logPost, zap.Error(err))
	} else if found {
		return comments, nil
	}

	comments, err = usecase.CommentRepository.GetComments(ctx, postId)
	if err != nil {
		return nil, err
	}

	err = usecase.CommentRepository.SetCommentSnapshot(ctx, postId, version, comments, usecase.cacheTTL())
	if err != nil {
		usecase.Log.Warn("failed to write comment snapshot", logPost, zap.Error(err))
	}

	return comments, nil
}

// invalidateSnapshot retires the cached list after a committed write. On
// failure the old snapshot stays readable until its TTL runs out.
func (usecase *CommentUsecase) invalidateSnapshot(ctx context.Context, postId uuid.UUID) {
	_, err := usecase.CommentRepository.BumpCommentVersion(ctx, postId)
	if err != nil {
		usecase.Log.Error("failed to bump comment snapshot version", zap.String("postId", postId.String()), zap.Error(err))
	}
}

func (usecase *CommentUsecase) GetCommentThread(ctx *fiber.Ctx, postIdParam string) (model.CommentThreadResponse, error) {
	ctxContext := ctx.Context()
	response := model.CommentThreadResponse{}

	postId, err := usecase.findPost(ctxContext, postIdParam)
	if err != nil {
		return response, err
	}

	focusId := uuid.Nil
	focusParam := ctx.Query("focus", "")
	if focusParam != "" {
		focusId, err = uuid.Parse(focusParam)
		if err != nil {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Invalid focus comment id",
				Param:   "focus",
			}
		}
	}

	comments, err := usecase.loadSnapshot(ctxContext, postId)
	if err != nil {
		return response, err
	}

	_, span := observability.StartSpan(ctx.UserContext(), "CommentUsecase.GetCommentThread/build")
	span.SetAttributes(
		attribute.String("post.id", postId.String()),
		attribute.Int("comment.records", len(comments)),
	)
	forest, err := thread.Build(comments, usecase.buildOptions()...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "thread build failed")
		span.End()
		return response, fmt.Errorf("build comment thread for post %s: %w", postId, err)
	}
	span.SetAttributes(attribute.Int("comment.roots", len(forest)))
	span.End()

	response.Data = forest
	response.Count = thread.Count(forest)
	response.FocusIndex = -1
	if focusId != uuid.Nil {
		response.FocusIndex = thread.IndexOf(forest, focusId)
	}

	return response, nil
}

func (usecase *CommentUsecase) CreateComment(ctx *fiber.Ctx, postIdParam string, userId uuid.UUID, payload model.CommentCreateRequest) (model.Comment, error) {
	ctxContext := ctx.Context()

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return model.Comment{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Content is required to not be empty",
			Param:   "content",
		}
	} else if utf8.RuneCountInString(content) > constant.COMMENT_CONTENT_MAX_LENGTH {
		return model.Comment{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Content must be at most %d characters", constant.COMMENT_CONTENT_MAX_LENGTH),
			Param:   "content",
		}
	}

	postId, err := usecase.findPost(ctxContext, postIdParam)
	if err != nil {
		return model.Comment{}, err
	}

	var parentId *uuid.UUID
	if payload.ParentId != nil && *payload.ParentId != "" {
		id, err := uuid.Parse(*payload.ParentId)
		if err != nil {
			return model.Comment{}, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Invalid parent comment id",
				Param:   "parentId",
			}
		}

		exists, err := usecase.CommentRepository.CheckCommentExists(ctxContext, id, postId)
		if err != nil {
			return model.Comment{}, err
		}

		if exists != 1 {
			return model.Comment{}, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Parent comment does not exist on this post",
				Param:   "parentId",
			}
		}

		parentId = &id
	}

	now := time.Now().UTC()
	comment := model.PostComment{
		Id:             uuid.New(),
		PostId:         postId,
		AuthorId:       userId,
		ParentId:       parentId,
		Content:        content,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	err = usecase.CommentRepository.CreateComment(ctxContext, comment)
	if err != nil {
		return model.Comment{}, err
	}

	usecase.invalidateSnapshot(ctxContext, postId)

	created, err := usecase.CommentRepository.GetComment(ctxContext, comment.Id)
	if err != nil {
		return created, err
	}

	return created, nil
}

func (usecase *CommentUsecase) DeleteComment(ctx *fiber.Ctx, postIdParam string, commentIdParam string, userId uuid.UUID) error {
	ctxContext := ctx.Context()

	postId, err := usecase.findPost(ctxContext, postIdParam)
	if err != nil {
		return err
	}

	commentId, err := uuid.Parse(commentIdParam)
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid comment id",
			Param:   "commentId",
		}
	}

	exists, err := usecase.CommentRepository.CheckCommentExists(ctxContext, commentId, postId)
	if err != nil {
		return err
	}

	if exists != 1 {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Comment not found",
			Param:   "commentId",
		}
	}

	owner, err := usecase.CommentRepository.CheckCommentOwnership(ctxContext, commentId, userId)
	if err != nil {
		return err
	}

	if owner != 1 {
		return &model.ValidationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You are not the author of this comment",
			Param:   "commentId",
		}
	}

	// replies are removed by ON DELETE CASCADE on parent_id
	err = usecase.CommentRepository.DeleteComment(ctxContext, commentId)
	if err != nil {
		return err
	}

	usecase.invalidateSnapshot(ctxContext, postId)

	return nil
}
