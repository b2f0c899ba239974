package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/util"
	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const SignupSessionTTL = 30 * time.Minute

type UserRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewUserRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *UserRepository {
	return &UserRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func signupSessionKey(sessionId uuid.UUID) string {
	return fmt.Sprintf("signup:%s", sessionId)
}

func signupEmailKey(email string) string {
	return fmt.Sprintf("signup_email:%s", email)
}

func accessTokenKey(userId uuid.UUID) string {
	return fmt.Sprintf("auth:accessToken:%s", userId)
}

// Postgresql
func (repository *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	query := "INSERT INTO users (id, username, email, password, image, create_datetime, update_datetime, create_user_id, update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)"

	_, err := repository.DB.Exec(ctx, query, user.Id, user.Username, user.Email, user.Password, user.AvatarImage, user.CreateDatetime, user.UpdateDatetime, user.CreateUserId, user.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

// GetUserByUsername returns the id and password hash used by login.
func (repository *UserRepository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	query := "SELECT id,username,password FROM users WHERE username=$1 LIMIT 1"

	user := model.User{}
	err := repository.DB.QueryRow(ctx, query, username).Scan(&user.Id, &user.Username, &user.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Username is not found",
				Param:   "username",
			}
		}
		return user, err
	}

	return user, nil
}

func (repository *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (model.UserResponse, error) {
	query := "SELECT id, username, email, image, create_datetime, update_datetime FROM users WHERE id=$1 LIMIT 1"

	user := model.UserResponse{}
	err := repository.DB.QueryRow(ctx, query, id).Scan(&user.Id, &user.Username, &user.Email, &user.AvatarImage, &user.CreateDatetime, &user.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "User not found",
				Param:   "userId",
			}
		}
		return user, err
	}

	return user, nil
}

func (repository *UserRepository) CheckUsernameExists(ctx context.Context, username string) (int, error) {
	query := "SELECT 1 FROM users WHERE username=$1 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, username).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}
		return exists, err
	}

	return exists, nil
}

func (repository *UserRepository) CheckEmailExists(ctx context.Context, email string) (int, error) {
	query := "SELECT 1 FROM users WHERE email=$1 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}
		return exists, err
	}

	return exists, nil
}

// Redis - access tokens. Only a hash of the live token is kept, logout drops it.
func (repository *UserRepository) SetAccessToken(ctx context.Context, userId uuid.UUID, accessToken string, ttl time.Duration) error {
	return repository.DBCache.Set(ctx, accessTokenKey(userId), util.HashSHA256(accessToken), ttl).Err()
}

func (repository *UserRepository) GetAccessTokenHash(ctx context.Context, userId uuid.UUID) (string, error) {
	hash, err := repository.DBCache.Get(ctx, accessTokenKey(userId)).Result()
	if errors.Is(err, redis.Nil) {
		return "", &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token is expired or revoked",
			Param:   "accessToken",
		}
	} else if err != nil {
		return "", err
	}

	return hash, nil
}

func (repository *UserRepository) DeleteAccessToken(ctx context.Context, userId uuid.UUID) error {
	return repository.DBCache.Del(ctx, accessTokenKey(userId)).Err()
}

// Redis - signup sessions. The session hash and the email index share one TTL.
func (repository *UserRepository) CreateSignupSession(ctx context.Context, session model.SignupSession) error {
	key := signupSessionKey(session.Id)

	_, err := repository.DBCache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, session)
		pipe.Expire(ctx, key, SignupSessionTTL)
		pipe.Set(ctx, signupEmailKey(session.Email), session.Id.String(), SignupSessionTTL)
		return nil
	})

	return err
}

func (repository *UserRepository) GetSignupSession(ctx context.Context, sessionId uuid.UUID) (model.SignupSession, error) {
	session := model.SignupSession{}

	cmd := repository.DBCache.HGetAll(ctx, signupSessionKey(sessionId))
	fields, err := cmd.Result()
	if err != nil {
		return session, err
	}

	if len(fields) == 0 {
		return session, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Signup session is expired or not exists",
			Param:   "sessionId",
		}
	}

	err = cmd.Scan(&session)
	if err != nil {
		return session, err
	}
	session.Id = sessionId

	return session, nil
}

// UpdateSignupSession rewrites the hash in place, the TTL set at creation stays.
func (repository *UserRepository) UpdateSignupSession(ctx context.Context, session model.SignupSession) error {
	return repository.DBCache.HSet(ctx, signupSessionKey(session.Id), session).Err()
}

// GetSignupSessionIdByEmail returns uuid.Nil when the email has no open session.
func (repository *UserRepository) GetSignupSessionIdByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	raw, err := repository.DBCache.Get(ctx, signupEmailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, nil
	} else if err != nil {
		return uuid.Nil, err
	}

	sessionId, err := uuid.Parse(raw)
	if err != nil {
		repository.Log.Warn("signup email index holds an invalid session id", zap.String("email", email), zap.String("value", raw))
		return uuid.Nil, nil
	}

	return sessionId, nil
}

func (repository *UserRepository) DeleteSignupSession(ctx context.Context, sessionId uuid.UUID, email string) error {
	return repository.DBCache.Del(ctx, signupSessionKey(sessionId), signupEmailKey(email)).Err()
}
