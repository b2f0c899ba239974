package usecase

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/ferdian3456/threadit/internal/model"
	"github.com/ferdian3456/threadit/internal/repository"
	"github.com/ferdian3456/threadit/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpValidFor      = 5 * time.Minute
	otpEmailSubject  = "Threadit OTP Verification Code"
	emailMinLength   = 6
	emailMaxLength   = 80
	usersEmailUnique = "users_email_key"
)

type UserUsecase struct {
	UserRepository *repository.UserRepository
	Log            *zap.Logger
	Config         *koanf.Koanf
	SMTP           util.SMTPConfig
}

func NewUserUsecase(userRepository *repository.UserRepository, zap *zap.Logger, koanf *koanf.Koanf) *UserUsecase {
	return &UserUsecase{
		UserRepository: userRepository,
		Log:            zap,
		Config:         koanf,
		SMTP:           util.NewSMTPConfig(koanf),
	}
}

func validateUsername(username string) error {
	if username == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is required to not be empty",
			Param:   "username",
		}
	} else if len(username) < constant.USERNAME_MIN_LENGTH {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Username must be at least %d characters", constant.USERNAME_MIN_LENGTH),
			Param:   "username",
		}
	} else if len(username) > constant.USERNAME_MAX_LENGTH {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Username must be at most %d characters", constant.USERNAME_MAX_LENGTH),
			Param:   "username",
		}
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password is required to not be empty",
			Param:   "password",
		}
	} else if len(password) < constant.PASSWORD_MIN_LENGTH {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Password must be at least %d characters", constant.PASSWORD_MIN_LENGTH),
			Param:   "password",
		}
	} else if len(password) > constant.PASSWORD_MAX_LENGTH {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Password must be at most %d characters", constant.PASSWORD_MAX_LENGTH),
			Param:   "password",
		}
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is required to not be empty",
			Param:   "email",
		}
	} else if len(email) < emailMinLength || !strings.Contains(email, "@") {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is not valid",
			Param:   "email",
		}
	} else if len(email) > emailMaxLength {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Email must be at most %d characters", emailMaxLength),
			Param:   "email",
		}
	}

	return nil
}

func invalidSignupStep() error {
	return &model.ValidationError{
		Code:    constant.ERR_VALIDATION_CODE,
		Message: "Invalid signup step for this session",
		Param:   "sessionId",
	}
}

func (usecase *UserUsecase) loadSignupSession(ctx *fiber.Ctx, rawSessionId string) (model.SignupSession, error) {
	sessionId, err := uuid.Parse(rawSessionId)
	if err != nil {
		return model.SignupSession{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid session id",
			Param:   "sessionId",
		}
	}

	return usecase.UserRepository.GetSignupSession(ctx.UserContext(), sessionId)
}

func (usecase *UserUsecase) issueToken(ctx *fiber.Ctx, userId uuid.UUID) (model.TokenResponse, error) {
	token, err := util.IssueAccessToken(userId, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.SetAccessToken(ctx.UserContext(), userId, token.AccessToken, util.AccessTokenTTL)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return token, nil
}

func (usecase *UserUsecase) Login(ctx *fiber.Ctx, payload model.UserLoginRequest) (model.TokenResponse, error) {
	token := model.TokenResponse{}

	err := validateUsername(payload.Username)
	if err != nil {
		return token, err
	}

	err = validatePassword(payload.Password)
	if err != nil {
		return token, err
	}

	user, err := usecase.UserRepository.GetUserByUsername(ctx.UserContext(), strings.ToLower(payload.Username))
	if err != nil {
		return token, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password))
	if err != nil {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password is incorrect",
			Param:   "password",
		}
	}

	return usecase.issueToken(ctx, user.Id)
}

// Authenticate resolves an Authorization header to a user. The token must be
// well formed and signed, and it must still be the one cached at login.
func (usecase *UserUsecase) Authenticate(ctx *fiber.Ctx, authorization string) (uuid.UUID, error) {
	accessToken, userId, err := util.ParseAccessToken(authorization, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return uuid.Nil, err
	}

	cached, err := usecase.UserRepository.GetAccessTokenHash(ctx.UserContext(), userId)
	if err != nil {
		return uuid.Nil, err
	}

	if subtle.ConstantTimeCompare([]byte(cached), []byte(util.HashSHA256(accessToken))) != 1 {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token is no longer active",
			Param:   "accessToken",
		}
	}

	return userId, nil
}

func (usecase *UserUsecase) GetUser(ctx *fiber.Ctx, userId uuid.UUID) (model.UserResponse, error) {
	return usecase.UserRepository.GetUser(ctx.UserContext(), userId)
}

func (usecase *UserUsecase) Logout(ctx *fiber.Ctx, userId uuid.UUID) error {
	return usecase.UserRepository.DeleteAccessToken(ctx.UserContext(), userId)
}

// StartSignup mails a fresh OTP and opens a session for it. An open session
// for the same email is replaced.
func (usecase *UserUsecase) StartSignup(ctx *fiber.Ctx, payload model.UserSignupStartRequest) (model.UserSignupStartResponse, error) {
	ctxContext := ctx.UserContext()
	response := model.UserSignupStartResponse{}

	err := validateEmail(payload.Email)
	if err != nil {
		return response, err
	}

	email := strings.ToLower(payload.Email)

	emailTaken, err := usecase.UserRepository.CheckEmailExists(ctxContext, email)
	if err != nil {
		return response, err
	}

	if emailTaken == 1 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is already exists",
			Param:   "email",
		}
	}

	previousId, err := usecase.UserRepository.GetSignupSessionIdByEmail(ctxContext, email)
	if err != nil {
		return response, err
	}

	if previousId != uuid.Nil {
		usecase.Log.Debug("replacing open signup session", zap.String("email", email), zap.String("sessionId", previousId.String()))
		err = usecase.UserRepository.DeleteSignupSession(ctxContext, previousId, email)
		if err != nil {
			return response, err
		}
	}

	otp, err := util.GenerateOTP()
	if err != nil {
		return response, err
	}

	body, err := util.RenderOTPEmail(otp, otpValidFor)
	if err != nil {
		return response, err
	}

	err = util.SendEmail(usecase.SMTP, email, otpEmailSubject, body)
	if err != nil {
		return response, err
	}

	now := time.Now().UTC()
	session := model.SignupSession{
		Id:           uuid.New(),
		Email:        email,
		OTPHash:      util.HashSHA256(otp),
		OTPExpiresAt: now.Add(otpValidFor).Unix(),
		Step:         model.SignupStepStart,
		CreatedAt:    now.Unix(),
	}

	err = usecase.UserRepository.CreateSignupSession(ctxContext, session)
	if err != nil {
		return response, err
	}

	response.SessionId = session.Id
	response.OtpExpiresAt = session.OTPExpiresAt

	return response, nil
}

func (usecase *UserUsecase) VerifyOtp(ctx *fiber.Ctx, payload model.UserVerifyOTPRequest) error {
	if _, err := uuid.Parse(payload.SessionId); err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid session id",
			Param:   "sessionId",
		}
	}

	if payload.OTP == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "OTP is required to not be empty",
			Param:   "otp",
		}
	} else if len(payload.OTP) != util.OTPLength {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("OTP must be %d digits", util.OTPLength),
			Param:   "otp",
		}
	}

	session, err := usecase.loadSignupSession(ctx, payload.SessionId)
	if err != nil {
		return err
	}

	if session.Step != model.SignupStepStart {
		return invalidSignupStep()
	}

	if time.Now().Unix() > session.OTPExpiresAt {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Otp is expired",
			Param:   "otp",
		}
	}

	if subtle.ConstantTimeCompare([]byte(session.OTPHash), []byte(util.HashSHA256(payload.OTP))) != 1 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Otp does not match",
			Param:   "otp",
		}
	}

	session.Step = model.SignupStepOTPVerified
	session.OTPHash = ""
	session.OTPExpiresAt = 0

	return usecase.UserRepository.UpdateSignupSession(ctx.UserContext(), session)
}

// VerifyUsername may be repeated once the OTP is verified, the last call wins.
func (usecase *UserUsecase) VerifyUsername(ctx *fiber.Ctx, payload model.UserVerifyUsernameRequest) error {
	if _, err := uuid.Parse(payload.SessionId); err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid session id",
			Param:   "sessionId",
		}
	}

	username := strings.ToLower(payload.Username)

	err := validateUsername(username)
	if err != nil {
		return err
	}

	session, err := usecase.loadSignupSession(ctx, payload.SessionId)
	if err != nil {
		return err
	}

	if !session.Reached(model.SignupStepOTPVerified) {
		return invalidSignupStep()
	}

	exists, err := usecase.UserRepository.CheckUsernameExists(ctx.UserContext(), username)
	if err != nil {
		return err
	}

	if exists == 1 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is already taken",
			Param:   "username",
		}
	}

	session.Step = model.SignupStepUsernameSet
	session.Username = username

	return usecase.UserRepository.UpdateSignupSession(ctx.UserContext(), session)
}

// VerifyPassword creates the account and consumes the session. Uniqueness is
// enforced by the insert, so a username or email claimed since the earlier
// steps is reported against the session.
func (usecase *UserUsecase) VerifyPassword(ctx *fiber.Ctx, payload model.UserVerifyPasswordRequest) (model.TokenResponse, error) {
	ctxContext := ctx.UserContext()
	token := model.TokenResponse{}

	if _, err := uuid.Parse(payload.SessionId); err != nil {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid session id",
			Param:   "sessionId",
		}
	}

	err := validatePassword(payload.Password)
	if err != nil {
		return token, err
	}

	session, err := usecase.loadSignupSession(ctx, payload.SessionId)
	if err != nil {
		return token, err
	}

	if session.Step != model.SignupStepUsernameSet {
		return token, invalidSignupStep()
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return token, err
	}

	userId := uuid.New()
	now := time.Now().UTC()
	user := model.User{
		Id:             userId,
		Username:       session.Username,
		Email:          session.Email,
		Password:       string(hashedPassword),
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	err = usecase.UserRepository.CreateUser(ctxContext, user)
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
			return token, err
		}

		if pgErr.ConstraintName == usersEmailUnique {
			usecase.Log.Debug("email registered during signup, dropping session", zap.String("email", session.Email))
			err = usecase.UserRepository.DeleteSignupSession(ctxContext, session.Id, session.Email)
			if err != nil {
				return token, err
			}

			return token, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Email is already exists",
				Param:   "sessionId",
			}
		}

		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is already taken",
			Param:   "sessionId",
		}
	}

	err = usecase.UserRepository.DeleteSignupSession(ctxContext, session.Id, session.Email)
	if err != nil {
		usecase.Log.Warn("failed to delete consumed signup session", zap.String("sessionId", session.Id.String()), zap.Error(err))
	}

	return usecase.issueToken(ctx, userId)
}

func (usecase *UserUsecase) GetSignupStatus(ctx *fiber.Ctx, sessionId string) (model.UserSignupStatus, error) {
	session, err := usecase.loadSignupSession(ctx, sessionId)
	if err != nil {
		return model.UserSignupStatus{}, err
	}

	return model.UserSignupStatus{
		SessionId: session.Id,
		Step:      session.Step,
	}, nil
}
