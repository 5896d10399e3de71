package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"camerastore/internal/config"
	"camerastore/internal/domain/model"
	"camerastore/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, in LoginInput) error
}

type UserDTO struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      model.Role `json:"role"`
	Address   string     `json:"address,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Address  string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	User        UserDTO `json:"user"`
	AccessToken string  `json:"accessToken"`
	ExpiresIn   int     `json:"expiresIn"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	validator AuthValidator
	log       Logger
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	validator AuthValidator,
	log Logger,
) *AuthUsecase {
	if log == nil {
		log = nopLogger{}
	}
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		validator: validator,
		log:       log,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return UserDTO{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, internalError(err)
	}

	user := &model.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(pwHash),
		Role:         model.RoleCustomer,
		Address:      in.Address,
		TokenVersion: 0,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return UserDTO{}, newError(ErrConflict, "email already registered")
		}
		return UserDTO{}, internalError(err)
	}

	return toUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := u.validator.ValidateLogin(ctx, in); err != nil {
		return LoginOutput{}, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginOutput{}, newError(ErrUnauthorized, "invalid email or password")
	}
	if err != nil {
		return LoginOutput{}, internalError(err)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, newError(ErrForbidden, "account is disabled")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, newError(ErrUnauthorized, "invalid email or password")
	}

	//last_login更新（失敗してもログインは通す）
	now := time.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.log.Warnf("update last login of user %d: %v", user.ID, err)
	}

	token, expiresIn, err := u.issueAccessToken(user, now)
	if err != nil {
		return LoginOutput{}, internalError(err)
	}

	return LoginOutput{
		User:        toUserDTO(user),
		AccessToken: token,
		ExpiresIn:   expiresIn,
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, newError(ErrUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserDTO{}, newError(ErrUnauthorized, "unauthorized")
	}
	if err != nil {
		return UserDTO{}, internalError(err)
	}
	return toUserDTO(user), nil
}

// sub / role / tv を持つHS256のアクセストークン
func (u *AuthUsecase) issueAccessToken(user *model.User, now time.Time) (string, int, error) {
	ttl := u.cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(ttl.Seconds()), nil
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
	}
}
