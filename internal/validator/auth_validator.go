package validator

import (
	"context"
	"errors"
	"regexp"

	"camerastore/internal/repository"
	"camerastore/internal/usecase"
)

// パスワード最低文字数
const minPasswordLength = 6

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証（emailは小文字化・trim済み）
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	var errs []string

	if in.Email == "" {
		errs = append(errs, "email is required")
	} else if !isEmailLike(in.Email) {
		errs = append(errs, "email is invalid")
	}
	if in.Name == "" {
		errs = append(errs, "name is required")
	}
	if len(in.Password) < minPasswordLength {
		errs = append(errs, "password must be at least 6 characters")
	}
	if len(errs) > 0 {
		return usecase.NewKindError(usecase.ErrValidation, "invalid register input", errs...)
	}

	// email重複チェック（最終的にはDBの一意制約）
	_, err := v.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return usecase.NewKindError(usecase.ErrConflict, "email already registered")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, in usecase.LoginInput) error {
	var errs []string
	if in.Email == "" || !isEmailLike(in.Email) {
		errs = append(errs, "email is invalid")
	}
	if in.Password == "" {
		errs = append(errs, "password is required")
	}
	if len(errs) > 0 {
		return usecase.NewKindError(usecase.ErrValidation, "invalid login input", errs...)
	}
	return nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 簡易的な形式チェック
func isEmailLike(email string) bool {
	return emailRe.MatchString(email)
}
