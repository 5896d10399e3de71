package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類。handlerはKindではなくStatusを見てレスポンスを作る
var (
	//400 入力不足・不正
	ErrValidation = errors.New("validation error")
	//400 カートが空
	ErrEmptyCart = errors.New("cart is empty")
	//400 同じmerchant uidの注文が既にある
	ErrDuplicateOrder = errors.New("duplicate order")
	//400 決済検証NG（未払い・金額不一致・取引照会失敗）
	ErrPaymentVerification = errors.New("payment verification failed")
	//400 今のステータスからは変更できない
	ErrInvalidTransition = errors.New("invalid status transition")
	//401
	ErrUnauthorized = errors.New("unauthorized")
	//403
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409 メール・商品番号の重複
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

var kindStatus = map[error]int{
	ErrValidation:          http.StatusBadRequest,
	ErrEmptyCart:           http.StatusBadRequest,
	ErrDuplicateOrder:      http.StatusBadRequest,
	ErrPaymentVerification: http.StatusBadRequest,
	ErrInvalidTransition:   http.StatusBadRequest,
	ErrUnauthorized:        http.StatusUnauthorized,
	ErrForbidden:           http.StatusForbidden,
	ErrNotFound:            http.StatusNotFound,
	ErrConflict:            http.StatusConflict,
	ErrInternal:            http.StatusInternalServerError,
}

type HTTPError struct {
	Status  int
	Message string
	// errors.Is(err, ErrForbidden) などで判定できるように
	Kind error
	// 入力エラーの詳細（レスポンスのerrorsに入る）
	Errors []string
	// 500のときの原因。ログ用で本番ではレスポンスに出さない
	Cause error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

func NewHTTPError(status int, message string) error {
	he := &HTTPError{
		Status:  status,
		Message: message,
	}
	for kind, st := range kindStatus {
		//400は種類が複数あるのでValidation扱い
		if st == status && (status != http.StatusBadRequest || kind == ErrValidation) {
			he.Kind = kind
			break
		}
	}
	return he
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 種類つきのエラーを作る
func newError(kind error, message string, details ...string) error {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &HTTPError{
		Status:  status,
		Message: message,
		Kind:    kind,
		Errors:  details,
	}
}

// 想定外の失敗。メッセージは固定で原因はCauseに持つ
func internalError(cause error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		Kind:    ErrInternal,
		Cause:   cause,
	}
}

// usecaseが使うロガー。echoのgommon/logがそのまま満たす
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// usecase外（validatorなど）から種類つきのエラーを作る
func NewKindError(kind error, message string, details ...string) error {
	return newError(kind, message, details...)
}
