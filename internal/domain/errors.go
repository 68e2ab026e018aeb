package domain

import (
	"errors"
	"fmt"
)

// Доменные ошибки. Каждая относится к одному из видов ErrorKind.
var (
	// ErrProjectExists возвращается когда у создателя уже есть проект с таким именем
	ErrProjectExists = errors.New("project with the same name already exists for this creator")

	// ErrEmailExists возвращается при регистрации с уже занятым email
	ErrEmailExists = errors.New("email already exists")

	// ErrForbidden возвращается при нарушении роли или владения
	ErrForbidden = errors.New("access denied")

	// ErrProjectNotFound возвращается когда проект не найден
	ErrProjectNotFound = errors.New("project not found")

	// ErrUserNotFound возвращается когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials возвращается при неверном пароле.
	// Относится к тому же виду, что и ErrUserNotFound, чтобы не раскрывать существование учетной записи.
	ErrInvalidCredentials = errors.New("password incorrect")

	// ErrReferenceNotFound возвращается когда ID из тела запроса не ссылается на пользователя
	ErrReferenceNotFound = errors.New("referenced user not found")

	// ErrUserInUse возвращается при удалении пользователя, который создал проекты
	ErrUserInUse = errors.New("user still owns projects")

	// ErrValidation возвращается при невалидных входных данных
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized возвращается при неудачной аутентификации
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken возвращается когда JWT токен невалиден
	ErrInvalidToken = errors.New("invalid token")

	// ErrInternal возвращается при непредвиденной ошибке хранилища
	ErrInternal = errors.New("internal error")
)

// ReferenceNotFoundError указывает, какой ID пользователя не найден
type ReferenceNotFoundError struct {
	UserID int64
}

// NewReferenceNotFoundError создает ошибку для отсутствующего пользователя
func NewReferenceNotFoundError(userID int64) *ReferenceNotFoundError {
	return &ReferenceNotFoundError{UserID: userID}
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("user with id %d does not exist", e.UserID)
}

// Is позволяет сравнивать через errors.Is(err, ErrReferenceNotFound)
func (e *ReferenceNotFoundError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

// ValidationError описывает невалидное поле запроса
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError создает ошибку валидации поля
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is позволяет сравнивать через errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InternalError оборачивает непредвиденную ошибку хранилища с контекстом операции
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать через errors.Is(err, ErrInternal)
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// Internal оборачивает err в InternalError, если он еще не относится к известному виду
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return err
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

// ErrorKind классифицирует доменные ошибки
type ErrorKind int

// Виды ошибок
const (
	KindInternal ErrorKind = iota
	KindDuplicateResource
	KindForbidden
	KindResourceNotFound
	KindReferenceNotFound
	KindConflict
	KindValidation
	KindUnauthorized
)

// KindOf возвращает вид ошибки; неизвестные ошибки считаются внутренними
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrProjectExists), errors.Is(err, ErrEmailExists):
		return KindDuplicateResource
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrReferenceNotFound):
		return KindReferenceNotFound
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidCredentials):
		return KindResourceNotFound
	case errors.Is(err, ErrUserInUse):
		return KindConflict
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// ErrorCode представляет коды ошибок API
type ErrorCode string

// Коды ошибок API
const (
	CodeDuplicate         ErrorCode = "DUPLICATE_RESOURCE"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeReferenceNotFound ErrorCode = "REFERENCE_NOT_FOUND"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeBadRequest        ErrorCode = "BAD_REQUEST"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	switch KindOf(err) {
	case KindDuplicateResource:
		return CodeDuplicate
	case KindForbidden:
		return CodeForbidden
	case KindResourceNotFound:
		return CodeNotFound
	case KindReferenceNotFound:
		return CodeReferenceNotFound
	case KindConflict:
		return CodeConflict
	case KindValidation:
		return CodeBadRequest
	case KindUnauthorized:
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
