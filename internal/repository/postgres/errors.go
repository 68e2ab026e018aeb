package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Коды ошибок PostgreSQL
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Имена ограничений из миграции 000001_init_schema
const (
	constraintUsersEmail          = "users_email_key"
	constraintProjectsCreatorName = "projects_creator_name_key"
)

// pgError возвращает *pgconn.PgError с указанным кодом, если err его содержит
func pgError(err error, code string) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr, true
	}
	return nil, false
}
