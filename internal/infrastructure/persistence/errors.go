package persistence

import (
	"errors"
	"fmt"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// translateError maps a gorm/driver error to the domain error taxonomy.
// Domain errors pass through unchanged. Anything unrecognised is TRANSIENT:
// the enclosing transaction is rolled back, so the caller may retry as-is.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("%s: record not found", op))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.InvalidArgumentError("%s: record already exists", op)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("%s: referenced record does not exist", op))
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return shared.InvariantViolationError("%s: constraint violated", op)
	default:
		return shared.TransientError(op, err)
	}
}

// notFoundOr returns a resource-specific NOT_FOUND for gorm.ErrRecordNotFound and
// the translated error otherwise
func notFoundOr(op, resource string, id uuid.UUID, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NotFoundError(resource, id)
	}
	return translateError(op, err)
}
