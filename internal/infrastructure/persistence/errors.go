package persistence

import (
	"errors"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps translated GORM errors to domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewDomainError(shared.ErrConflict.Code, "Referenced record does not exist or is still referenced")
	default:
		return err
	}
}

// escapeLike escapes LIKE wildcards in user supplied search terms
func escapeLike(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '%', '_':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return string(b)
}
