package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	invdomain "github.com/ghuser/closetline/services/inventory/domain"
)

// storeErr wraps err with op context. Transient connection failures are
// additionally tagged ErrStoreUnavailable so callers know the whole operation
// is safe to retry (nothing was persisted).
func storeErr(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %v", op, invdomain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
