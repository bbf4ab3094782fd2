package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
)

// Transactor serializes transactional work against the in-memory stores.
// Writes made before fn fails are not undone.
type Transactor struct {
	mu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

var _ database.Transactor = (*Transactor)(nil)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// now is UTC with microsecond precision, matching what Postgres keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
