package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
)

type DiscountRepoSQL struct {
	db        *DB
	opTimeout time.Duration
}

func NewDiscountRepo(db *DB, opTimeout time.Duration) *DiscountRepoSQL {
	return &DiscountRepoSQL{db: db, opTimeout: opTimeout}
}

const upsertDiscountSQL = `
INSERT INTO discount_codes (` + discountColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (code) DO UPDATE SET
	type        = excluded.type,
	value       = excluded.value,
	valid_from  = excluded.valid_from,
	valid_to    = excluded.valid_to,
	usage_limit = excluded.usage_limit,
	active      = excluded.active,
	archived    = excluded.archived,
	updated_at  = excluded.updated_at`

func (repo *DiscountRepoSQL) UpsertByCode(ctx context.Context, d core.DiscountCode) (core.DiscountCode, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	r := toDiscountRow(d)
	_, err := repo.db.ExecContext(ctx, repo.db.Rebind(upsertDiscountSQL),
		r.ID, r.Code, r.Type, r.Value, r.ValidFrom, r.ValidTo, r.UsageLimit, r.UsedCount,
		r.Active, r.Archived, r.ApplicableProducts, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// only the primary key can still collide here
			return core.DiscountCode{}, core.ErrDiscountConflict
		}
		return core.DiscountCode{}, fmt.Errorf("discount_codes.upsert: %w", err)
	}

	// Read back the stored row: ID, used_count and created_at survive an update
	var out discountRow
	q := repo.db.Rebind(`SELECT ` + discountColumns + ` FROM discount_codes WHERE code = ?`)
	if err := repo.db.GetContext(ctx, &out, q, r.Code); err != nil {
		return core.DiscountCode{}, fmt.Errorf("discount_codes.upsert: %w", err)
	}
	return fromDiscountRow(out), nil
}

func (repo *DiscountRepoSQL) GetByCode(ctx context.Context, code string) (core.DiscountCode, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var r discountRow
	q := repo.db.Rebind(`SELECT ` + discountColumns + ` FROM discount_codes WHERE code = ?`)
	if err := repo.db.GetContext(ctx, &r, q, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.DiscountCode{}, core.ErrDiscountNotFound
		}
		return core.DiscountCode{}, fmt.Errorf("discount_codes.get: %w", err)
	}
	return fromDiscountRow(r), nil
}

func (repo *DiscountRepoSQL) List(ctx context.Context, includeArchived bool) ([]core.DiscountCode, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	q := `SELECT ` + discountColumns + ` FROM discount_codes`
	var args []any
	if !includeArchived {
		q += ` WHERE archived = ?`
		args = append(args, false)
	}
	q += ` ORDER BY code`

	var rows []discountRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("discount_codes.list: %w", err)
	}

	out := make([]core.DiscountCode, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromDiscountRow(r))
	}
	return out, nil
}

// ExpireCodes archives stale codes. On postgres this delegates to the
// auto_expire_discount_codes() procedure installed by the migrations.
func (repo *DiscountRepoSQL) ExpireCodes(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	before = before.UTC()

	if repo.db.Dialect == DialectPostgres {
		var n int64
		if err := repo.db.GetContext(ctx, &n, `SELECT auto_expire_discount_codes($1)`, before); err != nil {
			return 0, fmt.Errorf("discount_codes.autoExpire: %w", err)
		}
		return n, nil
	}

	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(
		`UPDATE discount_codes SET archived = ?, updated_at = ? WHERE archived = ? AND valid_to < ?`),
		true, time.Now().UTC().Truncate(time.Second), false, before)
	if err != nil {
		return 0, fmt.Errorf("discount_codes.expire: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("discount_codes.expire: %w", err)
	}
	return n, nil
}
