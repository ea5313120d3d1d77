package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/jmoiron/sqlx"
)

const insertPolicySQL = `INSERT INTO policies (` + policyColumns + `) VALUES (
	:id, :number, :order_ref, :customer_first_name, :customer_last_name, :customer_email,
	:customer_phone, :vehicle_registration, :vehicle_make, :vehicle_model, :vehicle_mileage, :plan_tier,
	:payment_type, :duration_months, :mot_fee, :tyre_cover, :wear_tear, :europe_cover, :transfer_cover,
	:discount_code, :status, :start_date, :end_date, :issued_at)`

type PolicyRepoSQL struct {
	db        *DB
	opTimeout time.Duration
	clock     func() time.Time
}

func NewPolicyRepo(db *DB, opTimeout time.Duration) *PolicyRepoSQL {
	return &PolicyRepoSQL{db: db, opTimeout: opTimeout, clock: time.Now}
}

func (repo *PolicyRepoSQL) Create(ctx context.Context, policy core.Policy) error {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	if _, err := repo.db.NamedExecContext(ctx, insertPolicySQL, toPolicyRow(policy)); err != nil {
		if isUniqueViolation(err) {
			return core.ErrPolicyExists
		}
		return fmt.Errorf("policies.insert: %w", err)
	}
	return nil
}

// CreateNumbered allocates the next policy number and inserts the policy in
// one transaction. A duplicate order reference rolls the counter back.
func (repo *PolicyRepoSQL) CreateNumbered(ctx context.Context, policy core.Policy) (core.Policy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Policy{}, fmt.Errorf("policies.begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	number, err := repo.nextNumber(ctx, tx)
	if err != nil {
		return core.Policy{}, err
	}
	policy.Number = number

	if _, err := sqlx.NamedExecContext(ctx, tx, insertPolicySQL, toPolicyRow(policy)); err != nil {
		if isUniqueViolation(err) {
			return core.Policy{}, core.ErrPolicyExists
		}
		return core.Policy{}, fmt.Errorf("policies.insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Policy{}, fmt.Errorf("policies.commit: %w", err)
	}
	return policy, nil
}

func (repo *PolicyRepoSQL) getOne(ctx context.Context, op, column, value string) (core.Policy, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var r policyRow
	q := repo.db.Rebind(`SELECT ` + policyColumns + ` FROM policies WHERE ` + column + ` = ?`)
	if err := repo.db.GetContext(ctx, &r, q, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Policy{}, core.ErrPolicyNotFound
		}
		return core.Policy{}, fmt.Errorf("policies.%s: %w", op, err)
	}
	return fromPolicyRow(r), nil
}

func (repo *PolicyRepoSQL) Get(ctx context.Context, id string) (core.Policy, error) {
	return repo.getOne(ctx, "get", "id", id)
}

func (repo *PolicyRepoSQL) GetByNumber(ctx context.Context, number string) (core.Policy, error) {
	return repo.getOne(ctx, "findByNumber", "number", number)
}

func (repo *PolicyRepoSQL) GetByOrderRef(ctx context.Context, orderRef string) (core.Policy, error) {
	return repo.getOne(ctx, "findByOrderRef", "order_ref", orderRef)
}

func (repo *PolicyRepoSQL) ListByCustomer(ctx context.Context, email string, limit, offset int) ([]core.Policy, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var total int64
	if err := repo.db.GetContext(ctx, &total,
		repo.db.Rebind(`SELECT COUNT(*) FROM policies WHERE customer_email = ?`), email); err != nil {
		return nil, 0, fmt.Errorf("policies.count: %w", err)
	}

	var rows []policyRow
	q := repo.db.Rebind(`SELECT ` + policyColumns + ` FROM policies WHERE customer_email = ?
		ORDER BY issued_at DESC, number DESC LIMIT ? OFFSET ?`)
	if err := repo.db.SelectContext(ctx, &rows, q, email, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("policies.listByCustomer: %w", err)
	}

	out := make([]core.Policy, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromPolicyRow(r))
	}
	return out, total, nil
}

// NextPolicyNumber bumps a per-year counter and formats it as WP-YYYY-NNNNNN.
func (repo *PolicyRepoSQL) NextPolicyNumber(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()
	return repo.nextNumber(ctx, repo.db)
}

func (repo *PolicyRepoSQL) nextNumber(ctx context.Context, ext sqlx.ExtContext) (string, error) {
	year := repo.clock().UTC().Year()
	name := fmt.Sprintf("policy_number_%d", year)

	var seq int64
	q := ext.Rebind(`INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value`)
	if err := sqlx.GetContext(ctx, ext, &seq, q, name); err != nil {
		return "", fmt.Errorf("counters.increment: %w", err)
	}
	return fmt.Sprintf("WP-%d-%06d", year, seq), nil
}
