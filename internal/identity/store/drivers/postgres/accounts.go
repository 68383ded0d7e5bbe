package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/yli59577/puyuann/internal/identity/domain"
)

type accountsRepo struct{ q querier }

const accountColumns = `id, email, credential_hash, alias, verified, verification_deadline,
	must_change_credential, created_at, updated_at`

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID,
		a.Email,
		a.CredentialHash,
		a.Alias,
		a.Verified,
		toNullTime(a.VerificationDeadline),
		a.MustChangeCredential,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	a, err := scanAccount(row)
	return a, mapNotFound(err)
}

func (r *accountsRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	return a, mapNotFound(err)
}

func (r *accountsRepo) Update(ctx context.Context, a domain.Account) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET email = $1, credential_hash = $2, alias = $3, verified = $4,
		    verification_deadline = $5, must_change_credential = $6, updated_at = $7
		WHERE id = $8`,
		a.Email,
		a.CredentialHash,
		a.Alias,
		a.Verified,
		toNullTime(a.VerificationDeadline),
		a.MustChangeCredential,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireOneRow(res)
}

func (r *accountsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *accountsRepo) FindReclaimable(ctx context.Context, now time.Time) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE NOT verified
		  AND verification_deadline IS NOT NULL
		  AND verification_deadline <= $1
		ORDER BY verification_deadline`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) DeleteIfReclaimable(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM accounts
		WHERE id = $1
		  AND NOT verified
		  AND verification_deadline IS NOT NULL
		  AND verification_deadline <= $2`,
		id, now,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *accountsRepo) ReopenPending(ctx context.Context, id, credentialHash string, deadline, now time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET credential_hash = $1, verification_deadline = $2, updated_at = $3
		WHERE id = $4 AND NOT verified`,
		credentialHash, deadline, now, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *accountsRepo) SetCredential(ctx context.Context, id, credentialHash string, mustChange bool, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET credential_hash = $1, must_change_credential = $2, updated_at = $3
		WHERE id = $4`,
		credentialHash, mustChange, now, id,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *accountsRepo) MarkVerified(ctx context.Context, email string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET verified = TRUE, verification_deadline = NULL, updated_at = $1
		WHERE email = $2`,
		now, email,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a        domain.Account
		deadline sql.NullTime
	)
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.CredentialHash,
		&a.Alias,
		&a.Verified,
		&deadline,
		&a.MustChangeCredential,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}
	a.VerificationDeadline = fromNullTime(deadline)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
