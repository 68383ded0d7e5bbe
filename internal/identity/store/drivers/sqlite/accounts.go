package sqlite

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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Email,
		a.CredentialHash,
		a.Alias,
		boolToInt(a.Verified),
		toNullMillis(a.VerificationDeadline),
		boolToInt(a.MustChangeCredential),
		toMillis(a.CreatedAt),
		toMillis(a.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	return a, mapNotFound(err)
}

func (r *accountsRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	return a, mapNotFound(err)
}

func (r *accountsRepo) Update(ctx context.Context, a domain.Account) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET email = ?, credential_hash = ?, alias = ?, verified = ?,
		    verification_deadline = ?, must_change_credential = ?, updated_at = ?
		WHERE id = ?`,
		a.Email,
		a.CredentialHash,
		a.Alias,
		boolToInt(a.Verified),
		toNullMillis(a.VerificationDeadline),
		boolToInt(a.MustChangeCredential),
		toMillis(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireOneRow(res)
}

func (r *accountsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *accountsRepo) FindReclaimable(ctx context.Context, now time.Time) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE verified = 0
		  AND verification_deadline IS NOT NULL
		  AND verification_deadline <= ?
		ORDER BY verification_deadline`,
		toMillis(now),
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
		WHERE id = ?
		  AND verified = 0
		  AND verification_deadline IS NOT NULL
		  AND verification_deadline <= ?`,
		id, toMillis(now),
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
		SET credential_hash = ?, verification_deadline = ?, updated_at = ?
		WHERE id = ? AND verified = 0`,
		credentialHash, toMillis(deadline), toMillis(now), id,
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
		SET credential_hash = ?, must_change_credential = ?, updated_at = ?
		WHERE id = ?`,
		credentialHash, boolToInt(mustChange), toMillis(now), id,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *accountsRepo) MarkVerified(ctx context.Context, email string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET verified = 1, verification_deadline = NULL, updated_at = ?
		WHERE email = ?`,
		toMillis(now), email,
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
		a                    domain.Account
		verified, mustChange int
		deadline             sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.CredentialHash,
		&a.Alias,
		&verified,
		&deadline,
		&mustChange,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Account{}, err
	}
	a.Verified = verified != 0
	a.MustChangeCredential = mustChange != 0
	a.VerificationDeadline = fromNullMillis(deadline)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}
