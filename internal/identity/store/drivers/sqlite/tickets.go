package sqlite

import (
	"context"
	"time"

	"github.com/yli59577/puyuann/internal/identity/domain"
)

type ticketsRepo struct{ q querier }

func (r *ticketsRepo) Create(ctx context.Context, t domain.VerificationTicket) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO verification_tickets (id, email, code, issued_at, expires_at, consumed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Email, t.Code, toMillis(t.IssuedAt), toMillis(t.ExpiresAt), boolToInt(t.Consumed),
	)
	return mapConstraint(err)
}

func (r *ticketsRepo) FindLatestUnconsumed(ctx context.Context, email, code string) (domain.VerificationTicket, error) {
	// ids are ULIDs, so id DESC breaks ties between tickets issued in the same millisecond.
	row := r.q.QueryRowContext(ctx, `
		SELECT id, email, code, issued_at, expires_at, consumed
		FROM verification_tickets
		WHERE email = ? AND code = ? AND consumed = 0
		ORDER BY issued_at DESC, id DESC
		LIMIT 1`,
		email, code,
	)

	var (
		t                   domain.VerificationTicket
		issuedAt, expiresAt int64
		consumed            int
	)
	if err := row.Scan(&t.ID, &t.Email, &t.Code, &issuedAt, &expiresAt, &consumed); err != nil {
		return domain.VerificationTicket{}, mapNotFound(err)
	}
	t.IssuedAt = fromMillis(issuedAt)
	t.ExpiresAt = fromMillis(expiresAt)
	t.Consumed = consumed != 0
	return t, nil
}

func (r *ticketsRepo) MarkConsumed(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE verification_tickets SET consumed = 1 WHERE id = ? AND consumed = 0`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *ticketsRepo) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM verification_tickets WHERE expires_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
