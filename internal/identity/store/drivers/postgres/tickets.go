package postgres

import (
	"context"
	"time"

	"github.com/yli59577/puyuann/internal/identity/domain"
)

type ticketsRepo struct{ q querier }

func (r *ticketsRepo) Create(ctx context.Context, t domain.VerificationTicket) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO verification_tickets (id, email, code, issued_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Email, t.Code, t.IssuedAt, t.ExpiresAt, t.Consumed,
	)
	return mapConstraint(err)
}

func (r *ticketsRepo) FindLatestUnconsumed(ctx context.Context, email, code string) (domain.VerificationTicket, error) {
	var t domain.VerificationTicket
	err := r.q.QueryRowContext(ctx, `
		SELECT id, email, code, issued_at, expires_at, consumed
		FROM verification_tickets
		WHERE email = $1 AND code = $2 AND NOT consumed
		ORDER BY issued_at DESC, id DESC
		LIMIT 1`,
		email, code,
	).Scan(&t.ID, &t.Email, &t.Code, &t.IssuedAt, &t.ExpiresAt, &t.Consumed)
	if err != nil {
		return domain.VerificationTicket{}, mapNotFound(err)
	}
	t.IssuedAt = t.IssuedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	return t, nil
}

func (r *ticketsRepo) MarkConsumed(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE verification_tickets SET consumed = TRUE WHERE id = $1 AND NOT consumed`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *ticketsRepo) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM verification_tickets WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
