package sqlite

import (
	"context"

	"github.com/yli59577/puyuann/internal/identity/domain"
)

type profilesRepo struct{ q querier }

func (r *profilesRepo) EnsureStubFor(ctx context.Context, p domain.Profile) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO profiles (account_id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (account_id) DO NOTHING`,
		p.AccountID, p.Name, toMillis(p.CreatedAt),
	)
	return err
}

func (r *profilesRepo) Get(ctx context.Context, accountID string) (domain.Profile, error) {
	var (
		p         domain.Profile
		createdAt int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT account_id, name, created_at FROM profiles WHERE account_id = ?`, accountID,
	).Scan(&p.AccountID, &p.Name, &createdAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

func (r *profilesRepo) DeleteFor(ctx context.Context, accountID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM profiles WHERE account_id = ?`, accountID)
	return err
}
