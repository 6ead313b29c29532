package sqlite

import (
	"context"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
)

type adminsRepo struct {
	db dbtx
}

func (r *adminsRepo) UpsertAdmin(ctx context.Context, a domain.Admin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_settings (id, email, receive_notifications, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			receive_notifications = excluded.receive_notifications,
			updated_at = excluded.updated_at`,
		a.ID, a.Email, a.ReceiveNotifications, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *adminsRepo) GetAdminByID(ctx context.Context, id string) (domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, receive_notifications, created_at, updated_at
		FROM admin_settings WHERE id = ?`, id).
		Scan(&a.ID, &a.Email, &a.ReceiveNotifications, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Admin{}, mapNotFound(err)
	}
	return a, nil
}

func (r *adminsRepo) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, receive_notifications, created_at, updated_at
		FROM admin_settings ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Admin
	for rows.Next() {
		var a domain.Admin
		if err := rows.Scan(&a.ID, &a.Email, &a.ReceiveNotifications, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *adminsRepo) UpdateAdminNotifications(ctx context.Context, id string, receive bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE admin_settings SET receive_notifications = ?, updated_at = ? WHERE id = ?`,
		receive, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
