package sqlite

import (
	"context"

	"github.com/openreport/portal/internal/portal/domain"
)

type repliesRepo struct {
	db dbtx
}

func (r *repliesRepo) CreateReply(ctx context.Context, reply domain.Reply) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inquiry_replies (id, inquiry_id, title, content, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reply.ID, reply.InquiryID, reply.Title, reply.Content,
		reply.Status, reply.CreatedBy, reply.CreatedAt,
	)
	return err
}

func (r *repliesRepo) ListRepliesByInquiry(ctx context.Context, inquiryID string, ascending bool) ([]domain.Reply, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, inquiry_id, title, content, status, created_by, created_at
		FROM inquiry_replies
		WHERE inquiry_id = ?
		ORDER BY created_at `+order+`, id `+order,
		inquiryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reply
	for rows.Next() {
		var reply domain.Reply
		if err := rows.Scan(
			&reply.ID, &reply.InquiryID, &reply.Title, &reply.Content,
			&reply.Status, &reply.CreatedBy, &reply.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, reply)
	}
	return out, rows.Err()
}
