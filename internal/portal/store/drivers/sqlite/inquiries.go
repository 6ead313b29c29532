package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
)

type inquiriesRepo struct {
	db dbtx
}

const inquiryColumns = `id, title, content, email, name, phone, auth_code, status,
	reply_title, reply_content, replied_at, created_at, updated_at`

func (r *inquiriesRepo) CreateInquiry(ctx context.Context, inq domain.Inquiry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inquiries (`+inquiryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inq.ID, inq.Title, inq.Content, inq.Email, inq.Name,
		mapStringNull(inq.Phone), inq.AuthCode, inq.Status,
		mapStringNull(inq.ReplyTitle), mapStringNull(inq.ReplyContent),
		mapOptionalTime(inq.RepliedAt), inq.CreatedAt, inq.UpdatedAt,
	)
	return err
}

func (r *inquiriesRepo) GetInquiryByID(ctx context.Context, id string) (domain.Inquiry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id)
	return scanInquiry(row)
}

func (r *inquiriesRepo) GetInquiryByCredentials(ctx context.Context, email, authCode string) (domain.Inquiry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+inquiryColumns+` FROM inquiries
		WHERE email = ? AND auth_code = ?`,
		email, authCode)
	return scanInquiry(row)
}

func (r *inquiriesRepo) ListInquiries(ctx context.Context) ([]domain.Inquiry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+inquiryColumns+` FROM inquiries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Inquiry
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inq)
	}
	return out, rows.Err()
}

func (r *inquiriesRepo) UpdateInquiryStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inquiries SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *inquiriesRepo) SetInquiryReply(ctx context.Context, id, title, content string, repliedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inquiries
		SET reply_title = ?, reply_content = ?, replied_at = ?, updated_at = ?
		WHERE id = ?`,
		title, content, repliedAt, repliedAt, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInquiry(s scanner) (domain.Inquiry, error) {
	var (
		inq          domain.Inquiry
		phone        sql.NullString
		replyTitle   sql.NullString
		replyContent sql.NullString
		repliedAt    sql.NullTime
	)
	err := s.Scan(
		&inq.ID, &inq.Title, &inq.Content, &inq.Email, &inq.Name,
		&phone, &inq.AuthCode, &inq.Status,
		&replyTitle, &replyContent, &repliedAt,
		&inq.CreatedAt, &inq.UpdatedAt,
	)
	if err != nil {
		return domain.Inquiry{}, mapNotFound(err)
	}

	inq.Phone = mapNullString(phone)
	inq.ReplyTitle = mapNullString(replyTitle)
	inq.ReplyContent = mapNullString(replyContent)
	inq.RepliedAt = mapNullTimePtr(repliedAt)
	return inq, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
