package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ubao/core/notice"
)

type noticeRepository struct {
	db *sqlx.DB
}

var _ notice.Repository = (*noticeRepository)(nil)

func NewNoticeRepository(db *sqlx.DB) *noticeRepository {
	return &noticeRepository{db: db}
}

func (repo *noticeRepository) CreateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	res, err := repo.db.ExecContext(ctx,
		`INSERT INTO notice (title, message, needs_reminder, deadline, created_at, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.Title, n.Message, n.NeedsReminder, n.Deadline, n.CreatedAt, n.Status,
	)
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "inserting notice")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "fetching notice id")
	}
	n.ID = int(id)
	return n, nil
}

func (repo *noticeRepository) QueryAllNotices(ctx context.Context) ([]notice.Notice, error) {
	notices := make([]notice.Notice, 0)
	err := repo.db.SelectContext(ctx, &notices,
		`SELECT id, title, message, needs_reminder, deadline, created_at, status
		 FROM notice ORDER BY id`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying notices")
	}
	return notices, nil
}

func (repo *noticeRepository) GetNoticeByID(ctx context.Context, id int) (notice.Notice, error) {
	var n notice.Notice
	err := repo.db.GetContext(ctx, &n,
		`SELECT id, title, message, needs_reminder, deadline, created_at, status
		 FROM notice WHERE id = ?`, id,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return notice.Notice{}, notice.ErrNotFound
		}
		return notice.Notice{}, errors.Wrap(err, "getting notice")
	}
	return n, nil
}

func (repo *noticeRepository) SetNoticeStatus(ctx context.Context, id int, status notice.Status) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE notice SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return errors.Wrap(err, "updating notice status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating notice status")
	}
	if affected == 0 {
		return notice.ErrNotFound
	}
	return nil
}

func (repo *noticeRepository) FilterNotices(ctx context.Context, filter notice.QueryFilter) ([]notice.Notice, error) {
	query := `SELECT id, title, message, needs_reminder, deadline, created_at, status FROM notice`
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.NeedsReminder != nil {
		conds = append(conds, "needs_reminder = ?")
		args = append(args, *filter.NeedsReminder)
	}
	if !filter.DueBefore.IsZero() {
		conds = append(conds, "(deadline IS NULL OR deadline <= ?)")
		args = append(args, filter.DueBefore)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	notices := make([]notice.Notice, 0)
	if err := repo.db.SelectContext(ctx, &notices, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering notices")
	}
	return notices, nil
}
