package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ubao/core/notice"
)

type noticeRepository struct {
	db *noticeTable
}

var _ notice.Repository = (*noticeRepository)(nil)

func NewNoticeRepository(db *DB) *noticeRepository {
	return &noticeRepository{db: db.notice}
}

// query returns all notices in insertion order.
func (repo *noticeRepository) query() []notice.Notice {
	notices := make([]notice.Notice, 0, len(repo.db.table))
	for _, n := range repo.db.table {
		notices = append(notices, *n)
	}
	sort.Slice(notices, func(i, j int) bool { return notices[i].ID < notices[j].ID })
	return notices
}

func (repo *noticeRepository) CreateNotice(_ context.Context, n notice.Notice) (notice.Notice, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pk++
	n.ID = repo.db.pk
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *noticeRepository) QueryAllNotices(_ context.Context) ([]notice.Notice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *noticeRepository) GetNoticeByID(_ context.Context, id int) (notice.Notice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.table[id]; ok {
		return *n, nil
	}
	return notice.Notice{}, notice.ErrNotFound
}

func (repo *noticeRepository) SetNoticeStatus(_ context.Context, id int, status notice.Status) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n, ok := repo.db.table[id]
	if !ok {
		return notice.ErrNotFound
	}
	n.Status = status
	return nil
}

func (repo *noticeRepository) FilterNotices(_ context.Context, filter notice.QueryFilter) ([]notice.Notice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]notice.Notice, 0)
	for _, n := range repo.query() {
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.NeedsReminder != nil && n.NeedsReminder != *filter.NeedsReminder {
			continue
		}
		if !filter.DueBefore.IsZero() && n.Deadline.Valid && n.Deadline.Time.After(filter.DueBefore) {
			continue
		}
		matches = append(matches, n)
	}
	return matches, nil
}
