package notice_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/notice"
	"github.com/trezcool/ubao/core/student"
	emailsvc "github.com/trezcool/ubao/services/email"
	inmemdb "github.com/trezcool/ubao/storage/database/inmem"
	testutil "github.com/trezcool/ubao/tests"
)

func setup(t *testing.T) (*notice.Service, notice.Repository, student.Repository) {
	t.Helper()

	conf := core.TestConfig()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	noticeRepo := inmemdb.NewNoticeRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)

	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	studentSvc := student.NewService(studentRepo)
	logger := testutil.NewTestLogger(conf)

	svc := notice.NewService(conf, noticeRepo, studentSvc, mailSvc, logger)
	return svc, noticeRepo, studentRepo
}

func TestService_Create(t *testing.T) {
	svc, repo, studentRepo := setup(t)
	ctx := context.Background()

	ann := testutil.CreateStudent(t, studentRepo, "Ann", "a@x.com")

	before := time.Now().UTC()
	n, err := svc.Create(ctx, notice.NewNotice{
		Title:    "Exam",
		Message:  "Room 5",
		Reminder: "on",
		Deadline: "2025-06-01",
	})
	require.NoError(t, err)

	assert.Equal(t, notice.StatusPending, n.Status)
	assert.True(t, n.NeedsReminder)
	assert.False(t, n.CreatedAt.Before(before))
	require.True(t, n.Deadline.Valid)
	assert.Equal(t, "2025-06-01", n.Deadline.Time.Format(notice.DeadlineFormat))

	got, err := repo.GetNoticeByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	// exactly one email, to Ann, carrying title, message, deadline and the confirmation link
	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	require.Len(t, msg.To, 1)
	assert.Equal(t, ann.Email, msg.To[0].Address)
	assert.Contains(t, msg.Subject, "Exam")
	for _, want := range []string{"Hi Ann", "Exam", "Room 5", "2025-06-01"} {
		assert.Contains(t, msg.TextContent, want)
	}
	assert.Contains(t, msg.TextContent, fmt.Sprintf("/confirm/%d/%d", n.ID, ann.ID))
}

func TestService_Create_noDeadline(t *testing.T) {
	svc, _, studentRepo := setup(t)
	testutil.CreateStudent(t, studentRepo, "Ann", "a@x.com")

	n, err := svc.Create(context.Background(), notice.NewNotice{Title: "Exam", Message: "Room 5"})
	require.NoError(t, err)
	assert.False(t, n.Deadline.Valid)
	assert.False(t, n.NeedsReminder)

	require.Len(t, emailsvc.SentMessages, 1)
	assert.Contains(t, emailsvc.SentMessages[0].TextContent, "Deadline: ASAP")
}

func TestService_Create_invalid(t *testing.T) {
	svc, repo, studentRepo := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, studentRepo, "Ann", "a@x.com")

	_, err := svc.Create(ctx, notice.NewNotice{Message: "Room 5"})
	require.Error(t, err)
	assert.IsType(t, validator.ValidationErrors{}, err)

	// nothing persisted, nothing sent
	notices, err := repo.QueryAllNotices(ctx)
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Empty(t, emailsvc.SentMessages)
}

func TestService_Create_emptyDirectory(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, notice.NewNotice{Title: "Exam", Message: "Room 5"})
	require.NoError(t, err)
	assert.Equal(t, notice.StatusPending, n.Status)

	notices, err := repo.QueryAllNotices(ctx)
	require.NoError(t, err)
	assert.Len(t, notices, 1)
	assert.Empty(t, emailsvc.SentMessages)
}

func TestService_QueryAll_insertionOrder(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := svc.Create(ctx, notice.NewNotice{Title: title, Message: "m"})
		require.NoError(t, err)
	}

	notices, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, notices, len(titles))
	for i, n := range notices {
		assert.Equal(t, titles[i], n.Title)
	}
}

func TestService_Confirm(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()

	n := testutil.CreateNotice(t, repo, "Exam", "Room 5", true, null.Time{}, notice.StatusPending)

	got, err := svc.Confirm(ctx, n.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, notice.StatusConfirmed, got.Status)

	// idempotent: a second confirmation succeeds and leaves the status Confirmed
	got, err = svc.Confirm(ctx, n.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, notice.StatusConfirmed, got.Status)

	// the student identifier is not verified; any value confirms the same notice
	got, err = svc.Confirm(ctx, n.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, notice.StatusConfirmed, got.Status)

	stored, err := repo.GetNoticeByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsConfirmed())
}

func TestService_Confirm_notFound(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Confirm(context.Background(), 404, 1)
	assert.Equal(t, notice.ErrNotFound, err)
}

func TestService_ProcessDueReminders(t *testing.T) {
	svc, repo, studentRepo := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, studentRepo, "Ann", "a@x.com")

	soon := null.TimeFrom(time.Now().UTC().Add(time.Hour))
	far := null.TimeFrom(time.Now().UTC().Add(30 * 24 * time.Hour))

	due := testutil.CreateNotice(t, repo, "due soon", "m", true, soon, notice.StatusPending)
	noDeadline := testutil.CreateNotice(t, repo, "no deadline", "m", true, null.Time{}, notice.StatusPending)
	testutil.CreateNotice(t, repo, "due later", "m", true, far, notice.StatusPending)
	testutil.CreateNotice(t, repo, "no reminder", "m", false, soon, notice.StatusPending)
	testutil.CreateNotice(t, repo, "confirmed", "m", true, soon, notice.StatusConfirmed)

	require.NoError(t, svc.ProcessDueReminders(ctx))

	require.Len(t, emailsvc.SentMessages, 2)
	var titles []string
	for _, msg := range emailsvc.SentMessages {
		titles = append(titles, strings.TrimPrefix(msg.Subject, "📢 "))
		assert.Contains(t, msg.TextContent, "still awaiting confirmation")
	}
	assert.ElementsMatch(t, []string{due.Title, noDeadline.Title}, titles)
}
