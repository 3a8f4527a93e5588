package notice

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("notice not found")
)

const (
	newNoticeTemplate = "new-notice"
	reminderTemplate  = "notice-reminder"
)

type (
	Repository interface {
		CreateNotice(ctx context.Context, n Notice) (Notice, error)
		// QueryAllNotices returns notices in insertion order.
		QueryAllNotices(ctx context.Context) ([]Notice, error)
		GetNoticeByID(ctx context.Context, id int) (Notice, error)
		SetNoticeStatus(ctx context.Context, id int, status Status) error
		FilterNotices(ctx context.Context, filter QueryFilter) ([]Notice, error)
	}

	Service struct {
		conf       *core.Config
		repo       Repository
		studentSvc *student.Service
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

func NewService(
	conf *core.Config,
	repo Repository,
	studentSvc *student.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		conf:       conf,
		repo:       repo,
		studentSvc: studentSvc,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

// Create validates and persists a new Notice, then dispatches one email per
// registered student. Persistence must succeed even when the directory is
// empty or delivery fails later; sending never blocks the caller.
func (svc *Service) Create(ctx context.Context, nn NewNotice) (Notice, error) {
	if err := nn.Validate(); err != nil {
		return Notice{}, err
	}
	n := Notice{
		Title:         nn.Title,
		Message:       nn.Message,
		NeedsReminder: nn.NeedsReminder(),
		Deadline:      nn.DeadlineTime(),
		CreatedAt:     time.Now().UTC(),
		Status:        StatusPending,
	}
	n, err := svc.repo.CreateNotice(ctx, n)
	if err != nil {
		return Notice{}, err
	}
	svc.notifyStudents(ctx, n, newNoticeTemplate)
	return n, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Notice, error) {
	return svc.repo.QueryAllNotices(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Notice, error) {
	return svc.repo.GetNoticeByID(ctx, id)
}

// Confirm flips the notice to Confirmed. The operation is idempotent and the
// studentID is accepted without verification: the link itself is the only
// credential, and the stored status is per-notice, not per-student.
func (svc *Service) Confirm(ctx context.Context, noticeID, studentID int) (Notice, error) {
	n, err := svc.repo.GetNoticeByID(ctx, noticeID)
	if err != nil {
		return Notice{}, err
	}
	if err := svc.repo.SetNoticeStatus(ctx, noticeID, StatusConfirmed); err != nil {
		return Notice{}, err
	}
	n.Status = StatusConfirmed
	svc.logger.Info(fmt.Sprintf("notice %d confirmed via link for student %d", noticeID, studentID))
	return n, nil
}

// ProcessDueReminders re-mails every Pending notice that asked for reminders
// and is due within the configured window (or has no deadline at all).
func (svc *Service) ProcessDueReminders(ctx context.Context) error {
	needsReminder := true
	due, err := svc.repo.FilterNotices(ctx, QueryFilter{
		Status:        StatusPending,
		NeedsReminder: &needsReminder,
		DueBefore:     time.Now().UTC().Add(svc.conf.Reminder.Window),
	})
	if err != nil {
		return err
	}
	for _, n := range due {
		svc.notifyStudents(ctx, n, reminderTemplate)
	}
	return nil
}

// notifyStudents builds one message per student and hands the batch to the
// email service, which isolates each recipient. Failures are logged, never
// propagated: notice creation must not depend on delivery.
func (svc *Service) notifyStudents(ctx context.Context, n Notice, templateName string) {
	students, err := svc.studentSvc.QueryAll(ctx)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("querying students for notice %d: %v", n.ID, err), err)
		return
	}
	if len(students) == 0 {
		return
	}

	batchID := uuid.New()
	messages := make([]*core.EmailMessage, 0, len(students))
	for _, std := range students {
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: std.Name, Address: std.Email}},
			Subject:      "📢 " + n.Title,
			TemplateName: templateName,
			TemplateData: EmailData{
				Notice:      n,
				Student:     std,
				ConfirmPath: fmt.Sprintf("/confirm/%d/%d", n.ID, std.ID),
			},
		})
	}
	svc.logger.Info(fmt.Sprintf(
		"dispatching %q (%s) to %d student(s); batch %s", n.Title, templateName, len(messages), batchID,
	))
	svc.mailSvc.SendMessages(messages...)
}
