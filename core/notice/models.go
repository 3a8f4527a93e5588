package notice

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/student"
)

// Status of a Notice. A notice starts Pending and a confirmation link click
// moves it to Confirmed; Confirmed is terminal.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
)

// DeadlineFormat is the date form accepted on submission and shown in emails.
const DeadlineFormat = "2006-01-02"

type Notice struct {
	ID            int       `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Message       string    `json:"message" db:"message"`
	NeedsReminder bool      `json:"needs_reminder" db:"needs_reminder"`
	Deadline      null.Time `json:"deadline" db:"deadline"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
	Status        Status    `json:"status" db:"status"`
}

func (n Notice) IsPending() bool   { return n.Status == StatusPending }
func (n Notice) IsConfirmed() bool { return n.Status == StatusConfirmed }

// DeadlineDisplay renders the deadline for emails; a notice without one is due "ASAP".
// Value receiver so templates can call it on an embedded Notice.
func (n Notice) DeadlineDisplay() string {
	if !n.Deadline.Valid {
		return "ASAP"
	}
	return n.Deadline.Time.Format(DeadlineFormat)
}

// NewNotice contains the submission fields for a new Notice.
// Reminder holds the raw checkbox value; presence means the notice wants reminders.
type NewNotice struct {
	Title    string `form:"title" json:"title" validate:"required,max=100"`
	Message  string `form:"message" json:"message" validate:"required,max=500"`
	Reminder string `form:"reminder" json:"reminder"`
	Deadline string `form:"deadline" json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

func (nn *NewNotice) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	nn.Deadline = core.CleanString(nn.Deadline)
	return core.Validate.Struct(nn)
}

func (nn *NewNotice) NeedsReminder() bool { return nn.Reminder != "" }

// DeadlineTime parses the submitted deadline; invalid on absence.
// Validate must have accepted the value first.
func (nn *NewNotice) DeadlineTime() null.Time {
	if nn.Deadline == "" {
		return null.Time{}
	}
	t, err := time.Parse(DeadlineFormat, nn.Deadline)
	if err != nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	Status        Status
	NeedsReminder *bool
	// DueBefore matches notices whose deadline is absent or falls before it.
	DueBefore time.Time
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Status == "" && qf.NeedsReminder == nil && qf.DueBefore.IsZero()
}

// EmailData is the template payload for notice emails.
type EmailData struct {
	Notice      Notice
	Student     student.Student
	ConfirmPath string
}
