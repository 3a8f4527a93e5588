package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/notice"
	"github.com/trezcool/ubao/core/student"
	logsvc "github.com/trezcool/ubao/services/logger"
)

// NewTestLogger returns a quiet logger; rollbar reporting is disabled in test mode.
func NewTestLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
}

func CreateStudent(t *testing.T, repo student.Repository, name, email string) student.Student {
	t.Helper()

	std, err := repo.CreateStudent(context.Background(), student.Student{Name: name, Email: email})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateNotice(
	t *testing.T,
	repo notice.Repository,
	title, message string,
	needsReminder bool,
	deadline null.Time,
	status notice.Status,
) notice.Notice {
	t.Helper()

	n, err := repo.CreateNotice(context.Background(), notice.Notice{
		Title:         title,
		Message:       message,
		NeedsReminder: needsReminder,
		Deadline:      deadline,
		CreatedAt:     time.Now().UTC(),
		Status:        status,
	})
	if err != nil {
		t.Fatalf("CreateNotice() failed: %v", err)
	}
	return n
}
