package tests

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/ubao/apps/web/echo"
	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/notice"
	"github.com/trezcool/ubao/core/student"
	emailsvc "github.com/trezcool/ubao/services/email"
	inmemdb "github.com/trezcool/ubao/storage/database/inmem"
	testutil "github.com/trezcool/ubao/tests"
)

func setup(t *testing.T) (echoapi.Server, notice.Repository, student.Repository) {
	t.Helper()

	conf := core.TestConfig()

	// set up DB & repos
	db, err := inmemdb.Open()
	require.NoError(t, err)
	noticeRepo := inmemdb.NewNoticeRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)

	// set up services
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	logger := testutil.NewTestLogger(conf)
	studentSvc := student.NewService(studentRepo)
	noticeSvc := notice.NewService(conf, noticeRepo, studentSvc, mailSvc, logger)

	// set up server
	srv := echoapi.NewServer(
		&echoapi.Options{
			Conf:           conf,
			DisableReqLogs: true,
			NoticeSvc:      noticeSvc,
			StudentSvc:     studentSvc,
			Logger:         logger,
		},
	)
	return srv, noticeRepo, studentRepo
}

func newRequest(method, path string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return req, rec
}

func newFormRequest(method, path string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	return req, rec
}
