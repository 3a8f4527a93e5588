package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ubao/core/notice"
	emailsvc "github.com/trezcool/ubao/services/email"
	testutil "github.com/trezcool/ubao/tests"
)

func TestNoticeApi_list(t *testing.T) {
	srv, repo, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	testutil.CreateNotice(t, repo, "Exam", "Room 5", true, null.Time{}, notice.StatusPending)

	req, rec = newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var notices []notice.Notice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notices))
	require.Len(t, notices, 1)
	assert.Equal(t, "Exam", notices[0].Title)
	assert.Equal(t, notice.StatusPending, notices[0].Status)
}

func TestNoticeApi_create(t *testing.T) {
	srv, repo, studentRepo := setup(t)
	ann := testutil.CreateStudent(t, studentRepo, "Ann", "a@x.com")

	form := url.Values{}
	form.Set("title", "Exam")
	form.Set("message", "Room 5")
	form.Set("reminder", "on")
	form.Set("deadline", "2025-06-01")

	req, rec := newFormRequest(http.MethodPost, "/", form)
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	notices, err := repo.QueryAllNotices(context.Background())
	require.NoError(t, err)
	require.Len(t, notices, 1)
	n := notices[0]
	assert.Equal(t, notice.StatusPending, n.Status)
	assert.True(t, n.NeedsReminder)

	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, ann.Email, msg.To[0].Address)
	for _, want := range []string{"Exam", "Room 5", "2025-06-01", fmt.Sprintf("/confirm/%d/%d", n.ID, ann.ID)} {
		assert.Contains(t, msg.TextContent, want)
	}
}

func TestNoticeApi_create_invalid(t *testing.T) {
	srv, repo, studentRepo := setup(t)
	testutil.CreateStudent(t, studentRepo, "Ann", "a@x.com")

	tests := []struct {
		name      string
		form      url.Values
		wantField string
	}{
		{name: "missing title", form: url.Values{"message": {"Room 5"}}, wantField: "title"},
		{name: "missing message", form: url.Values{"title": {"Exam"}}, wantField: "message"},
		{name: "malformed deadline", form: url.Values{"title": {"Exam"}, "message": {"Room 5"}, "deadline": {"June 1st"}}, wantField: "deadline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newFormRequest(http.MethodPost, "/", tt.form)
			srv.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var fldErrs map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
			assert.Contains(t, fldErrs, tt.wantField)
		})
	}

	// nothing persisted, nothing sent
	notices, err := repo.QueryAllNotices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Empty(t, emailsvc.SentMessages)
}

func TestNoticeApi_confirm(t *testing.T) {
	srv, repo, _ := setup(t)
	n := testutil.CreateNotice(t, repo, "Exam", "Room 5", true, null.Time{}, notice.StatusPending)

	req, rec := newRequest(http.MethodGet, fmt.Sprintf("/confirm/%d/1", n.ID))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thanks for confirming")

	stored, err := repo.GetNoticeByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, notice.StatusConfirmed, stored.Status)

	// confirming twice is fine, whoever the student is
	req, rec = newRequest(http.MethodGet, fmt.Sprintf("/confirm/%d/999", n.ID))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thanks for confirming")
}

func TestNoticeApi_confirm_errors(t *testing.T) {
	srv, _, _ := setup(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{name: "unknown notice", path: "/confirm/404/1", wantCode: http.StatusNotFound, wantBody: "notice not found"},
		{name: "bad notice id", path: "/confirm/abc/1", wantCode: http.StatusBadRequest, wantBody: "invalid notice id"},
		{name: "bad student id", path: "/confirm/1/abc", wantCode: http.StatusBadRequest, wantBody: "invalid student id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			srv.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
