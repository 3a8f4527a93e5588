package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ubao/core/notice"
)

type noticeApi struct {
	svc *notice.Service
}

func registerNoticeAPI(e *echo.Echo, svc *notice.Service) {
	api := noticeApi{svc: svc}

	e.GET("/", api.list)
	e.POST("/", api.create)
	e.GET("/confirm/:notice_id/:student_id", api.confirm)
}

// Handlers

func (api *noticeApi) list(ctx echo.Context) error {
	notices, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying notices")
	}
	if notices == nil {
		notices = []notice.Notice{}
	}
	return ctx.JSON(http.StatusOK, notices)
}

func (api *noticeApi) create(ctx echo.Context) error {
	var data notice.NewNotice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotice")
	}

	// Create validates before persisting; delivery is dispatched out of band
	// so the redirect never waits on the relay.
	if _, err := api.svc.Create(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/")
}

func (api *noticeApi) confirm(ctx echo.Context) error {
	noticeID, err := strconv.Atoi(ctx.Param("notice_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notice id")
	}
	studentID, err := strconv.Atoi(ctx.Param("student_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}

	if _, err := api.svc.Confirm(ctx.Request().Context(), noticeID, studentID); err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return errHttpNoticeNotFound
		}
		return errors.Wrap(err, "confirming notice")
	}
	return ctx.String(http.StatusOK, "✅ Thanks for confirming!")
}
