package main

import (
	"log"
	"os"

	echoapi "github.com/trezcool/ubao/apps/web/echo"
	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/notice"
	"github.com/trezcool/ubao/core/student"
	emailsvc "github.com/trezcool/ubao/services/email"
	logsvc "github.com/trezcool/ubao/services/logger"
	"github.com/trezcool/ubao/services/scheduler"
	"github.com/trezcool/ubao/storage/database"
	sqlxrepos "github.com/trezcool/ubao/storage/database/sqlx"
)

func main() {
	conf := core.LoadConfig()

	std := log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer db.Close()
	errAndDie(logger, database.Migrate(db))

	// set up services
	var mailSvc core.EmailService
	switch conf.Mail.Backend {
	case "smtp":
		mailSvc = emailsvc.NewSMTPService(conf, logger)
	case "sendgrid":
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	default:
		mailSvc = emailsvc.NewConsoleService(conf)
	}
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	noticeSvc := notice.NewService(conf, sqlxrepos.NewNoticeRepository(db), studentSvc, mailSvc, logger)

	// reminder job
	sched := scheduler.NewReminderScheduler(conf, noticeSvc, logger)
	errAndDie(logger, sched.Start())
	defer sched.Stop()

	// start web server; blocks until shutdown
	app := echoapi.NewServer(
		&echoapi.Options{
			Conf:       conf,
			Address:    conf.Server.Address,
			NoticeSvc:  noticeSvc,
			StudentSvc: studentSvc,
			Logger:     logger,
		},
	)
	app.Start()
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
