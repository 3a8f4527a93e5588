package main

import (
	"log"
	"os"

	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/student"
	"github.com/trezcool/ubao/storage/database"
	sqlxrepos "github.com/trezcool/ubao/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.LoadConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		db:         db,
		studentSvc: student.NewService(sqlxrepos.NewStudentRepository(db)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
