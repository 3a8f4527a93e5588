package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/ubao/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sqlx.DB
	studentSvc *student.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - bootstrap the database schema")
	fmt.Println("  addstudent -name NAME -email EMAIL - register a student (or rename the one matching the email)")
	fmt.Println("  liststudents - print the student directory")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email address; unique across the directory.")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentName == "" || *addStudentEmail == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentName, *addStudentEmail)
	case "liststudents":
		return cli.listStudents()
	default:
		cli.printUsage()
		return errHelp
	}
}
