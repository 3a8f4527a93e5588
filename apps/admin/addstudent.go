package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ubao/core/student"
)

// addStudent registers a student, or renames the existing one matching the email.
func (cli *commandLine) addStudent(name, email string) error {
	ctx := context.Background()

	std, err := cli.studentSvc.UpdateOrCreate(ctx, student.NewStudent{Name: name, Email: email})
	if err != nil {
		return err
	}
	fmt.Printf("student %d: %s <%s>\n", std.ID, std.Name, std.Email)
	return nil
}

func (cli *commandLine) listStudents() error {
	students, err := cli.studentSvc.QueryAll(context.Background())
	if err != nil {
		return err
	}
	for _, std := range students {
		fmt.Printf("%d\t%s\t%s\n", std.ID, std.Name, std.Email)
	}
	return nil
}
