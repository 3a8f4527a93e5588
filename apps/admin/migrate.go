package main

import (
	"fmt"

	"github.com/trezcool/ubao/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate() error {
	if err := migrateFunc(cli.db); err != nil {
		return err
	}
	fmt.Println("schema up to date")
	return nil
}
