package main

import (
	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/storage/database"
)

var migrateRunFunc = database.Migrate // mockable

func (cli *commandLine) migrate() error {
	return migrateRunFunc(cli.db, core.Conf)
}
