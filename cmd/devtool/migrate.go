package main

import (
	"fmt"
)

type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

func (c *MigrateCommand) Description() string {
	return "Manage database migrations (up, down, status, create)"
}

func (c *MigrateCommand) Run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("subcommand required: up, down, status, create")
	}
	subcmd := args[0]

	gooseCmd := "go"
	gooseArgs := []string{"run", "github.com/pressly/goose/v3/cmd/goose", "-dir", "migrations"}

	// create needs no DB connection
	if subcmd == "create" {
		if len(args) < 2 {
			return fmt.Errorf("migration name required for create")
		}

		migrationType := "sql"
		if len(args) > 2 {
			migrationType = args[2]
		}
		gooseArgs = append(gooseArgs, "create", args[1], migrationType)

		return runCommandVerbose(gooseCmd, gooseArgs...)
	}

	gooseArgs = append(gooseArgs, "postgres", dbURL(), subcmd)

	// Extra args, e.g. version for up-to/down-to
	if len(args) > 1 {
		gooseArgs = append(gooseArgs, args[1:]...)
	}

	return runCommandVerbose(gooseCmd, gooseArgs...)
}
