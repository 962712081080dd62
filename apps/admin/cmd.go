package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/darasa-tz/darasa/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createsuperuser -name NAME -email EMAIL -phone PHONE - create or promote an admin account")
	fmt.Println("  resetpassword -email EMAIL - reset a user's password")
	fmt.Println("  migrate - apply pending database migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createSuperuserCmd := flag.NewFlagSet("createsuperuser", flag.ExitOnError)
	csName := createSuperuserCmd.String("name", "", "The admin's full name.")
	csEmail := createSuperuserCmd.String("email", "", "The admin's email. The password will be prompted next.")
	csPhone := createSuperuserCmd.String("phone", "", "The admin's phone number, +255XXXXXXXXX.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	rpEmail := resetPasswordCmd.String("email", "", "The user's email. The new password will be prompted next.")

	switch args[1] {
	case "createsuperuser":
		if err := createSuperuserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *csName == "" || *csEmail == "" || *csPhone == "" {
			createSuperuserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createSuperuserCmd.Usage()
			return errHelp
		}
		return cli.createSuperuser(*csName, *csEmail, *csPhone, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *rpEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*rpEmail, pwd)
	case "migrate":
		return cli.migrate()
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
