package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/user"
)

// createSuperuser creates a user.User with all roles, or promotes an existing one.
func (cli *commandLine) createSuperuser(name, email, phone, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      core.CleanString(name),
			Email:     email,
			Phone:     core.CleanString(phone),
			Roles:     user.AllRoles,
			CreatedAt: now,
			UpdatedAt: now,
		}
		usr.SetActive(true)
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Roles = user.AllRoles
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	isActive := true
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &isActive)
	return err
}
