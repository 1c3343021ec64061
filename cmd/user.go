/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var CmdUser = &cli.Command{
	Name:  "user",
	Usage: "Account management",
	Commands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Create an account (the password is read from stdin when not given)",
			Flags: []cli.Flag{
				databaseURLFlag,
				&cli.StringFlag{Name: "login-id", Usage: "login id", Required: true},
				&cli.StringFlag{Name: "display-name", Usage: "name shown in the header"},
				&cli.StringFlag{Name: "password", Sources: cli.EnvVars("HYOE_PASSWORD"), Usage: "initial password"},
				&cli.BoolFlag{Name: "admin", Usage: "grant administrator rights"},
			},
			Action: userCreate,
		},
		{
			Name:  "password",
			Usage: "Reset the password of an account",
			Flags: []cli.Flag{
				databaseURLFlag,
				&cli.StringFlag{Name: "login-id", Usage: "login id", Required: true},
				&cli.StringFlag{Name: "password", Sources: cli.EnvVars("HYOE_PASSWORD"), Usage: "new password"},
			},
			Action: userPassword,
		},
	},
}

// readPassword returns the flag value, or reads the password twice from r.
func readPassword(flagValue string, r io.Reader, prompt io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	scanner := bufio.NewScanner(r)
	read := func(label string) (string, error) {
		fmt.Fprint(prompt, label)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}

			return "", errPasswordRequired
		}

		return strings.TrimRight(scanner.Text(), "\r\n"), nil
	}

	first, err := read("Password: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errPasswordRequired
	}

	second, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}

	return first, nil
}

func userCreate(ctx context.Context, cmd *cli.Command) error {
	loginID := strings.TrimSpace(cmd.String("login-id"))
	if loginID == "" {
		return errLoginIDRequired
	}

	password, err := readPassword(cmd.String("password"), os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	displayName := strings.TrimSpace(cmd.String("display-name"))
	if displayName == "" {
		displayName = loginID
	}

	return withDatabase(ctx, cmd, func(ctx context.Context) error {
		user, err := db.CreateUser(ctx, db.CreateUserInput{
			LoginID:     loginID,
			Password:    password,
			DisplayName: displayName,
			IsAdmin:     cmd.Bool("admin"),
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		appLogger.Info("User created", "login_id", user.LoginID, "user_id", user.ID, "admin", user.IsAdmin)

		return nil
	})
}

func userPassword(ctx context.Context, cmd *cli.Command) error {
	loginID := strings.TrimSpace(cmd.String("login-id"))
	if loginID == "" {
		return errLoginIDRequired
	}

	password, err := readPassword(cmd.String("password"), os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	return withDatabase(ctx, cmd, func(ctx context.Context) error {
		user, err := db.GetUserByLoginID(ctx, loginID)
		if err != nil {
			return fmt.Errorf("failed to find user: %w", err)
		}

		if err := db.SetUserPassword(ctx, user.ID, password); err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}

		appLogger.Info("Password updated", "login_id", user.LoginID)

		return nil
	})
}
