package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shelfsync/internal/common"
)

// Prompt helpers, swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getRequiredText = GetRequiredText
	getCode         = GetCode
	getPassword     = GetPassword
)

// Login prompts for the provider username, password and marketplace, then
// authenticates. When the provider asks for a verification code the user
// is prompted once more and the code is submitted with the returned
// session id. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getRequiredText(a.reader, "Enter username (email or phone)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	marketplace, err := getSimpleText(a.reader, fmt.Sprintf("Marketplace [%s]", a.config.Marketplace), a.out)
	if err != nil {
		return err
	}
	if marketplace == "" {
		marketplace = a.config.Marketplace
	}

	res, err := a.api.Login(ctx, userName, password, marketplace)
	if err != nil {
		return err
	}

	if res.RequiresOTP {
		fmt.Fprintln(a.out, res.Message)
		code, err := getCode(a.reader, a.out)
		if err != nil {
			return err
		}
		res, err = a.api.VerifyOTP(ctx, res.SessionID, code)
		if err != nil {
			return err
		}
	}

	if !res.Success {
		return errors.New(res.Message)
	}

	a.userName = userName
	if res.User != nil && res.User.Username != "" {
		a.userName = res.User.Username
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

// Me refreshes the local view of the session from the server.
func (a *App) Me(ctx context.Context) error {
	res, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	if !res.Authenticated || res.User == nil {
		a.userName = ""
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	a.userName = res.User.Username
	fmt.Fprintf(a.out, "Logged in as %s (marketplace %s, user %s)\n", res.User.Username, res.User.Marketplace, res.User.UserID)
	return nil
}

func (a *App) Test(ctx context.Context) error {
	res, err := a.api.TestAccess(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message)
	return nil
}

// Logout forgets the session locally even if the server call fails.
func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
