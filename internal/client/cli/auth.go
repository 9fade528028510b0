package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mediguard/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email, password and phone and creates an
// account. On success the new session is active immediately.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	phone, err := getSimpleText(a.reader, "Enter phone (optional)", a.out)
	if err != nil {
		return err
	}

	res, err := a.api.Register(ctx, name, email, string(password), phone)
	if err != nil {
		a.report(ctx, "Registration failed", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s! Your account has been created.\n", res.User.Name)
	return nil
}

// Login prompts for credentials and authenticates. Failures are printed
// inline and leave the current state unchanged.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	res, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		a.report(ctx, "Login failed", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s.\n", res.User.Name)
	return nil
}

// Logout ends the session locally even if the server cannot be told.
func (a *App) Logout(ctx context.Context) error {
	a.loggingOut.Store(true)
	defer a.loggingOut.Store(false)

	if err := a.api.Logout(ctx); err != nil {
		a.report(ctx, "Logout failed", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the user held by the session store; it makes no request.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.store.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	printUser(a.out, u)
	return nil
}

// Profile refreshes the user from the server.
func (a *App) Profile(ctx context.Context) error {
	u, err := a.api.FetchProfile(ctx)
	if err != nil {
		a.report(ctx, "Could not load profile", err)
		return err
	}
	printUser(a.out, u)
	return nil
}
