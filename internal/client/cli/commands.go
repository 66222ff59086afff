package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
)

var errNotLoggedIn = errors.New("not logged in")

// Register prompts for an email and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Registered %s (id %s)\n", u.Email, u.ID)
	return nil
}

// Login stores the returned token for later commands.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}

	token, err := a.api.Login(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}
	a.token = token
	a.email = email
	fmt.Fprintln(a.out, "Logged in")
	return nil
}

// Me prints the current account. A rejected token ends the session.
func (a *App) Me(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.fail(errNotLoggedIn)
	}

	u, err := a.api.Me(ctx, a.token)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			a.token, a.email = "", ""
		}
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "ID:      %s\nEmail:   %s\nCreated: %s\nUpdated: %s\n",
		u.ID, u.Email, u.CreatedAt.Format(time.RFC3339), u.UpdatedAt.Format(time.RFC3339))
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	msg, code, err := a.api.ForgotPassword(ctx, email)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, msg)
	if code != "" {
		fmt.Fprintf(a.out, "Reset code (dev mode): %s\n", code)
	}
	return nil
}

// Reset redeems a reset code for a new password.
func (a *App) Reset(ctx context.Context) error {
	code, err := GetSimpleText(a.reader, "Reset code", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("New password", a.out)
	if err != nil {
		return err
	}

	msg, err := a.api.ResetPassword(ctx, code, password)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) Logout(_ context.Context) error {
	if !a.isLoggedIn() {
		return a.fail(errNotLoggedIn)
	}
	a.token, a.email = "", ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) fail(err error) error {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintln(a.out, "Error:", apiErr.Error())
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "Error: server unavailable, try again later")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}
