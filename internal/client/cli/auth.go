package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/verixa/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates an account. The
// password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.api.Register(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id %s). Check your inbox to verify the address.\n", email, id)
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, email, password); err != nil {
		return err
	}

	a.email = email
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// WhoAmI prints the profile behind the current access token.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}

	provider := "local"
	if u.OAuthProvider != nil {
		provider = *u.OAuthProvider
	}
	fmt.Fprintf(a.out, "%s\n  id:       %s\n  verified: %t\n  provider: %s\n", u.Email, u.ID, u.IsVerified, provider)
	return nil
}

// Refresh exchanges the refresh token for a new access token.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.api.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Access token refreshed")
	return nil
}

// Logout revokes the session on the server.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// ResendVerification asks the server for a fresh verification link.
func (a *App) ResendVerification(ctx context.Context) error {
	email := a.email
	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	if err := a.api.ResendVerification(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Verification email resent")
	return nil
}
