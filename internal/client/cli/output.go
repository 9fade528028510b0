package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/mediguard/internal/client/client"
	"github.com/dmitrijs2005/mediguard/internal/client/models"
)

// report prints a user-facing line for err. An unauthorized error prints
// nothing: the session listener already told the user.
func (a *App) report(ctx context.Context, action string, err error) {
	a.logger.Debug(ctx, action, "error", err)

	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		if !a.isLoggedIn() {
			return
		}
		fmt.Fprintf(a.out, "%s: not authorized.\n", action)
	case errors.Is(err, client.ErrInvalidCredentials):
		fmt.Fprintf(a.out, "%s: invalid email or password.\n", action)
	case errors.Is(err, client.ErrNetwork):
		fmt.Fprintf(a.out, "%s: cannot reach MediGuard right now, please try again.\n", action)
	case errors.As(err, &apiErr) && apiErr.Message != "":
		fmt.Fprintf(a.out, "%s: %s\n", action, apiErr.Message)
	default:
		fmt.Fprintf(a.out, "%s: %v\n", action, err)
	}
}

func printUser(w io.Writer, u *models.UserProfile) {
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Member since %s\n", u.CreatedAt.Local().Format("2006-01-02"))
	}
}
