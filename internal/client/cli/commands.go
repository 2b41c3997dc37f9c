package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/devconnector/internal/client/client"
	"github.com/dmitrijs2005/devconnector/internal/client/models"
	"github.com/dmitrijs2005/devconnector/internal/client/session"
	"github.com/dmitrijs2005/devconnector/internal/common"
)

// getPassword is an indirection over GetPassword so tests never touch the terminal.
var getPassword = GetPassword

func (a *App) readPassword() (string, error) {
	pw, err := getPassword(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	user, err := a.session.Register(ctx, name, email, password)
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintf(a.out, "Registered and logged in as %s\n", userLabel(user))
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	user, err := a.session.Login(ctx, email, password)
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", userLabel(user))
	return nil
}

func (a *App) Me(ctx context.Context) error {
	user, err := a.session.Refresh(ctx)
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintf(a.out, "ID:      %s\n", user.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", user.Name)
	fmt.Fprintf(a.out, "Email:   %s\n", user.Email)
	fmt.Fprintf(a.out, "Avatar:  %s\n", user.Avatar)
	if user.AvatarURL != "" {
		fmt.Fprintf(a.out, "URL:     %s\n", user.AvatarURL)
	}
	fmt.Fprintf(a.out, "Joined:  %s\n", user.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Alerts(ctx context.Context) error {
	list := a.alerts.List()
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No alerts")
		return nil
	}
	for _, al := range list {
		fmt.Fprintf(a.out, "[%s] %s (%s)\n", al.Severity, al.Message, al.ID)
	}
	return nil
}

func (a *App) Dismiss(ctx context.Context, id string) error {
	if id == "" {
		fmt.Fprintln(a.out, "Usage: dismiss <id>")
		return nil
	}
	a.alerts.Dismiss(id)
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.checkOnline(ctx); err != nil {
		fmt.Fprintln(a.out, "Server unavailable")
		return err
	}
	fmt.Fprintln(a.out, "pong")
	return nil
}

// report prints the user-facing form of a command error. Validation
// failures are already queued as alerts, so those are shown instead.
func (a *App) report(err error) {
	var ve *client.ValidationError
	switch {
	case errors.As(err, &ve):
		_ = a.Alerts(context.Background())
	case errors.Is(err, session.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "Not logged in")
	case errors.Is(err, session.ErrSuperseded):
		fmt.Fprintln(a.out, "Session changed while the request was running")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func userLabel(u *models.User) string {
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}
