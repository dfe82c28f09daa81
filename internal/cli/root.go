// Package cli implements marketctl, the single-device command line client.
// It talks to the store directly and keeps the signed-in member in a
// session.Manager.
package cli

import (
	"errors"
	"fmt"
	"io"

	"carmarket/internal/app"
	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/session"

	"github.com/spf13/cobra"
)

var errSignedOut = errors.New("not signed in, run `marketctl login` first")

// Env is what every command runs against.
type Env struct {
	App     *app.App
	Session *session.Manager
}

func (e *Env) identity() (auth.Identity, error) {
	id, ok := e.Session.Identity()
	if !ok {
		return auth.Identity{}, errSignedOut
	}
	return id, nil
}

// NewRootCommand builds the marketctl command tree writing to out.
func NewRootCommand(env *Env, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "marketctl",
		Short:         "Browse and trade used cars from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(
		newLoginCommand(env),
		newRegisterCommand(env),
		newLogoutCommand(env),
		newWhoamiCommand(env),
		newCarsCommand(env),
		newAskCommand(env),
		newChatCommand(env),
		newPostsCommand(env),
	)
	return root
}

// describe renders an application error the way the API's envelope would.
func describe(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
	}
	return err
}
