package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"tictactoe-client/internal/api"
	"tictactoe-client/internal/gameclient"
)

var errNotSignedIn = errors.New("not signed in")

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list finished games of a fresh guest session or the signed-in user",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, done, err := setup(gameclient.Handlers{})
			if err != nil {
				return err
			}
			defer done()
			if _, err := signIn(ctx, client, true); err != nil {
				return err
			}
			history, err := client.API().FetchHistory(ctx)
			if err != nil {
				return err
			}
			if len(history.Games) == 0 {
				fmt.Println("no games yet")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GAME\tTYPE\tWINNER\tMOVES\tCREATED")
			for _, g := range history.Games {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", g.GameID, g.GameType, g.Winner, len(g.Moves), g.CreatedAt)
			}
			return tw.Flush()
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the account the bot plays as",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "guest",
				Usage:   "create a guest session when not signed in",
				Value:   true,
				Sources: cli.EnvVars("BOT_GUEST_LOGIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, done, err := setup(gameclient.Handlers{})
			if err != nil {
				return err
			}
			defer done()
			user, err := signIn(ctx, client, cmd.Bool("guest"))
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
}

// signIn returns the current user, creating a guest session when allowed.
// Without one it points the operator at the OAuth page.
func signIn(ctx context.Context, client *gameclient.Client, guest bool) (api.User, error) {
	if guest {
		return client.EnsureSession(ctx)
	}
	ok, err := client.API().CheckAuth(ctx)
	if err != nil {
		return api.User{}, err
	}
	if ok {
		return client.API().FetchUser(ctx)
	}
	authURL, err := client.API().AuthorizationURL(ctx)
	if err != nil {
		return api.User{}, err
	}
	return api.User{}, fmt.Errorf("%w: sign in at %s", errNotSignedIn, authURL)
}
