package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/aussiebroadwan/deskauth/pkg/cryptox"
	"github.com/urfave/cli/v2"
)

var errNoToken = errors.New("no session token: run `authctl login` and export AUTHCTL_TOKEN, or pass --token")

type globals struct {
	baseURL string
	token   string
}

func (g *globals) client() *authsdk.SDKClient {
	return authsdk.NewSDKClient(g.baseURL)
}

func (g *globals) session() (*authsdk.Session, error) {
	if g.token == "" {
		return nil, errNoToken
	}
	return g.client().NewSession(g.token), nil
}

func newApp() *cli.App {
	g := &globals{}
	return &cli.App{
		Name:  "authctl",
		Usage: "Manage users of a deskauth service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "url",
				Usage:       "Base URL of the auth service",
				EnvVars:     []string{"AUTHCTL_URL"},
				Value:       "http://localhost:4000",
				Destination: &g.baseURL,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "Session token from `authctl login`",
				EnvVars:     []string{"AUTHCTL_TOKEN"},
				Destination: &g.token,
			},
		},
		Commands: []*cli.Command{
			loginCmd(g),
			usersCmd(g),
			passwdCmd(g),
			bootstrapCmd(g),
			secretCmd(),
		},
	}
}

func passwordFlag(dst *string, env string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "password",
		Usage:       "Password (prompted for when omitted)",
		EnvVars:     []string{env},
		Destination: dst,
	}
}

func loginCmd(g *globals) *cli.Command {
	var username, password string
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and print a session token, e.g. export AUTHCTL_TOKEN=$(authctl login -u root)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Required:    true,
				Destination: &username,
			},
			passwordFlag(&password, "AUTHCTL_PASSWORD"),
		},
		Action: func(ctx *cli.Context) error {
			if password == "" {
				var err error
				if password, err = promptPassword(ctx.App.ErrWriter, "Password"); err != nil {
					return err
				}
			}

			s, err := g.client().Login(ctx.Context, username, password)
			if err != nil {
				return err
			}

			u := s.User()
			fmt.Fprintf(ctx.App.ErrWriter, "logged in as %s (%s), token expires %s\n",
				u.Username, u.Role, s.ExpiresAt().Local().Format(time.RFC1123))
			fmt.Fprintln(ctx.App.Writer, s.Token())
			return nil
		},
	}
}

func usersCmd(g *globals) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "List, add and delete users (admin only)",
		Subcommands: []*cli.Command{
			usersListCmd(g),
			usersAddCmd(g),
			usersDeleteCmd(g),
		},
	}
}

func usersListCmd(g *globals) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all users",
		Action: func(ctx *cli.Context) error {
			s, err := g.session()
			if err != nil {
				return err
			}
			users, err := s.ListUsers(ctx.Context)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tCREATED")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func usersAddCmd(g *globals) *cli.Command {
	var username, password, role string
	var generate bool
	return &cli.Command{
		Name:  "add",
		Usage: "Register a user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Required:    true,
				Destination: &username,
			},
			&cli.StringFlag{
				Name:        "role",
				Usage:       "user or admin",
				Value:       "user",
				Destination: &role,
			},
			passwordFlag(&password, "AUTHCTL_NEW_PASSWORD"),
			&cli.BoolFlag{
				Name:        "generate-password",
				Usage:       "Generate a random password and print it",
				Destination: &generate,
			},
		},
		Action: func(ctx *cli.Context) error {
			s, err := g.session()
			if err != nil {
				return err
			}

			switch {
			case generate:
				if password, err = cryptox.GeneratePassword(); err != nil {
					return err
				}
			case password == "":
				if password, err = promptNewPassword(ctx.App.ErrWriter); err != nil {
					return err
				}
			}

			u, err := s.Register(ctx.Context, authsdk.RegisterRequest{
				Username: username,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(ctx.App.Writer, "created %s (%s) with id %d\n", u.Username, u.Role, u.ID)
			if generate {
				fmt.Fprintf(ctx.App.Writer, "password: %s\n", password)
			}
			return nil
		},
	}
}

func usersDeleteCmd(g *globals) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a user",
		ArgsUsage: "<username>",
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return cli.Exit("expected exactly one username", 2)
			}
			s, err := g.session()
			if err != nil {
				return err
			}

			username := ctx.Args().First()
			if err := s.DeleteUser(ctx.Context, username); err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "deleted %s\n", username)
			return nil
		},
	}
}

func passwdCmd(g *globals) *cli.Command {
	var username string
	return &cli.Command{
		Name:  "passwd",
		Usage: "Change your password, or reset another user's with --user (admin only)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "user",
				Usage:       "User whose password to reset",
				Destination: &username,
			},
		},
		Action: func(ctx *cli.Context) error {
			s, err := g.session()
			if err != nil {
				return err
			}

			if username != "" {
				pw, err := promptNewPassword(ctx.App.ErrWriter)
				if err != nil {
					return err
				}
				if err := s.ResetPassword(ctx.Context, username, pw); err != nil {
					return err
				}
				fmt.Fprintf(ctx.App.Writer, "password for %s reset\n", username)
				return nil
			}

			current, err := promptPassword(ctx.App.ErrWriter, "Current password")
			if err != nil {
				return err
			}
			pw, err := promptNewPassword(ctx.App.ErrWriter)
			if err != nil {
				return err
			}
			if err := s.ChangePassword(ctx.Context, current, pw); err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, "password changed")
			return nil
		},
	}
}

func bootstrapCmd(g *globals) *cli.Command {
	var token, username, password string
	return &cli.Command{
		Name:  "bootstrap",
		Usage: "Create the first admin on a service with no users",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bootstrap-token",
				EnvVars:     []string{"BOOTSTRAP_TOKEN"},
				Required:    true,
				Destination: &token,
			},
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Required:    true,
				Destination: &username,
			},
			passwordFlag(&password, "AUTHCTL_NEW_PASSWORD"),
		},
		Action: func(ctx *cli.Context) error {
			if password == "" {
				var err error
				if password, err = promptNewPassword(ctx.App.ErrWriter); err != nil {
					return err
				}
			}

			u, err := g.client().Bootstrap(ctx.Context, token, authsdk.BootstrapRequest{
				Username: username,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "created admin %s with id %d\n", u.Username, u.ID)
			return nil
		},
	}
}

func secretCmd() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "Print a random 256-bit value suitable for JWT_SECRET or BOOTSTRAP_TOKEN",
		Action: func(ctx *cli.Context) error {
			s, err := cryptox.GenerateToken(cryptox.TokenSize256)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, s)
			return nil
		},
	}
}
