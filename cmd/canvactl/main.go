// Command canvactl is the command-line front end for the canva API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lohit-Behera/canva/internal/apperr"
	"github.com/Lohit-Behera/canva/internal/client"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := root.ExecuteContext(ctx); err != nil {
		return report(stderr, err)
	}
	return 0
}

// cli carries the state built by the root command for its subcommands.
type cli struct {
	apiURL      string
	sessionPath string
	app         *client.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "canvactl",
		Short:         "Manage your canva account and forms",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open()
		},
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api", envOr("CANVA_API", "http://localhost:8000/api/v1"), "API base URL")
	root.PersistentFlags().StringVar(&c.sessionPath, "session", "", "session file (default ~/.canva/session.json)")

	root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.googleCmd(),
		c.logoutCmd(),
		c.meCmd(),
		c.activityCmd(),
		c.createCmd(),
		c.getCmd(),
		c.listCmd(),
		c.deleteCmd(),
	)
	return root
}

func (c *cli) open() error {
	if c.sessionPath == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return fmt.Errorf("session path: %w", err)
		}
		c.sessionPath = p
	}
	sess, err := client.LoadSession(c.sessionPath)
	if err != nil {
		return err
	}
	api, err := client.New(c.apiURL)
	if err != nil {
		return err
	}
	c.app = client.NewApp(api, sess)
	return nil
}

func (c *cli) registerCmd() *cobra.Command {
	in := client.RegisterInput{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := c.app.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			fmt.Fprintln(cmd.OutOrStdout(), "Sign in with: canvactl login --email", in.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "full name")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Password, "password", "", "password")
	f.StringVar(&in.ConfirmPassword, "confirm", "", "password again")
	f.StringVar(&in.AvatarPath, "avatar", "", "avatar image (jpeg or png)")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.app.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s\n", p.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (c *cli) googleCmd() *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Sign in with a Google authorization code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, msg, err := c.app.GoogleAuth(cmd.Context(), code)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s <%s>\n", msg, p.Name, p.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code from Google")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := c.app.Logout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func (c *cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the session file is the optimistic login state
			if !c.app.Session().LoggedIn() {
				return client.ErrReauthRequired
			}
			d, err := c.app.Details(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\t%s\n", d.ID)
			fmt.Fprintf(tw, "Name\t%s\n", d.Name)
			fmt.Fprintf(tw, "Email\t%s\n", d.Email)
			fmt.Fprintf(tw, "Avatar\t%s\n", d.Avatar)
			fmt.Fprintf(tw, "Joined\t%s\n", d.CreatedAt.Format(time.DateOnly))
			return tw.Flush()
		},
	}
}

func (c *cli) activityCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "List recent sign-in activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := c.app.Activity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activity recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tEVENT\tIP")
			for _, ev := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ev.CreatedAt.Local().Format(time.DateTime), ev.Kind, ev.IP)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of events")
	return cmd
}

func (c *cli) createCmd() *cobra.Command {
	in := client.FormInput{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := c.app.CreateForm(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Form created: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&in.ThumbnailPath, "thumbnail", "", "thumbnail image (jpeg or png)")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get FORM_ID",
		Short: "Show one form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.app.GetForm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\t%s\n", v.ID.Hex())
			fmt.Fprintf(tw, "Name\t%s %s\n", v.FirstName, v.LastName)
			fmt.Fprintf(tw, "Thumbnail\t%s\n", v.Thumbnail)
			fmt.Fprintf(tw, "Owner\t%s <%s>\n", v.UserName, v.UserEmail)
			fmt.Fprintf(tw, "Created\t%s\n", v.CreatedAt.Local().Format(time.DateTime))
			return tw.Flush()
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			views, err := c.app.ListForms(cmd.Context())
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No forms yet.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFIRST\tLAST\tCREATED")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID.Hex(), v.FirstName, v.LastName, v.CreatedAt.Local().Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete FORM_ID",
		Short: "Delete one of your forms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.app.DeleteForm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

// report prints err the way the UI shows a toast and returns the exit code.
func report(w io.Writer, err error) int {
	if errors.Is(err, client.ErrReauthRequired) {
		fmt.Fprintln(w, "Session expired. Sign in again with: canvactl login --email EMAIL --password PASSWORD")
		return 3
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(w, "error: %s\n", apiErr.Message)
		return 1
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		fmt.Fprintf(w, "error: %s\n", appErr.Message)
		return 1
	}
	fmt.Fprintf(w, "error: %s\n", strings.TrimSpace(err.Error()))
	return 1
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
