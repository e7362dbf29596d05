package main

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/internal/utils"
	"github.com/jrsteele09/go-taskmaster/tasks"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := password(cmd, pass, "Password")
			if err != nil {
				return err
			}
			email = strings.TrimSpace(email)
			if err := tasks.ValidateCredentials(email, pw); err != nil {
				return err
			}
			if err := a.client.SignIn(cmd.Context(), email, pw); err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&pass, "password", "", "account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var email, pass, confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := password(cmd, pass, "Password")
			if err != nil {
				return err
			}
			if confirm == "" {
				confirm = pw
			}
			email = strings.TrimSpace(email)
			if err := tasks.ValidateRegistration(email, pw, confirm); err != nil {
				return err
			}
			master, err := a.client.SignUp(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", master.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&pass, "password", "", "account password (read from stdin when omitted)")
	cmd.Flags().StringVar(&confirm, "password-confirm", "", "repeat the password (defaults to --password)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.SignOut(cmd.Context()); err != nil {
				return err
			}
			successColor.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			master, err := a.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", master.Email, mutedColor.Sprintf("(id %d)", master.ID))
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage the signed in account",
	}

	profile.AddCommand(&cobra.Command{
		Use:   "set-email EMAIL",
		Short: "Change the account email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if err := tasks.ValidateEmail(email); err != nil {
				return err
			}
			current, err := a.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			patch := tasks.MasterPatch{Email: utils.ChangedPtr(current.Email, email)}
			if patch.IsEmpty() {
				noticeColor.Fprintln(cmd.OutOrStdout(), "No changes to save")
				return nil
			}
			updated, err := a.client.UpdateCurrentUser(cmd.Context(), patch)
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Email changed to %s\n", updated.Email)
			return nil
		},
	})
	return profile
}

func newResetPasswordCmd(a *app) *cobra.Command {
	reset := &cobra.Command{
		Use:   "reset-password EMAIL",
		Short: "Email a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if err := tasks.ValidateEmail(email); err != nil {
				return err
			}
			ack, err := a.client.RequestPasswordReset(cmd.Context(), email)
			if err != nil {
				return err
			}
			successColor.Fprintln(cmd.OutOrStdout(), ackMessage(ack, "If the account exists, a reset link is on its way"))
			return nil
		},
	}

	var uid, token, pass, confirm string
	confirmCmd := &cobra.Command{
		Use:   "confirm",
		Short: "Set a new password with the uid and token from the reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := password(cmd, pass, "New password")
			if err != nil {
				return err
			}
			if confirm == "" {
				confirm = pw
			}
			if err := tasks.ValidatePasswordReset(uid, token, pw, confirm); err != nil {
				return err
			}
			ack, err := a.client.ConfirmPasswordReset(cmd.Context(), api.PasswordResetConfirmRequest{
				UID:                uid,
				Token:              token,
				NewPassword:        pw,
				NewPasswordConfirm: confirm,
			})
			if err != nil {
				return err
			}
			successColor.Fprintln(cmd.OutOrStdout(), ackMessage(ack, "Password changed, you can now sign in"))
			return nil
		},
	}
	confirmCmd.Flags().StringVar(&uid, "uid", "", "uid from the reset link")
	confirmCmd.Flags().StringVar(&token, "token", "", "token from the reset link")
	confirmCmd.Flags().StringVar(&pass, "password", "", "new password (read from stdin when omitted)")
	confirmCmd.Flags().StringVar(&confirm, "password-confirm", "", "repeat the new password (defaults to --password)")
	_ = confirmCmd.MarkFlagRequired("uid")
	_ = confirmCmd.MarkFlagRequired("token")

	reset.AddCommand(confirmCmd)
	return reset
}

func ackMessage(ack api.Ack, fallback string) string {
	if ack.Detail != "" {
		return ack.Detail
	}
	return fallback
}
