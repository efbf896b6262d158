package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-bank-client/bank"
	"github.com/spf13/cobra"
)

func (a *app) authCommands() []*cobra.Command {
	login := &cobra.Command{
		Use:   "login <email>",
		Short: "Check the password and have an OTP emailed",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				password, err := a.prompt("Password: ")
				if err != nil {
					return err
				}
				// Sign-in runs on the login location, so a rejection never redirects.
				a.location.Set(a.cfg.GetLoginPath())
				msg, err := a.client.Login(ctx, args[0], password)
				if err != nil {
					return err
				}
				a.println(msg)
				return nil
			})
		},
	}

	otp := &cobra.Command{
		Use:   "otp <code>",
		Short: "Complete sign-in with the emailed OTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				a.location.Set(a.cfg.GetLoginPath())
				user, err := a.client.VerifyOTP(ctx, args[0])
				if err != nil {
					return err
				}
				a.println(fmt.Sprintf("Signed in as %s %s (%s)", user.FirstName, user.LastName, user.Email))
				return nil
			})
		},
	}

	me := &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				// A lapsed session is reported below rather than as a redirect.
				a.location.Set(a.cfg.GetLoginPath())
				user, err := a.client.CheckAuth(ctx)
				if err != nil {
					return err
				}
				if user == nil {
					a.println("Not signed in")
					return nil
				}
				return a.printJSON(user)
			})
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				if err := a.client.Logout(ctx); err != nil {
					return err
				}
				a.println("Signed out")
				return nil
			})
		},
	}

	var reg bank.Registration
	register := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account; an activation email follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				reg.Email = args[0]
				var err error
				if reg.Password, err = a.prompt("Password: "); err != nil {
					return err
				}
				if reg.RePassword, err = a.prompt("Repeat password: "); err != nil {
					return err
				}
				if reg.SecurityAnswer, err = a.prompt(reg.SecurityQuestion + " "); err != nil {
					return err
				}
				user, err := a.client.Register(ctx, reg)
				if err != nil {
					return err
				}
				a.println(fmt.Sprintf("Registered %s. Check your email to activate the account.", user.Email))
				return nil
			})
		},
	}
	register.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	register.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	register.Flags().StringVar(&reg.IDNo, "id-no", "", "national ID number")
	register.Flags().StringVar(&reg.SecurityQuestion, "security-question", "What is your favourite colour?", "question asked before transfers")
	for _, name := range []string{"first-name", "last-name", "id-no"} {
		_ = register.MarkFlagRequired(name)
	}

	activate := &cobra.Command{
		Use:   "activate <uid> <token>",
		Short: "Activate a registered account",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				if err := a.client.Activate(ctx, args[0], args[1]); err != nil {
					return err
				}
				a.println("Account activated. You can now sign in.")
				return nil
			})
		},
	}

	return []*cobra.Command{login, otp, me, logout, register, activate}
}
