package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/go-bank-client/bank"
	"github.com/jrsteele09/go-bank-client/internal/utils"
	"github.com/spf13/cobra"
)

func (a *app) bankingCommands() []*cobra.Command {
	return []*cobra.Command{
		a.profileCommand(),
		a.kinCommand(),
		a.depositCommand(),
		a.withdrawCommand(),
		a.transferCommand(),
		a.cardsCommand(),
		a.cardCreateCommand(),
		a.cardTopUpCommand(),
		a.cardDeleteCommand(),
		a.transactionsCommand(),
		a.statementCommand(),
		a.pendingCommand(),
		a.verifyCommand(),
		a.dashboardCommand(),
	}
}

func readDocument(path string) (*bank.Document, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &bank.Document{Name: path, Content: content}, nil
}

func (a *app) profileCommand() *cobra.Command {
	var set []string
	var photo, idPhoto, signature string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the profile; --set key=value, or upload KYC documents",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				if photo != "" || idPhoto != "" || signature != "" {
					var docs bank.Documents
					var err error
					if docs.Photo, err = readDocument(photo); err != nil {
						return err
					}
					if docs.IDPhoto, err = readDocument(idPhoto); err != nil {
						return err
					}
					if docs.SignaturePhoto, err = readDocument(signature); err != nil {
						return err
					}
					msg, err := a.client.UploadDocuments(ctx, docs)
					if err != nil {
						return err
					}
					a.println(msg)
					return nil
				}

				if len(set) > 0 {
					fields := map[string]any{}
					for _, kv := range set {
						k, v, ok := strings.Cut(kv, "=")
						if !ok {
							return fmt.Errorf("--set %q: expected key=value", kv)
						}
						fields[k] = v
					}
					profile, err := a.client.UpdateProfile(ctx, fields)
					if err != nil {
						return err
					}
					return a.printJSON(profile.Raw)
				}

				profile, err := a.client.Profile(ctx)
				if err != nil {
					return err
				}
				return a.printJSON(profile.Raw)
			})
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "profile field to change, as key=value")
	cmd.Flags().StringVar(&photo, "photo", "", "passport photo to upload")
	cmd.Flags().StringVar(&idPhoto, "id-photo", "", "ID document photo to upload")
	cmd.Flags().StringVar(&signature, "signature", "", "signature photo to upload")
	return cmd
}

func (a *app) kinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kin",
		Short: "List next of kin",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				kin, err := a.client.ListNextOfKin(ctx)
				if err != nil {
					return err
				}
				return a.printJSON(kin)
			})
		},
	}

	var kin bank.NextOfKin
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a next of kin",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				created, err := a.client.CreateNextOfKin(ctx, kin)
				if err != nil {
					return err
				}
				return a.printJSON(created)
			})
		},
	}
	add.Flags().StringVar(&kin.Title, "title", "", "title")
	add.Flags().StringVar(&kin.FirstName, "first-name", "", "first name")
	add.Flags().StringVar(&kin.LastName, "last-name", "", "last name")
	add.Flags().StringVar(&kin.Relationship, "relationship", "", "relationship to you")
	add.Flags().StringVar(&kin.PhoneNumber, "phone", "", "phone number")
	add.Flags().StringVar(&kin.EmailAddress, "email", "", "email address")
	add.Flags().BoolVar(&kin.IsPrimary, "primary", false, "make this the primary next of kin")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a next of kin",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				if err := a.client.DeleteNextOfKin(ctx, bank.ID(args[0])); err != nil {
					return err
				}
				a.println("Next of kin removed")
				return nil
			})
		},
	}
	cmd.AddCommand(add, remove)
	return cmd
}

func (a *app) depositCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount> [account-number]",
		Short: "Deposit into an account (tellers only)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				account := ""
				if len(args) == 2 {
					account = args[1]
				}
				msg, err := a.client.Deposit(ctx, bank.Amount(args[0]), account)
				if err != nil {
					return err
				}
				a.println(msg)
				return nil
			})
		},
	}
}

func (a *app) withdrawCommand() *cobra.Command {
	var pin string
	cmd := &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Withdraw from your primary account",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				msg, err := a.client.InitiateWithdrawal(ctx, bank.Amount(args[0]), pin)
				if err != nil {
					return err
				}
				a.println(msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pin, "pin", "", "4 digit PIN")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}

// transferCommand walks the whole transfer wizard in one invocation, prompting for the
// security answer and the emailed OTP.
func (a *app) transferCommand() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "transfer <recipient-account> <amount>",
		Short: "Transfer money to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				t := a.client.NewTransfer()
				msg, err := t.Initiate(ctx, args[0], bank.Amount(args[1]), description)
				if err != nil {
					return err
				}
				a.println(msg)

				answer, err := a.prompt("Security answer: ")
				if err != nil {
					return err
				}
				if msg, err = t.AnswerSecurityQuestion(ctx, answer); err != nil {
					return err
				}
				a.println(msg)

				otp, err := a.prompt("OTP: ")
				if err != nil {
					return err
				}
				if msg, err = t.ConfirmOTP(ctx, otp); err != nil {
					return err
				}
				a.println(msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "transfer reference")
	return cmd
}

func (a *app) cardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List virtual cards",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				cards, err := a.client.ListCards(ctx)
				if err != nil {
					return err
				}
				return a.printJSON(cards)
			})
		},
	}
}

func (a *app) cardCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "card-create <account-number>",
		Short: "Create a virtual card linked to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				card, err := a.client.CreateCard(ctx, args[0])
				if err != nil {
					return err
				}
				return a.printJSON(card)
			})
		},
	}
}

func (a *app) cardTopUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "card-topup <card-id> <amount>",
		Short: "Move money from the linked account onto a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				msg, err := a.client.TopUpCard(ctx, bank.ID(args[0]), bank.Amount(args[1]))
				if err != nil {
					return err
				}
				a.println(msg)
				return nil
			})
		},
	}
}

func (a *app) cardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "card-delete <card-id>",
		Short: "Delete a virtual card",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				if err := a.client.DeleteCard(ctx, bank.ID(args[0])); err != nil {
					return err
				}
				a.println("Card deleted")
				return nil
			})
		},
	}
}

func filterFlags(cmd *cobra.Command, f *bank.TransactionFilter) {
	cmd.Flags().StringVar(&f.StartDate, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.EndDate, "end", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.AccountNumber, "account", "", "limit to one account")
}

func (a *app) transactionsCommand() *cobra.Command {
	var filter bank.TransactionFilter
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				txs, err := a.client.Transactions(ctx, filter)
				if err != nil {
					return err
				}
				return a.printJSON(txs)
			})
		},
	}
	filterFlags(cmd, &filter)
	return cmd
}

func (a *app) statementCommand() *cobra.Command {
	var filter bank.TransactionFilter
	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Have a PDF statement emailed",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				msg, err := a.client.RequestStatement(ctx, filter)
				if err != nil {
					return err
				}
				a.println(msg)
				return nil
			})
		},
	}
	filterFlags(cmd, &filter)
	return cmd
}

func (a *app) pendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List accounts awaiting KYC review (account executives only)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				pending, err := a.client.PendingVerification(ctx)
				if err != nil {
					return err
				}
				return a.printJSON(pending)
			})
		},
	}
}

func (a *app) verifyCommand() *cobra.Command {
	var reject bool
	cmd := &cobra.Command{
		Use:   "verify <account-id>",
		Short: "Approve or reject an account's KYC documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context) error {
				msg, err := a.client.VerifyAccount(ctx, bank.ID(args[0]), !reject)
				if err != nil {
					return err
				}
				a.println(msg)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reject, "reject", false, "reject instead of approve")
	return cmd
}

func (a *app) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Profile, cards and transactions in one view",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run(func(ctx context.Context) error {
				d, err := a.client.Dashboard(ctx)
				if err != nil {
					return err
				}
				return a.printJSON(map[string]any{
					"profile":      utils.Value(d.Profile).Raw,
					"cards":        d.Cards,
					"transactions": d.Transactions,
				})
			})
		},
	}
}
