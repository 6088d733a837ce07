package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	apptreasury "github.com/logia/portal/internal/application/treasury"
	"github.com/logia/portal/internal/domain/membership"
	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
)

var statementCmd = &cobra.Command{
	Use:     "statement <member-number>",
	Short:   "Print a member's reconciled statement",
	Example: `  portalctl statement 42`,
	Args:    cobra.ExactArgs(1),
	RunE:    runStatement,
}

func init() {
	rootCmd.AddCommand(statementCmd)
}

func runStatement(cmd *cobra.Command, args []string) error {
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid member number %q", args[0])
	}

	db := app.db.DB
	members := persistence.NewGormMemberRepository(db)
	member, err := members.FindByNumber(cmd.Context(), number)
	if err != nil {
		return err
	}

	amount, err := valueobject.NewMoney(app.cfg.Treasury.DuesAmount, app.currency)
	if err != nil {
		return err
	}
	svc := apptreasury.NewService(
		persistence.NewGormLedgerRepository(db),
		members,
		persistence.NewGormCashBookRepository(db),
		persistence.NewUnitOfWork(db),
		apptreasury.Config{Currency: app.currency, DuesAmount: amount},
		nil,
		app.log,
	)

	// the operator reads statements with the treasurer's grants
	viewer := membership.Viewer{Role: membership.RoleTreasurer, Degree: membership.DegreeMaster}
	s, err := svc.GetStatement(cmd.Context(), viewer, member.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d  %s\n\n", s.MemberNumber, s.MemberName)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "DATE\tCONCEPT\tAMOUNT\tCOVERED\tREMAINING\tSTATUS\t")
	for _, l := range s.Lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			l.Date.Format("2006-01-02"), l.Label,
			l.Amount.StringFixed(), l.AmountCovered.StringFixed(), l.AmountRemaining.StringFixed(),
			l.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nCharged %s  Paid %s  Balance %s\n",
		s.TotalCharged.StringFixed(), s.TotalPaid.StringFixed(), s.NetBalance.StringFixed())
	if s.InCredit {
		fmt.Fprintf(out, "In credit: %s unallocated\n", s.UnallocatedCredit.StringFixed())
	} else if s.ApproxDuesOwed > 0 {
		fmt.Fprintf(out, "About %d months of dues owed\n", s.ApproxDuesOwed)
	}
	if s.OutOfOrderDates {
		fmt.Fprintln(out, "Warning: ledger entries were recorded out of date order")
	}
	return nil
}
