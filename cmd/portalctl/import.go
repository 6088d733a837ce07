package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	importapp "github.com/logia/portal/internal/application/import"
	csvimport "github.com/logia/portal/internal/infrastructure/import"
	"github.com/logia/portal/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <sheet> <file.csv>",
	Short: "Load one workbook tab exported as CSV",
	Long: `Load one tab of the lodge workbook. The sheet is one of
DIRECTORIO, TESORERIA, ASISTENCIAS or LIBRO_CAJA.

A sheet is imported whole or not at all: if any row is rejected nothing is
written and every row error is listed.`,
	Example: `  # Members first, then their ledgers
  portalctl import DIRECTORIO directorio.csv
  portalctl import TESORERIA tesoreria.csv

  # Add new movements to ledgers that already exist
  portalctl import TESORERIA marzo.csv --append`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("append", false, "Append ledger rows to members that already have entries")
}

func runImport(cmd *cobra.Command, args []string) error {
	sheet := strings.ToUpper(args[0])
	appendOnly, _ := cmd.Flags().GetBool("append")

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	db := app.db.DB
	svc := importapp.NewService(
		persistence.NewGormMemberRepository(db),
		persistence.NewGormLedgerRepository(db),
		persistence.NewGormAttendanceRepository(db),
		persistence.NewGormCashBookRepository(db),
		persistence.NewUnitOfWork(db),
		decoder(),
		nil,
		app.log,
	)

	ctx := cmd.Context()
	var result *importapp.Result
	switch sheet {
	case csvimport.SheetDirectory:
		result, err = svc.ImportMembers(ctx, f)
	case csvimport.SheetTreasury:
		result, err = svc.ImportLedger(ctx, f, appendOnly)
	case csvimport.SheetAttendance:
		result, err = svc.ImportAttendance(ctx, f)
	case csvimport.SheetCashBook:
		result, err = svc.ImportCashBook(ctx, f)
	default:
		return fmt.Errorf("unknown sheet %q", args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d rows, %d imported, %d rejected\n",
		result.Sheet, result.Total, result.Imported, result.Rejected)
	if len(result.Errors) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tCOLUMN\tCODE\tMESSAGE\tVALUE")
	for _, e := range result.Errors {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.Row, e.Column, e.Code, e.Message, e.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if result.Truncated {
		fmt.Fprintf(out, "... %d errors in total\n", result.TotalErrors)
	}
	return fmt.Errorf("%s not imported", result.Sheet)
}
