package main

import (
	"fmt"
	"text/tabwriter"

	"stockhub/internal/repository"
	"stockhub/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// stockctl history <stock-id>
var historyCmd = &cobra.Command{
	Use:   "history <stock-id>",
	Short: "Print the ledger of a stock and check it reconstructs the quantity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid stock id %q", args[0])
		}
		_, db, err := boot()
		if err != nil {
			return err
		}
		stockRepo := repository.NewStockRepository(db)
		entries, err := service.NewStockService(stockRepo, nil).Ledger(cmd.Context(), id)
		if err != nil {
			return err
		}
		stock, err := stockRepo.FindByID(cmd.Context(), id)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tTYPE\tCHANGE\tQUANTITY\tAT\tNOTES")
		for _, e := range entries {
			notes := ""
			if e.Notes != nil {
				notes = *e.Notes
			}
			fmt.Fprintf(w, "%d\t%s\t%+d\t%d\t%s\t%s\n",
				e.Sequence, e.Type, e.Change, e.NewQuantity, e.CreatedAt.Format("2006-01-02 15:04"), notes)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if err := service.VerifyLedger(stock.Quantity, entries); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ledger consistent: quantity %d\n", stock.Quantity)
		return nil
	},
}
