package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/history"
)

var (
	historyFrom string
	historyTo   string
	historyKind string
	historyPage int
	historyCSV  string
	historyMock bool
	historyAll  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List access events, ten per page",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	f := historyCmd.Flags()
	f.StringVar(&historyFrom, "from", "", "first day, YYYY-MM-DD (default: 7 days ago)")
	f.StringVar(&historyTo, "to", "", "last day, YYYY-MM-DD (default: today)")
	f.StringVar(&historyKind, "type", types.TypeAll, "all, entry or exit")
	f.IntVar(&historyPage, "page", 1, "page to show")
	f.StringVar(&historyCSV, "csv", "", "export every matching event as CSV to this path; - for stdout")
	f.BoolVar(&historyMock, "mock", false, "use generated demo data instead of the server")
	f.BoolVar(&historyAll, "all", false, "staff only: include every user's events")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := time.Now()

	var src history.Source
	if historyMock {
		src = history.NewMockSource(uint64(now.Unix()/86400), now)
	} else {
		store, sess, err := loadSession()
		if err != nil {
			return err
		}
		if sess == nil {
			return errors.New("not signed in; run campusgate login first")
		}
		gs := history.GatewaySource{API: newGateway(store), UserCode: sess.User.Code}
		if historyAll && sess.User.Role.CanOperateStation() {
			gs.UserCode = ""
		}
		src = gs
	}

	f := history.DefaultFilter(now)
	if historyFrom != "" {
		f.Start = historyFrom
	}
	if historyTo != "" {
		f.End = historyTo
	}
	f.Kind = historyKind

	if historyCSV != "" {
		return exportHistory(cmd, src, f)
	}

	vm := history.NewViewModel(src, now)
	if err := vm.ApplyFilter(ctx, f); err != nil {
		return errors.New(describe(err))
	}
	if historyPage > 1 {
		moved, err := vm.ChangePage(ctx, historyPage-1)
		if err != nil {
			return errors.New(describe(err))
		}
		if !moved {
			return fmt.Errorf("page %d out of range (1-%d)", historyPage, vm.TotalPages())
		}
	}

	printHistory(cmd.OutOrStdout(), vm)
	return nil
}

func printHistory(w io.Writer, vm *history.ViewModel) {
	entries := vm.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No se encontraron registros para los filtros seleccionados.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FECHA\tTIPO\tLUGAR\tESTADO\tCÓDIGO")
		for _, e := range entries {
			kind := "Entrada"
			if e.Kind == types.KindExit {
				kind = "Salida"
			}
			status := "✓"
			if e.Status != "success" {
				status = "✗"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.At.Local().Format("02 Jan 2006 15:04"), kind, e.Location, status, e.UserCode)
		}
		tw.Flush()
	}
	fmt.Fprintf(w, "Pág. %d/%d (%d registros)\n", vm.CurrentPage(), vm.TotalPages(), vm.Total())
}

func exportHistory(cmd *cobra.Command, src history.Source, f history.Filter) error {
	w := cmd.OutOrStdout()
	if historyCSV != "-" {
		file, err := os.Create(historyCSV)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	n, err := history.ExportCSV(cmd.Context(), w, src, f)
	if err != nil {
		return errors.New(describe(err))
	}
	if historyCSV != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events to %s\n", n, historyCSV)
	}
	return nil
}
