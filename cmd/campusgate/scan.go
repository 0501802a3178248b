package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/grpcapi"
	"github.com/BrandonDHaskell/campusgate/internal/scanner"
)

var (
	scanKind  string
	scanInput string
	scanOnce  bool
	scanGRPC  string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a scan station reading codes from a keyboard-wedge scanner",
	Long: `Reads one code per line from the scanner (stdin by default), looks the
user up and records an entry or exit. After each result the station
re-arms; codes read while a result is pending are dropped.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	f := scanCmd.Flags()
	f.StringVar(&scanKind, "kind", string(types.KindEntry), "entry or exit")
	f.StringVar(&scanInput, "input", "-", "scanner device or file; - for stdin")
	f.BoolVar(&scanOnce, "once", false, "exit after the first result")
	f.StringVar(&scanGRPC, "grpc", "", "talk to the gRPC station service at this address instead of HTTP")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	kind, ok := types.ParseEventKind(scanKind)
	if !ok {
		return fmt.Errorf("--kind must be entry or exit, got %q", scanKind)
	}

	store, sess, err := loadSession()
	if err != nil {
		return err
	}
	if sess == nil {
		log.Warn().Msg("not signed in; the server may reject station calls")
	} else if !sess.User.Role.CanOperateStation() {
		log.Warn().Str("role", string(sess.User.Role)).Msg("signed-in user is not staff; the server may reject station calls")
	}

	var gw scanner.Gateway = newGateway(store)
	if scanGRPC != "" {
		conn, err := grpc.NewClient(scanGRPC, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		defer conn.Close()
		gw = grpcapi.NewClient(conn, store, cfg.Client.StationID)
	}

	dec, err := scanner.OpenLineDecoder(scanInput)
	if err != nil {
		return decoderError(out, err)
	}
	defer dec.Close()

	outcomes := make(chan scanner.Outcome, 4)
	coord := scanner.NewCoordinator(scanner.Config{
		Decoder: dec,
		Gateway: gw,
		Kind:    kind,
		Logger:  log,
		OnProgress: func(p scanner.Progress, code string) {
			if p == scanner.ProgressDetected {
				fmt.Fprintf(out, "Código %s detectado...\n", code)
			}
		},
		OnOutcome: func(o scanner.Outcome) { outcomes <- o },
	})

	if err := coord.Start(ctx); err != nil {
		return decoderError(out, err)
	}
	fmt.Fprintf(out, "Scanning for %s. Ctrl-C to stop.\n", kind)

	for {
		select {
		case <-ctx.Done():
			coord.Stop()
			coord.Wait()
			return nil

		case o := <-outcomes:
			if o.Status == scanner.StatusDecoderFailed {
				coord.Wait()
				if errors.Is(o.Err, scanner.ErrInputClosed) {
					return nil
				}
				return decoderError(out, o.Err)
			}
			printOutcome(out, o)
			if scanOnce {
				return nil
			}
			if err := coord.Start(ctx); err != nil {
				if errors.Is(err, scanner.ErrInputClosed) {
					return nil
				}
				return decoderError(out, err)
			}
		}
	}
}

func printOutcome(w io.Writer, o scanner.Outcome) {
	switch o.Status {
	case scanner.StatusRecorded:
		fmt.Fprintf(w, "OK   %s\n", o.Message)
	default:
		fmt.Fprintf(w, "FAIL %s\n", o.Message)
	}
}

func decoderError(w io.Writer, err error) error {
	var du *scanner.DecoderUnavailable
	if errors.As(err, &du) {
		fmt.Fprintln(w, du.Hint())
	}
	return err
}
