package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"museum-backend/logger"
	"museum-backend/resolver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errCheckinFailed makes scan and manual exit non-zero. The result itself
// has already been printed.
var errCheckinFailed = errors.New("check-in failed")

// reportError prints command errors that no result line has explained,
// such as bad arguments or a busy session.
func reportError(w io.Writer, err error) {
	if err == nil || errors.Is(err, errCheckinFailed) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

type options struct {
	apiURL  string
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var log *zap.Logger

	root := &cobra.Command{
		Use:           "scanner",
		Short:         "Museum check-in scanner",
		Long:          `Resolves scanned QR payloads and backup codes against the museum check-in API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			var err error
			log, err = logger.New(level, false)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api", "http://localhost:8080", "Base URL of the check-in API")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP timeout per check-in")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	session := func() *resolver.Session {
		r := resolver.New(opts.apiURL,
			resolver.WithHTTPClient(&http.Client{Timeout: opts.timeout}),
			resolver.WithLogger(log),
		)
		return resolver.NewSession(r)
	}

	root.AddCommand(scanCmd(session))
	root.AddCommand(manualCmd(session))
	root.AddCommand(watchCmd(session))
	return root
}

func scanCmd(session func() *resolver.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <payload>",
		Short: "Check in one scanned QR payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := session()
			if err := s.StartScan(); err != nil {
				return err
			}
			res, err := s.Decode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			if res.Outcome == resolver.OutcomeError {
				return errCheckinFailed
			}
			return nil
		},
	}
}

func manualCmd(session func() *resolver.Session) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "manual <code>",
		Short: "Check in by backup code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := session().SubmitManual(cmd.Context(), args[0], resolver.Category(category))
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			if res.Outcome == resolver.OutcomeError {
				return errCheckinFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(resolver.CategoryVisitor), "Code category: visitor or event")
	return cmd
}

func watchCmd(session func() *resolver.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Check in payloads read line by line from stdin",
		Long:  `Reads one payload per line, as sent by a keyboard-emulating QR reader, until EOF.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd, session(), cmd.InOrStdin())
		},
	}
}

func watch(cmd *cobra.Command, s *resolver.Session, in io.Reader) error {
	out := cmd.OutOrStdout()
	lines := bufio.NewScanner(in)
	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}
		if err := s.StartScan(); err != nil {
			return err
		}
		res, err := s.Decode(cmd.Context(), line)
		if err != nil {
			return err
		}
		printResult(out, res)

		if err := cmd.Context().Err(); err != nil {
			return nil
		}
	}
	return lines.Err()
}

func printResult(w io.Writer, res resolver.Result) {
	switch res.Outcome {
	case resolver.OutcomeSuccess:
		fmt.Fprintf(w, "SUCCESS  %s\n", describe(res))
	case resolver.OutcomeAlreadyCheckedIn:
		fmt.Fprintf(w, "ALREADY  %s\n", describe(res))
	case resolver.OutcomeIncomplete:
		fmt.Fprintf(w, "INCOMPLETE  missing: %s", strings.Join(res.MissingFields, ", "))
		if res.Email != "" {
			fmt.Fprintf(w, "  (form link goes to %s)", res.Email)
		}
		fmt.Fprintln(w)
	default:
		fmt.Fprintf(w, "ERROR  %s\n", res.Message)
	}
}

func describe(res resolver.Result) string {
	if res.Visitor == nil {
		return "(no visitor details)"
	}
	v := res.Visitor
	name := v.FullName()
	if name == "" {
		name = "(no name)"
	}
	if v.VisitorType != "" {
		return fmt.Sprintf("%s [%s, %s]", name, v.VisitorType, v.ID)
	}
	return fmt.Sprintf("%s [%s]", name, v.ID)
}
