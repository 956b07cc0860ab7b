package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/contract-sentinel/constants"
	"github.com/joseph-ayodele/contract-sentinel/internal/batch"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/entity"
	"github.com/joseph-ayodele/contract-sentinel/internal/present"
	"github.com/joseph-ayodele/contract-sentinel/internal/watch"
)

const defaultWidth = 100

// newRootCmd returns the command tree and a func that releases whatever the
// commands opened. The release func is safe to call when nothing was opened.
func newRootCmd() (*cobra.Command, func()) {
	var a *app

	root := &cobra.Command{
		Use:           "sentinel",
		Short:         "Contract risk review and dispute letter drafting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a, err = newApp(cmd.Context(), cfg, cmd.ErrOrStderr(), cmd.ErrOrStderr())
			return err
		},
	}

	appFn := func() *app { return a }
	root.AddCommand(
		newReviewCmd(appFn),
		newAnalyzeCmd(appFn),
		newLetterCmd(appFn),
		newWatchCmd(appFn),
		newConfigCmd(appFn),
	)
	release := func() {
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Close(ctx)
	}
	return root, release
}

type reportFlags struct {
	xlsx  string
	width int
}

func (f *reportFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "also write the report as an XLSX workbook")
	cmd.Flags().IntVar(&f.width, "width", defaultWidth, "render width")
}

func newReviewCmd(appFn func() *app) *cobra.Command {
	var rf reportFlags
	cmd := &cobra.Command{
		Use:   "review <page>...",
		Short: "Recognize pages in the given order and review the merged text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			b := batch.NewManager(a.logger)
			for _, p := range args {
				if _, err := b.AddFile(p); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d pages, %.1f KB\n", b.Len(), float64(b.TotalBytes())/1024)

			done := make(chan error, 1)
			if _, err := a.processor.StartProcess(cmd.Context(), b, func(_ entity.AnalysisResult, err error) {
				done <- err
			}); err != nil {
				return err
			}
			if err := wait(cmd.Context(), done); err != nil {
				return err
			}
			return writeReport(cmd, a, rf)
		},
	}
	rf.bind(cmd)
	return cmd
}

func newAnalyzeCmd(appFn func() *app) *cobra.Command {
	var (
		rf   reportFlags
		file string
		text string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Review contract text directly, skipping recognition",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read text: %w", err)
				}
				text = string(b)
			}
			a.processor.SetText(text)

			done := make(chan error, 1)
			if _, err := a.processor.StartReanalyze(cmd.Context(), func(_ entity.AnalysisResult, err error) {
				done <- err
			}); err != nil {
				return err
			}
			if err := wait(cmd.Context(), done); err != nil {
				return err
			}
			return writeReport(cmd, a, rf)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read contract text from a file")
	cmd.Flags().StringVar(&text, "text", "", "contract text")
	cmd.MarkFlagsMutuallyExclusive("file", "text")
	rf.bind(cmd)
	return cmd
}

func newLetterCmd(appFn func() *app) *cobra.Command {
	var (
		disputeType string
		situation   string
		contextFile string
		copyOut     bool
		out         string
	)
	cmd := &cobra.Command{
		Use:   "letter",
		Short: "Draft a dispute letter",
		Long:  "Draft a dispute letter. Types: " + strings.Join(constants.DisputeTypesAsStrings(), ", "),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			if contextFile != "" {
				b, err := os.ReadFile(contextFile)
				if err != nil {
					return fmt.Errorf("read context: %w", err)
				}
				situation = string(b)
			}
			dt := constants.DisputeType(strings.TrimSpace(disputeType))
			if parsed, ok := constants.ParseDisputeType(disputeType); ok {
				dt = parsed
			}

			d, err := a.letters.Generate(cmd.Context(), entity.LetterRequest{DisputeType: dt, Context: situation})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Content)

			if copyOut {
				if err := a.letters.CopyToClipboard(); err != nil {
					return err
				}
			}
			if out != "" {
				if _, err := a.letters.ExportAsFile(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&disputeType, "type", string(constants.DepositRefund), "dispute type")
	cmd.Flags().StringVar(&situation, "context", "", "describe the situation")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "read the situation from a file")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the letter to the clipboard")
	cmd.Flags().StringVar(&out, "out", "", "write the letter to a file or directory (.html renders markdown)")
	cmd.MarkFlagsMutuallyExclusive("context", "context-file")
	return cmd
}

func newWatchCmd(appFn func() *app) *cobra.Command {
	var (
		rf      reportFlags
		quiet   time.Duration
		initial bool
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Review each set of pages a scanner drops into a folder",
		Long:  "Pages arriving in the folder are grouped until no new page shows up for --quiet, then reviewed in file name order.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			sets, errs, err := watch.Start(cmd.Context(), watch.Config{Dir: args[0], Quiet: quiet, InitialScan: initial}, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "watching", args[0])
			for {
				select {
				case set, ok := <-sets:
					if !ok {
						return nil
					}
					if err := reviewSet(cmd, a, set, rf); err != nil {
						// One bad set must not stop the watch.
						a.logger.Error("watch.review_failed", "pages", len(set), "error", err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					a.logger.Warn("watch.fs_error", "error", err)
				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().DurationVar(&quiet, "quiet", watch.DefaultQuiet, "idle time that closes a page set")
	cmd.Flags().BoolVar(&initial, "initial", false, "review pages already in the folder first")
	rf.bind(cmd)
	return cmd
}

func reviewSet(cmd *cobra.Command, a *app, paths []string, rf reportFlags) error {
	b := batch.NewManager(a.logger)
	for _, p := range paths {
		if _, err := b.AddFile(p); err != nil {
			return err
		}
	}
	if _, err := a.processor.Process(cmd.Context(), b); err != nil {
		return err
	}
	return writeReport(cmd, a, rf)
}

func newConfigCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := yaml.Marshal(appFn().cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeReport(cmd *cobra.Command, a *app, rf reportFlags) error {
	snap := a.processor.Analysis.Snapshot()
	view := present.Build(present.FromSnapshot(snap))
	fmt.Fprintln(cmd.OutOrStdout(), present.Render(view, rf.width))

	if rf.xlsx != "" && snap.Result != nil {
		if err := a.exporter.WriteReport(rf.xlsx, *snap.Result); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "report written to", rf.xlsx)
	}
	return nil
}
