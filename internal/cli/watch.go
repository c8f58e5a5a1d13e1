package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/pfsc/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	CompileOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{CompileOptions: CompileOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "watch <pfs>...",
		Short: "Recompile whenever a source file changes",
		Long: `Compile like "compile", then watch the input root and compile again after
every burst of changes until interrupted. A failing build is reported and the
previous outputs are left in place.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output base path (default: the document id)")
	cmd.Flags().BoolVarP(&opts.Editable, "editable", "e", false, "mark the document as an editable draft")
	cmd.Flags().StringVar(&opts.History, "history", "", "build history database")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "quiet period before rebuilding")

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, ids []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter := opts.formatter(cmd)
	logger := opts.logger()

	p, err := openProject(opts.Input, logger)
	if err != nil {
		return formatter.Fail(err)
	}
	history, err := openHistory(ctx, opts.History)
	if err != nil {
		return formatter.Fail(err)
	}
	if history != nil {
		defer history.Close()
	}

	// Matches the document id compile would default to.
	base := opts.Output
	if base == "" {
		base = strings.Join(ids, "_")
	}
	rebuild := func(ctx context.Context, changed []string) error {
		out, err := p.build(ctx, ids, buildOptions{Editable: opts.Editable, History: history})
		if err != nil {
			code, _ := Classify(err)
			fmt.Fprintf(formatter.Writer, "Build failed [%s]: %v\n", code, err)
			return err
		}
		files, err := out.write(base)
		if err != nil {
			fmt.Fprintf(formatter.Writer, "Build failed [%s]: %v\n", ErrCodeWriteFailed, err)
			return err
		}
		if err := p.record(ctx, history, out.Document); err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "Built %s: %d requirement(s), wrote %d file(s)\n",
			out.Document.ID, out.Document.RequirementCount(), len(files))
		return nil
	}

	w, err := watch.New(p.root, watch.Config{
		Debounce:    opts.Debounce,
		IgnoreFiles: ignoredFiles(base, opts.History),
	}, logger)
	if err != nil {
		return formatter.Fail(commandError(ErrCodeGeneric, "start watcher", err))
	}
	// Watching starts before the first build so no edit is missed.
	if err := rebuild(ctx, nil); err != nil {
		logger.Warn("initial build failed", zap.Error(err))
	}
	formatter.VerboseLog("Watching %s", w.Root())
	return w.Run(ctx, rebuild)
}

// ignoredFiles lists the files a build writes itself, so writing them does
// not trigger another build.
func ignoredFiles(base, historyPath string) []string {
	jsonPath, bibPath, mdPath := outputPaths(base)
	files := []string{jsonPath, bibPath, mdPath}
	if historyPath != "" {
		files = append(files, historyPath, historyPath+"-wal", historyPath+"-shm", historyPath+"-journal")
	}
	return files
}
