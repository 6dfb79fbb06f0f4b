package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fastcoding/internal/eval"
	"fastcoding/internal/logging"
)

var (
	problemsPath string
	outPath      string
	evalLimit    int
	evalWorkers  int
	evalPython   string
)

// evalCmd groups the benchmark commands
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Benchmark code generation on HumanEval-style problems",
	Long: `Problems are JSON lines with task_id, prompt, test and entry_point.

  run     - solve each problem, execute its tests and write a pass report
  samples - complete each prompt inline and write task_id/completion lines`,
}

var evalRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve problems and run their tests",
	Args:  cobra.NoArgs,
	RunE:  runEval,
}

var evalSamplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Write inline completions for every problem",
	Args:  cobra.NoArgs,
	RunE:  runEvalSamples,
}

func registerEvalFlags() {
	evalCmd.PersistentFlags().StringVar(&problemsPath, "problems", "", "Problems file (JSON lines)")
	evalCmd.PersistentFlags().IntVar(&evalWorkers, "concurrency", 0, "Parallel problems (default from config)")
	_ = evalCmd.MarkPersistentFlagRequired("problems")

	evalRunCmd.Flags().StringVarP(&outPath, "out", "o", "results.json", "Report file")
	evalRunCmd.Flags().IntVar(&evalLimit, "limit", -1, "Problems to run, 0 for all (default from config)")
	evalRunCmd.Flags().StringVar(&evalPython, "python", "", "Python interpreter (default from config)")

	evalSamplesCmd.Flags().StringVarP(&outPath, "out", "o", "samples.jsonl", "Samples file")

	evalCmd.AddCommand(evalRunCmd, evalSamplesCmd)
}

// evalOptions merges flags over the config.
func evalOptions(a *app) eval.Options {
	opts := eval.Options{
		Python:      a.cfg.Eval.Python,
		Limit:       a.cfg.Eval.Limit,
		Concurrency: a.cfg.Eval.Concurrency,
		Timeout:     a.cfg.GetEvalTimeout(),
	}
	if evalPython != "" {
		opts.Python = evalPython
	}
	if evalLimit >= 0 {
		opts.Limit = evalLimit
	}
	if evalWorkers > 0 {
		opts.Concurrency = evalWorkers
	}
	return opts
}

func runEval(cmd *cobra.Command, args []string) error {
	problems, err := eval.LoadProblemsFile(problemsPath)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(commandContext(cmd))
	defer cancel()

	opts := evalOptions(a)
	logger.Info("Evaluation started",
		zap.Int("problems", len(problems)),
		zap.Int("limit", opts.Limit),
		zap.Int("concurrency", opts.Concurrency))
	timer := logging.StartTimer(logging.CategoryEval, "eval run")

	report, err := eval.NewRunner(a.assistant, nil, opts).Run(ctx, problems)
	timer.Stop()
	if err != nil {
		return err
	}
	if err := eval.WriteReport(outPath, report); err != nil {
		return err
	}

	for _, res := range report.Results {
		status := "PASSED"
		if !res.Passed {
			status = "FAILED"
		}
		fmt.Printf("%-20s %s\n", res.TaskID, status)
	}
	fmt.Printf("\nPassed %d/%d (%s%%). Report written to %s\n", report.Passed, report.Total, report.Score, outPath)
	return nil
}

func runEvalSamples(cmd *cobra.Command, args []string) error {
	problems, err := eval.LoadProblemsFile(problemsPath)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(commandContext(cmd))
	defer cancel()

	samples, err := eval.NewRunner(nil, a.assistant, evalOptions(a)).Samples(ctx, problems)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := eval.WriteSamples(w, samples); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("Wrote %d samples to %s\n", len(samples), outPath)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
