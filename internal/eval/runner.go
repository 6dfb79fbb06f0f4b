package eval

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fastcoding/internal/assist"
	"fastcoding/internal/logging"
	"fastcoding/internal/postprocess"
)

// Runner evaluates problems.
type Runner struct {
	solver    Solver
	completer Completer
	opts      Options
}

// NewRunner creates a runner. Either dependency may be nil when the
// corresponding operation is not used.
func NewRunner(solver Solver, completer Completer, opts Options) *Runner {
	if opts.Python == "" {
		opts.Python = DefaultPython()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	return &Runner{solver: solver, completer: completer, opts: opts}
}

// Run solves the first Limit problems and executes their tests.
// Results keep the problem order whatever the concurrency.
func (r *Runner) Run(ctx context.Context, problems []Problem) (*Report, error) {
	if r.solver == nil {
		return nil, fmt.Errorf("eval: no solver configured")
	}
	if r.opts.Limit > 0 && len(problems) > r.opts.Limit {
		problems = problems[:r.opts.Limit]
	}

	results := make([]Result, len(problems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, p := range problems {
		g.Go(func() error {
			results[i] = r.runOne(gctx, p)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Total: len(results), Results: results}
	for _, res := range results {
		if res.Passed {
			report.Passed++
		}
	}
	report.Score = Score(report.Passed, report.Total)
	logging.Eval("Evaluation finished: %d/%d passed (%s%%)", report.Passed, report.Total, report.Score)
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, p Problem) Result {
	res := Result{TaskID: p.TaskID, Prompt: p.Prompt}

	completion, err := r.solver.Solve(ctx, "python", p.Prompt)
	if err != nil {
		logging.EvalWarn("%s: generation failed: %v", p.TaskID, err)
		res.Error = err.Error()
		return res
	}
	res.Completion = postprocess.StripCodeBlock(completion)

	program := strings.TrimSpace(res.Completion) + "\n\n" + p.Test + "\n\ncheck(" + p.EntryPoint + ")"
	stderr, err := r.execute(ctx, program)
	if err != nil {
		res.Error = stderr
		if res.Error == "" {
			res.Error = err.Error()
		}
		logging.EvalDebug("%s FAILED: %s", p.TaskID, res.Error)
		return res
	}

	res.Passed = true
	logging.EvalDebug("%s PASSED", p.TaskID)
	return res
}

// execute runs program with the interpreter and returns its stderr.
func (r *Runner) execute(ctx context.Context, program string) (string, error) {
	path := filepath.Join(r.opts.WorkDir, "fastcoding_eval_"+uuid.NewString()+".py")
	if err := os.WriteFile(path, []byte(program), 0600); err != nil {
		return "", fmt.Errorf("failed to write test file: %w", err)
	}
	defer os.Remove(path)

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.opts.Python, path)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return strings.TrimSpace(stderr.String()), err
}

// Samples completes every problem through the inline-completion path.
// Completion failures yield an empty completion, as in the editor.
func (r *Runner) Samples(ctx context.Context, problems []Problem) ([]Sample, error) {
	if r.completer == nil {
		return nil, fmt.Errorf("eval: no completer configured")
	}

	samples := make([]Sample, len(problems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, p := range problems {
		g.Go(func() error {
			completion, err := r.completer.CompleteText(gctx, "python", assist.CodeContext{Before: p.Prompt})
			if err != nil {
				logging.EvalWarn("%s: completion failed: %v", p.TaskID, err)
				completion = ""
			}
			samples[i] = Sample{TaskID: p.TaskID, Completion: postprocess.StripRepeatedSignature(p.Prompt, completion)}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Eval("Generated %d samples", len(samples))
	return samples, nil
}
