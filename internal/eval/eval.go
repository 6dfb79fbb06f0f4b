// Package eval measures the code generators on HumanEval-style problems.
// Run solves each problem and executes its unit tests with Python; Samples
// produces completions in the HumanEval samples format.
package eval

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"fastcoding/internal/assist"
)

// Problem is one line of a problems file.
type Problem struct {
	TaskID     string `json:"task_id"`
	Prompt     string `json:"prompt"`
	Test       string `json:"test"`
	EntryPoint string `json:"entry_point"`
}

// Result is the outcome of one problem.
type Result struct {
	TaskID     string `json:"task_id"`
	Passed     bool   `json:"passed"`
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Error      string `json:"error,omitempty"`
}

// Report summarizes a run. Score is a percentage with two decimals.
type Report struct {
	Total   int      `json:"total"`
	Passed  int      `json:"passed"`
	Score   string   `json:"score"`
	Results []Result `json:"results"`
}

// Sample is one line of a samples file.
type Sample struct {
	TaskID     string `json:"task_id"`
	Completion string `json:"completion"`
}

// Solver writes a complete function for a problem prompt.
type Solver interface {
	Solve(ctx context.Context, language, problem string) (string, error)
}

// Completer continues code at the end of a prompt.
type Completer interface {
	CompleteText(ctx context.Context, language string, cc assist.CodeContext) (string, error)
}

// Options configure a run.
type Options struct {
	Python      string        // interpreter, python3 (python on Windows) when empty
	Limit       int           // problems to evaluate, 0 for all
	Concurrency int           // problems in flight, at least 1
	Timeout     time.Duration // per test execution
	WorkDir     string        // temp files, os.TempDir() when empty
}

// DefaultPython returns the interpreter name for the current platform.
func DefaultPython() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// LoadProblems reads a problems file. Only lines starting with "{" count.
func LoadProblems(r io.Reader) ([]Problem, error) {
	var problems []Problem
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var p Problem
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		problems = append(problems, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read problems: %w", err)
	}
	return problems, nil
}

// LoadProblemsFile reads a problems file from disk.
func LoadProblemsFile(path string) ([]Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open problems file: %w", err)
	}
	defer f.Close()
	return LoadProblems(f)
}

// Score formats passed/total as a percentage with two decimals.
func Score(passed, total int) string {
	if total == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(passed)/float64(total)*100)
}

// WriteReport writes r as indented JSON.
func WriteReport(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteSamples writes one JSON object per line.
func WriteSamples(w io.Writer, samples []Sample) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to write sample %s: %w", s.TaskID, err)
		}
	}
	return nil
}
