package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"fastcoding/internal/assist"
	"fastcoding/internal/chatui"
	"fastcoding/internal/editor"
)

var (
	atFlag     string
	linesFlag  string
	writeFlag  bool
	jsonOutput bool
	showDiff   bool
)

// generateCmd turns the comment at a location into code
var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate code from the comment at a location",
	Long: `Reads the unresolved comment nearest to --at and asks the model for the code
it describes. The code is printed, or inserted into the file with --write.

Locations are 1-based LINE or LINE:COL; without a column the cursor sits at
the end of the line.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

// reviewCmd reviews a selection
var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Review the selected lines and suggest improved code",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

// documentCmd documents a selection
var documentCmd = &cobra.Command{
	Use:   "document <file>",
	Short: "Generate documentation for the selected lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocument,
}

// completeCmd prints the inline completion at a location
var completeCmd = &cobra.Command{
	Use:   "complete <file>",
	Short: "Print the inline completion for a location",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

// chatCmd asks a question, or opens the chat panel on a terminal
var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Chat about code",
	Long: `With a message, prints one answer and exits. Without one, opens the
interactive chat panel on a terminal or reads the message from stdin.`,
	RunE: runChat,
}

func registerFeatureFlags() {
	generateCmd.Flags().StringVar(&atFlag, "at", "", "Cursor location LINE[:COL] (1-based)")
	generateCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "Insert the generated code into the file")
	_ = generateCmd.MarkFlagRequired("at")

	reviewCmd.Flags().StringVar(&linesFlag, "lines", "", "Selected lines A-B (1-based, inclusive); whole file when empty")
	reviewCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the review as JSON")
	reviewCmd.Flags().BoolVar(&showDiff, "diff", false, "Print the suggested code as a unified diff")

	documentCmd.Flags().StringVar(&linesFlag, "lines", "", "Selected lines A-B (1-based, inclusive); whole file when empty")
	documentCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "Insert the documentation into the file")

	completeCmd.Flags().StringVar(&atFlag, "at", "", "Cursor location LINE[:COL] (1-based)")
	_ = completeCmd.MarkFlagRequired("at")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	pos, err := parseLocation(doc, atFlag)
	if err != nil {
		return err
	}

	edit, err := a.assistant.GenerateCode(commandContext(cmd), doc, pos)
	if err != nil {
		return err
	}
	return emitEdit(doc, edit)
}

func runReview(cmd *cobra.Command, args []string) error {
	a, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	sel, err := parseLines(doc, linesFlag)
	if err != nil {
		return err
	}

	res, err := a.assistant.ReviewCode(commandContext(cmd), doc, sel)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if showDiff {
		if res.Diff == "" {
			fmt.Println("No code changes suggested.")
			return nil
		}
		fmt.Print(res.Diff)
		return nil
	}
	fmt.Print(renderMarkdown(res.Markdown, a.cfg.Assist.ChatStyle))
	return nil
}

func runDocument(cmd *cobra.Command, args []string) error {
	a, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	sel, err := parseLines(doc, linesFlag)
	if err != nil {
		return err
	}

	edit, err := a.assistant.GenerateDocumentation(commandContext(cmd), doc, sel)
	if err != nil {
		return err
	}
	return emitEdit(doc, edit)
}

func runComplete(cmd *cobra.Command, args []string) error {
	a, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	pos, err := parseLocation(doc, atFlag)
	if err != nil {
		return err
	}

	if text := a.assistant.Complete(commandContext(cmd), doc, pos); text != "" {
		fmt.Println(text)
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)

	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			ctx, cancel := signalContext(ctx)
			defer cancel()
			return chatui.Run(ctx, a.assistant, a.cfg.Assist.ChatStyle)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}
		message = strings.TrimSpace(string(data))
	}
	if message == "" {
		return fmt.Errorf("no message given")
	}

	fmt.Print(renderMarkdown(a.assistant.Chat(ctx, message), a.cfg.Assist.ChatStyle))
	return nil
}

// openDocument wires the app and reads path as an editor document.
func openDocument(path string) (*app, *editor.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	a, err := openApp()
	if err != nil {
		return nil, nil, err
	}
	return a, editor.NewDocument(path, string(data)), nil
}

// emitEdit prints the inserted text, or applies it to the file with --write.
func emitEdit(doc *editor.Document, edit editor.Edit) error {
	if !writeFlag {
		fmt.Println(edit.Text)
		return nil
	}

	info, err := os.Stat(doc.Path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(doc.Path, []byte(doc.Apply(edit)), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", doc.Path, err)
	}
	logger.Info("Edit applied",
		zap.String("file", doc.Path),
		zap.Int("line", edit.Position.Line+1),
		zap.Int("bytes", len(edit.Text)))
	fmt.Printf("Inserted at %s:%d\n", doc.Path, edit.Position.Line+1)
	return nil
}

// parseLocation reads a 1-based LINE or LINE:COL. A missing column puts the
// cursor at the end of the line.
func parseLocation(doc *editor.Document, s string) (editor.Position, error) {
	lineStr, colStr, hasCol := strings.Cut(strings.TrimSpace(s), ":")
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return editor.Position{}, fmt.Errorf("invalid location %q: want LINE or LINE:COL", s)
	}

	pos := editor.Position{Line: line - 1, Character: len([]rune(doc.LineAt(line - 1)))}
	if hasCol {
		col, err := strconv.Atoi(colStr)
		if err != nil || col < 1 {
			return editor.Position{}, fmt.Errorf("invalid column in %q", s)
		}
		pos.Character = col - 1
	}
	return doc.Validate(pos), nil
}

// parseLines reads a 1-based inclusive A-B line span. Empty selects the
// whole document.
func parseLines(doc *editor.Document, s string) (editor.Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return editor.Range{End: doc.End()}, nil
	}

	fromStr, toStr, found := strings.Cut(s, "-")
	if !found {
		toStr = fromStr
	}
	from, err1 := strconv.Atoi(strings.TrimSpace(fromStr))
	to, err2 := strconv.Atoi(strings.TrimSpace(toStr))
	if err1 != nil || err2 != nil || from < 1 || to < from {
		return editor.Range{}, fmt.Errorf("invalid line span %q: want A-B", s)
	}

	end := editor.Position{Line: to - 1, Character: len([]rune(doc.LineAt(to - 1)))}
	return editor.Range{
		Start: doc.Validate(editor.Position{Line: from - 1}),
		End:   doc.Validate(end),
	}, nil
}

// renderMarkdown renders for a terminal and passes markdown through otherwise.
func renderMarkdown(content, style string) string {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return content
	}

	opt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

var _ chatui.Chatter = (*assist.Assistant)(nil)
