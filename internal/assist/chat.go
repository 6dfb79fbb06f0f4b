package assist

import (
	"context"
	"strings"

	"fastcoding/internal/logging"
	"fastcoding/internal/prompt"
)

// Chat answers a free-form message. It never fails: errors and empty
// replies become fixed texts.
func (a *Assistant) Chat(ctx context.Context, message string) string {
	logging.AssistDebug("chat: message_len=%d", len(message))

	reply, err := a.call(ctx, prompt.KindChat, prompt.Data{Message: message}, nil)
	if err != nil {
		logging.AssistError("chat failed: %v", err)
		return ChatErrorReply
	}
	if strings.TrimSpace(reply) == "" {
		return ChatEmptyReply
	}
	return reply
}

// Solve completes a function definition for the evaluation harness.
func (a *Assistant) Solve(ctx context.Context, language, problem string) (string, error) {
	if language == "" {
		language = "python"
	}
	return a.call(ctx, prompt.KindSolve, prompt.Data{Language: language, Prompt: problem}, nil)
}
