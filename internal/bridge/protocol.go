// Package bridge serves the editor features to a host plugin over stdio.
// Each line on the input is one JSON request; each line on the output is
// either a response or a notification.
package bridge

import (
	"encoding/json"

	"fastcoding/internal/editor"
)

// Methods accepted on the bridge.
const (
	MethodGenerateCode          = "generateCode"
	MethodReviewCode            = "reviewCode"
	MethodGenerateDocumentation = "generateDocumentation"
	MethodInlineCompletion      = "inlineCompletion"
	MethodChat                  = "chat"
	MethodSendMessage           = "sendMessage" // alias of chat
	MethodSetAPIKey             = "setApiKey"
	MethodSetModel              = "setModel"
	MethodDidChange             = "didChange"
	MethodShutdown              = "shutdown"

	MethodNotify = "notify"
)

// Notification commands, shared with the chat panel.
const (
	CommandUserMessage = "userMessage"
	CommandBotReply    = "botReply"
	CommandWarning     = "warning"
	CommandError       = "error"
	CommandInfo        = "info"
)

// Request is one host request. ID is echoed back verbatim.
type Request struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers a request.
type Response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result interface{}     `json:"result"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// ResponseError reports a malformed or unknown request.
type ResponseError struct {
	Message string `json:"message"`
}

// Notification is pushed to the host without a request id.
type Notification struct {
	Method string             `json:"method"`
	Params NotificationParams `json:"params"`
}

// NotificationParams carries a panel command and its text.
type NotificationParams struct {
	Command string `json:"command"`
	Text    string `json:"text"`
}

// DocumentParams locate the cursor or selection in a document snapshot.
type DocumentParams struct {
	Document  editor.Document `json:"document"`
	Position  editor.Position `json:"position"`
	Selection editor.Range    `json:"selection"`
}

// MessageParams carry a chat message.
type MessageParams struct {
	Text string `json:"text"`
}

// APIKeyParams carry a key for a provider. Provider defaults to openai.
type APIKeyParams struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
}

// ModelParams carry a model choice.
type ModelParams struct {
	Model string `json:"model"`
}

// ChangeParams carry text typed since the last change.
type ChangeParams struct {
	Text string `json:"text"`
}

// EditResult is returned by the features that modify the document.
type EditResult struct {
	Edit *editor.Edit `json:"edit"`
}

// TextResult is returned by completion and chat.
type TextResult struct {
	Text string `json:"text"`
}

// TriggerResult tells the host whether to request an inline completion.
type TriggerResult struct {
	Triggered bool   `json:"triggered"`
	Word      string `json:"word,omitempty"`
}
