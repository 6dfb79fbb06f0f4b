package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fastcoding/internal/assist"
	"fastcoding/internal/config"
	"fastcoding/internal/llm"
	"fastcoding/internal/logging"
)

// dispatch runs one request. A returned error means the request itself was
// malformed; feature failures become notifications and an empty result.
func (s *Server) dispatch(ctx context.Context, req Request) (interface{}, error) {
	switch req.Method {
	case MethodGenerateCode:
		var p DocumentParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		edit, err := s.assistant.GenerateCode(ctx, &p.Document, p.Position)
		if err != nil {
			s.report(req.Method, err)
			return EditResult{}, nil
		}
		return EditResult{Edit: &edit}, nil

	case MethodReviewCode:
		var p DocumentParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		res, err := s.assistant.ReviewCode(ctx, &p.Document, p.Selection)
		if err != nil {
			s.report(req.Method, err)
			return nil, nil
		}
		s.Notify(CommandBotReply, res.Markdown)
		return res, nil

	case MethodGenerateDocumentation:
		var p DocumentParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		edit, err := s.assistant.GenerateDocumentation(ctx, &p.Document, p.Selection)
		if err != nil {
			s.report(req.Method, err)
			return EditResult{}, nil
		}
		return EditResult{Edit: &edit}, nil

	case MethodInlineCompletion:
		var p DocumentParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return TextResult{Text: s.assistant.Complete(ctx, &p.Document, p.Position)}, nil

	case MethodChat, MethodSendMessage:
		var p MessageParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		if strings.TrimSpace(p.Text) == "" {
			return nil, errors.New("empty message")
		}
		s.Notify(CommandUserMessage, p.Text)
		reply := s.assistant.Chat(ctx, p.Text)
		s.Notify(CommandBotReply, reply)
		return TextResult{Text: reply}, nil

	case MethodSetAPIKey:
		var p APIKeyParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return s.setAPIKey(ctx, p)

	case MethodSetModel:
		var p ModelParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		if !config.IsValidModel(p.Model) {
			return nil, fmt.Errorf("unknown model %q (valid: %s)", p.Model, strings.Join(config.ValidModels, ", "))
		}
		if err := s.settings.Set(ctx, llm.SettingModel, p.Model); err != nil {
			s.report(req.Method, err)
			return nil, nil
		}
		s.Notify(CommandInfo, "Model set to "+p.Model)
		return ModelParams{Model: p.Model}, nil

	case MethodDidChange:
		var p ChangeParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		word, ok := s.detector.Observe(p.Text)
		if ok {
			logging.BridgeDebug("Trigger word detected: %q", word)
		}
		return TriggerResult{Triggered: ok, Word: word}, nil

	case MethodShutdown:
		s.stop()
		return struct{}{}, nil

	default:
		return nil, fmt.Errorf("unknown method %q", req.Method)
	}
}

func (s *Server) setAPIKey(ctx context.Context, p APIKeyParams) (interface{}, error) {
	provider := llm.Provider(p.Provider)
	if provider == "" {
		provider = llm.ProviderOpenAI
	}
	key, ok := llm.SettingKey(provider)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", p.Provider)
	}
	if strings.TrimSpace(p.Key) == "" {
		return nil, errors.New("empty API key")
	}
	if err := s.settings.Set(ctx, key, strings.TrimSpace(p.Key)); err != nil {
		s.report(MethodSetAPIKey, err)
		return nil, nil
	}
	s.Notify(CommandInfo, "API key saved")
	return struct{}{}, nil
}

// report turns a feature error into a warning or error notification.
func (s *Server) report(method string, err error) {
	if assist.IsWarning(err) {
		logging.Bridge("%s: %v", method, err)
		s.Notify(CommandWarning, err.Error())
		return
	}
	logging.BridgeError("%s failed: %v", method, err)
	s.Notify(CommandError, fmt.Sprintf("%s failed: %v", method, err))
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.New("missing params")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
