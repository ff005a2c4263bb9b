package domain

import (
	"encoding/json"
	"fmt"
)

// Answers maps question keys to values: string, []string, bool or float64.
type Answers map[string]any

// Responses accumulates answers per main section over a session.
type Responses map[Section]Answers

func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	out := make(Answers, len(a))
	for k, v := range a {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

func (r Responses) Clone() Responses {
	out := make(Responses, len(r))
	for section, answers := range r {
		out[section] = answers.Clone()
	}
	return out
}

// Plain converts to the schema-flexible wire shape.
func (r Responses) Plain() map[string]map[string]any {
	out := make(map[string]map[string]any, len(r))
	for section, answers := range r {
		out[string(section)] = map[string]any(answers.Clone())
	}
	return out
}

func (r Responses) Encode() (string, error) {
	payload, err := json.Marshal(r.Plain())
	if err != nil {
		return "", fmt.Errorf("encode responses: %w", err)
	}
	return string(payload), nil
}

// DecodeResponses parses a mirrored responses payload. Multi-choice answers
// come back as []string; other JSON values keep their decoded form.
func DecodeResponses(raw string) (Responses, error) {
	plain := map[string]map[string]any{}
	if err := json.Unmarshal([]byte(raw), &plain); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	out := make(Responses, len(plain))
	for section, answers := range plain {
		if answers == nil {
			continue
		}
		normalized := make(Answers, len(answers))
		for k, v := range answers {
			normalized[k] = normalizeValue(v)
		}
		out[Section(section)] = normalized
	}
	return out, nil
}

func normalizeValue(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
