package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// ErrUnparseable is returned when a model reply holds no usable probabilities
var ErrUnparseable = errors.New("unparseable model response")

var (
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

type rawPrediction struct {
	Category    string   `json:"category"`
	ClassName   string   `json:"className"`
	Label       string   `json:"label"`
	Probability *float64 `json:"probability"`
	Confidence  *float64 `json:"confidence"`
}

func (r rawPrediction) toPrediction() (types.Prediction, bool) {
	name := firstNonEmpty(r.Category, r.ClassName, r.Label)
	p := r.Probability
	if p == nil {
		p = r.Confidence
	}
	if name == "" || p == nil {
		return types.Prediction{}, false
	}
	return types.Prediction{Category: name, Probability: *p}, true
}

// ParsePredictions extracts an ordered prediction list from a model reply.
//
// Accepted shapes:
//
//	{"predictions":[{"category":"Good","probability":0.7}, ...]}
//	[{"className":"Good","probability":0.7}, ...]
//	{"Good":0.7,"Moderate":0.2, ...}
//
// Key order of the flat form is preserved.
func ParsePredictions(raw string) ([]types.Prediction, error) {
	raw = SanitizeModelJSON(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrUnparseable)
	}

	var preds []types.Prediction
	var err error
	switch raw[0] {
	case '[':
		preds, err = parseList([]byte(raw))
	case '{':
		preds, err = parseObject([]byte(raw))
	default:
		return nil, fmt.Errorf("%w: no JSON found", ErrUnparseable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("%w: no predictions", ErrUnparseable)
	}
	return preds, nil
}

func parseList(data []byte) ([]types.Prediction, error) {
	var raws []rawPrediction
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([]types.Prediction, 0, len(raws))
	for _, r := range raws {
		if p, ok := r.toPrediction(); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func parseObject(data []byte) ([]types.Prediction, error) {
	var wrapper struct {
		Predictions []rawPrediction `json:"predictions"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Predictions) > 0 {
		out := make([]types.Prediction, 0, len(wrapper.Predictions))
		for _, r := range wrapper.Predictions {
			if p, ok := r.toPrediction(); ok {
				out = append(out, p)
			}
		}
		return out, nil
	}
	return parseFlatMap(data)
}

// parseFlatMap walks the tokens so the key order survives
func parseFlatMap(data []byte) ([]types.Prediction, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var out []types.Prediction
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		var p float64
		if err := json.Unmarshal(val, &p); err != nil {
			// Non-numeric members such as "reasoning" are skipped.
			continue
		}
		out = append(out, types.Prediction{Category: key, Probability: p})
	}
	return out, nil
}

// SanitizeModelJSON removes code fences, comments, and trailing commas from a model reply
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = stripComments(raw)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost object or array, whichever opens first.
	start, closer := strings.IndexAny(raw, "{["), byte('}')
	if start >= 0 {
		if raw[start] == '[' {
			closer = ']'
		}
		if end := strings.LastIndexByte(raw, closer); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// stripComments removes // and /* */ comments that sit outside JSON strings
func stripComments(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	inString, escaped := false, false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
			b.WriteByte(ch)
		case ch == '/' && i+1 < len(raw) && raw[i+1] == '/':
			for i < len(raw) && raw[i] != '\n' {
				i++
			}
			if i < len(raw) {
				b.WriteByte('\n')
			}
		case ch == '/' && i+1 < len(raw) && raw[i+1] == '*':
			end := strings.Index(raw[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
