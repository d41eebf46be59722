package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ytanalyzer/internal/services"
	"ytanalyzer/internal/services/llm"
)

// Score bounds for info_quality and viewer_interest.
const (
	MinScore = 1
	MaxScore = 10
)

// Reconciliation is the corrected transcript and change report.
type Reconciliation struct {
	// Text is the raw model output with "# " section headings.
	Text string
	// PrimaryUsed is true when platform captions took part.
	PrimaryUsed bool
	// SecondaryUsed is true when a local transcript took part.
	SecondaryUsed bool
	// SecondarySource names the local strategy ("whisper", "whisperx").
	SecondarySource string
	// Duration is the end of the latest segment across both inputs, in seconds.
	Duration float64
	Model    string
	Usage    llm.Usage
}

// Result is the structured content analysis.
type Result struct {
	SalientPoints   []string
	Counterfactuals []string
	Bias            string
	ClaimsToReview  []string
	InfoQuality     int
	ViewerInterest  int
	Model           string
	Usage           llm.Usage
}

type rawResult struct {
	SalientPoints   *[]json.RawMessage `json:"salient_points"`
	Counterfactuals *[]json.RawMessage `json:"counterfactuals"`
	Bias            json.RawMessage    `json:"bias"`
	ClaimsToReview  *[]json.RawMessage `json:"claims_to_review"`
	InfoQuality     json.RawMessage    `json:"info_quality"`
	ViewerInterest  json.RawMessage    `json:"viewer_interest"`
}

// ParseResult decodes an analysis payload. Every field is required; scores
// may be JSON numbers or numeric strings and must fall within 1-10.
func ParseResult(content string) (*Result, error) {
	var raw rawResult
	if err := llm.DecodeLLMJSON(content, &raw); err != nil {
		return nil, invalid("decode analysis json", err)
	}
	var (
		result Result
		err    error
	)
	if result.SalientPoints, err = stringList("salient_points", raw.SalientPoints); err != nil {
		return nil, err
	}
	if result.Counterfactuals, err = stringList("counterfactuals", raw.Counterfactuals); err != nil {
		return nil, err
	}
	if result.ClaimsToReview, err = stringList("claims_to_review", raw.ClaimsToReview); err != nil {
		return nil, err
	}
	if result.Bias, err = text("bias", raw.Bias); err != nil {
		return nil, err
	}
	if result.InfoQuality, err = score("info_quality", raw.InfoQuality); err != nil {
		return nil, err
	}
	if result.ViewerInterest, err = score("viewer_interest", raw.ViewerInterest); err != nil {
		return nil, err
	}
	return &result, nil
}

func invalid(msg string, err error) error {
	return services.Wrap(services.ErrValidation, "analysis", "parse result", msg, err)
}

func isMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func stringList(field string, raw *[]json.RawMessage) ([]string, error) {
	if raw == nil {
		return nil, invalid(fmt.Sprintf("missing field %q", field), nil)
	}
	items := make([]string, 0, len(*raw))
	for i, item := range *raw {
		value, err := itemText(item)
		if err != nil {
			return nil, invalid(fmt.Sprintf("%s[%d]", field, i), err)
		}
		if value != "" {
			items = append(items, value)
		}
	}
	return items, nil
}

// itemText accepts strings and numbers; objects are kept as compact JSON so
// nothing the model wrote is lost.
func itemText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	if isMissing(raw) {
		return "", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func text(field string, raw json.RawMessage) (string, error) {
	if isMissing(raw) {
		return "", invalid(fmt.Sprintf("missing field %q", field), nil)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalid(fmt.Sprintf("field %q must be a string", field), err)
	}
	return strings.TrimSpace(s), nil
}

func score(field string, raw json.RawMessage) (int, error) {
	if isMissing(raw) {
		return 0, invalid(fmt.Sprintf("missing field %q", field), nil)
	}
	var value float64
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		parsed, err := number.Float64()
		if err != nil {
			return 0, invalid(fmt.Sprintf("field %q is not numeric", field), err)
		}
		value = parsed
	} else {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, invalid(fmt.Sprintf("field %q must be a number", field), err)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "/10"), 64)
		if err != nil {
			return 0, invalid(fmt.Sprintf("field %q is not numeric: %q", field, s), err)
		}
		value = parsed
	}
	rounded := int(math.Round(value))
	if rounded < MinScore || rounded > MaxScore {
		return 0, invalid(fmt.Sprintf("field %q out of range %d-%d: %v", field, MinScore, MaxScore, value), nil)
	}
	return rounded, nil
}
