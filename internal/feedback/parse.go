package feedback

import (
	"encoding/json"
	"strings"

	"github.com/fadilmartias/resumind/internal/apperror"
	"github.com/fadilmartias/resumind/internal/model"
	"github.com/tidwall/gjson"
)

// categoryKeys are the heavy categories whose tips carry explanations.
var categoryKeys = []string{"toneAndStyle", "content", "structure", "skills"}

// Parse turns raw inference output into a validated Feedback value.
// Every failure is a parse-kind error so callers can tell "the model
// answered garbage" apart from "the model did not answer".
func Parse(raw string) (*model.Feedback, error) {
	text := Normalize(raw)
	if strings.TrimSpace(text) == "" {
		return nil, apperror.New(apperror.KindParse, "inference output is empty")
	}
	if !gjson.Valid(text) {
		return nil, apperror.New(apperror.KindParse, "inference output is not valid JSON")
	}

	root := gjson.Parse(text)
	if !root.IsObject() {
		return nil, apperror.New(apperror.KindParse, "inference output is not a JSON object")
	}
	if !root.Get("overallScore").Exists() {
		return nil, apperror.New(apperror.KindParse, "missing required key overallScore")
	}
	if !root.Get("ATS").Exists() {
		return nil, apperror.New(apperror.KindParse, "missing required key ATS")
	}
	for _, key := range categoryKeys {
		if !root.Get(key).Exists() {
			return nil, apperror.Newf(apperror.KindParse, "missing required key %s", key)
		}
	}

	var fb model.Feedback
	if err := json.Unmarshal([]byte(text), &fb); err != nil {
		return nil, apperror.Wrap(apperror.KindParse, "inference output does not match the feedback shape", err)
	}
	if err := validate(&fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

// Normalize collapses the two response shapes the service contract
// allows (a bare text payload, or a one-element list carrying a text
// field) into a single string, then strips markdown code fences that
// models add even when told not to.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	if parsed := gjson.Parse(text); parsed.IsArray() {
		if inner := parsed.Get("0.text"); inner.Exists() {
			text = inner.String()
		}
	}
	return stripFences(text)
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Drop a language identifier on the first line, e.g. "json".
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func validate(fb *model.Feedback) error {
	if err := checkScore("overallScore", fb.OverallScore); err != nil {
		return err
	}
	if err := checkScore("ATS.score", fb.ATS.Score); err != nil {
		return err
	}
	for i, tip := range fb.ATS.Tips {
		if err := checkTip("ATS", i, tip.Type, tip.Tip); err != nil {
			return err
		}
	}
	categories := map[string]model.Category{
		"toneAndStyle": fb.ToneAndStyle,
		"content":      fb.Content,
		"structure":    fb.Structure,
		"skills":       fb.Skills,
	}
	for _, key := range categoryKeys {
		cat := categories[key]
		if err := checkScore(key+".score", cat.Score); err != nil {
			return err
		}
		for i, tip := range cat.Tips {
			if err := checkTip(key, i, tip.Type, tip.Tip); err != nil {
				return err
			}
			if strings.TrimSpace(tip.Explanation) == "" {
				return apperror.Newf(apperror.KindParse, "%s tip %d is missing its explanation", key, i)
			}
		}
	}
	return nil
}

func checkScore(field string, score int) error {
	if score < 0 || score > 100 {
		return apperror.Newf(apperror.KindParse, "%s is %d, outside 0-100", field, score)
	}
	return nil
}

func checkTip(category string, index int, tipType, tip string) error {
	if tipType != model.TipGood && tipType != model.TipImprove {
		return apperror.Newf(apperror.KindParse, "%s tip %d has invalid type %q", category, index, tipType)
	}
	if strings.TrimSpace(tip) == "" {
		return apperror.Newf(apperror.KindParse, "%s tip %d is missing its text", category, index)
	}
	return nil
}
