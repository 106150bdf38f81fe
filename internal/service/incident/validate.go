package incident

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/careconnect/careconnect-api/internal/model"
)

// validateFields checks a template definition. It returns one message per problem.
func validateFields(fields []model.FormField) []string {
	var details []string
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Key] {
			details = append(details, fmt.Sprintf("field key %q is used more than once", f.Key))
		}
		seen[f.Key] = true

		if f.Type == model.FieldTypeSelect && len(f.Options) == 0 {
			details = append(details, fmt.Sprintf("select field %q needs at least one option", f.Key))
		}
	}
	return details
}

// validateData checks a submitted report body against the template fields.
func validateData(fields []model.FormField, data []byte) []string {
	if !gjson.ValidBytes(data) {
		return []string{"data must be valid JSON"}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return []string{"data must be a JSON object"}
	}

	var details []string
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Key] = true
		v := doc.Get(gjson.Escape(f.Key))
		if isEmpty(v) {
			if f.Required {
				details = append(details, fmt.Sprintf("%s is required", f.Key))
			}
			continue
		}
		if msg := checkValue(f, v); msg != "" {
			details = append(details, msg)
		}
	}

	doc.ForEach(func(key, _ gjson.Result) bool {
		if !known[key.String()] {
			details = append(details, fmt.Sprintf("%s is not a field of this form", key.String()))
		}
		return true
	})
	return details
}

func isEmpty(v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null {
		return true
	}
	return v.Type == gjson.String && strings.TrimSpace(v.Str) == ""
}

func checkValue(f model.FormField, v gjson.Result) string {
	switch f.Type {
	case model.FieldTypeText, model.FieldTypeTextarea:
		if v.Type != gjson.String {
			return fmt.Sprintf("%s must be text", f.Key)
		}
	case model.FieldTypeNumber:
		if v.Type == gjson.Number {
			return ""
		}
		if v.Type == gjson.String {
			if _, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
				return ""
			}
		}
		return fmt.Sprintf("%s must be a number", f.Key)
	case model.FieldTypeDate:
		if v.Type != gjson.String || !isDate(v.Str) {
			return fmt.Sprintf("%s must be a date (YYYY-MM-DD or RFC3339)", f.Key)
		}
	case model.FieldTypeSelect:
		if v.Type != gjson.String || !contains(f.Options, v.Str) {
			return fmt.Sprintf("%s must be one of: %s", f.Key, strings.Join(f.Options, ", "))
		}
	case model.FieldTypeCheckbox:
		if !v.IsBool() {
			return fmt.Sprintf("%s must be true or false", f.Key)
		}
	}
	return ""
}

func isDate(s string) bool {
	if _, err := time.Parse(model.DateLayout, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
