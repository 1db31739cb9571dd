// Package i18n provides message catalogs for formskema schemas.
package i18n

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/formskema"
)

// templates holds the built-in catalogs. "%s" is replaced by the field label
// (or the key, for notDefinedKey).
var templates = map[string]map[string]string{
	"en": {
		formskema.MsgNotDefinedKey:    "Key '%s' is not defined in schema",
		formskema.MsgModelIsUndefined: "Validated model is undefined",
		formskema.MsgValidateRequired: "Field '%s' is required",
		formskema.MsgInvalidValue:     "Field '%s' is invalid",
		formskema.MsgValidateString:   "Field '%s' is not a String",
		formskema.MsgValidateNumber:   "Field '%s' is not a Number",
		formskema.MsgValidateObject:   "Field '%s' is not a Object",
		formskema.MsgValidateArray:    "Field '%s' is not a Array",
		formskema.MsgValidateBoolean:  "Field '%s' is not a Boolean",
		formskema.MsgValidateDate:     "Field '%s' is not a Date",
	},
	"ja": {
		formskema.MsgNotDefinedKey:    "キー '%s' はスキーマに定義されていません",
		formskema.MsgModelIsUndefined: "検証対象のモデルが未定義です",
		formskema.MsgValidateRequired: "'%s' は必須です",
		formskema.MsgInvalidValue:     "'%s' の値が不正です",
		formskema.MsgValidateString:   "'%s' は文字列ではありません",
		formskema.MsgValidateNumber:   "'%s' は数値ではありません",
		formskema.MsgValidateObject:   "'%s' はオブジェクトではありません",
		formskema.MsgValidateArray:    "'%s' は配列ではありません",
		formskema.MsgValidateBoolean:  "'%s' は真偽値ではありません",
		formskema.MsgValidateDate:     "'%s' は日付ではありません",
	},
}

// Languages returns the built-in catalog languages.
func Languages() []string {
	out := make([]string, 0, len(templates))
	for lang := range templates {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Messages returns the built-in catalog for lang; unknown languages get "en".
func Messages(lang string) formskema.Messages {
	t, ok := templates[lang]
	if !ok {
		t = templates["en"]
	}
	return FromTemplates(t)
}

// FromTemplates builds formatters from printf-style templates with at most
// one %s verb.
func FromTemplates(t map[string]string) formskema.Messages {
	out := make(formskema.Messages, len(t))
	for name, tmpl := range t {
		out[name] = formatter(tmpl)
	}
	return out
}

// LoadYAML reads a catalog of "name: template" pairs.
func LoadYAML(r io.Reader) (formskema.Messages, error) {
	var t map[string]string
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		if err == io.EOF {
			return formskema.Messages{}, nil
		}
		return nil, fmt.Errorf("i18n: decode catalog: %w", err)
	}
	for name, tmpl := range t {
		if strings.Count(tmpl, "%") != strings.Count(tmpl, "%s")+2*strings.Count(tmpl, "%%") {
			return nil, fmt.Errorf("i18n: %s: only %%s and %%%% are allowed in templates", name)
		}
		if strings.Count(tmpl, "%s") > 1 {
			return nil, fmt.Errorf("i18n: %s: at most one %%s is allowed in templates", name)
		}
	}
	return FromTemplates(t), nil
}

func formatter(tmpl string) formskema.Formatter {
	if !strings.Contains(tmpl, "%s") {
		return func(string) string { return strings.ReplaceAll(tmpl, "%%", "%") }
	}
	return func(label string) string { return fmt.Sprintf(tmpl, label) }
}
