// Package demo holds the example schemas served by the formskema CLI.
package demo

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/rules"
	"github.com/reoring/formskema/types"
)

var builders = map[string]func(opts ...formskema.Option) *formskema.Schema{
	"company": Company,
	"contact": Contact,
}

// Names returns the registered schema names.
func Names() []string {
	out := make([]string, 0, len(builders))
	for name := range builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup builds the schema registered under name.
func Lookup(name string, opts ...formskema.Option) (*formskema.Schema, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q (known: %v)", name, Names())
	}
	s := b(append([]formskema.Option{formskema.WithName(name)}, opts...)...)
	if err := types.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// UniqueKey returns the field whose values must not repeat across accepted
// documents of schema name.
func UniqueKey(name string) (string, bool) {
	switch name {
	case "company":
		return "companyName", true
	case "contact":
		return "email", true
	}
	return "", false
}

// NewRecord returns a pointer to the typed form of schema name, for
// formskema.Bind.
func NewRecord(name string) (any, error) {
	switch name {
	case "company":
		return &CompanyRecord{}, nil
	case "contact":
		return &ContactRecord{}, nil
	}
	return nil, fmt.Errorf("unknown schema %q (known: %v)", name, Names())
}

type PersonRecord struct {
	Name  string  `json:"name"`
	Email string  `json:"email,omitempty"`
	Share float64 `json:"share,omitempty"`
}

type AddressRecord struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     any    `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

type CompanyRecord struct {
	ID          string         `json:"id,omitempty"`
	CompanyName string         `json:"companyName"`
	Employees   int            `json:"employees,omitempty"`
	Address     AddressRecord  `json:"address"`
	Owners      []PersonRecord `json:"owners"`
	Currency    string         `json:"currency,omitempty"`
	Founded     time.Time      `json:"founded,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	VatID       string         `json:"vatId,omitempty"`
	Public      bool           `json:"public"`
}

type ContactRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone any    `json:"phone,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Person is an owner of a company.
func Person(opts ...formskema.Option) *formskema.Schema {
	return formskema.New(map[string]*formskema.Field{
		"name":  {Type: formskema.String, Required: true, Label: "Name"},
		"email": {Type: formskema.String, Validators: []*formskema.Validator{rules.Pattern(emailPattern, "Email is malformed")}},
		"share": {Type: formskema.Number, Validators: []*formskema.Validator{rules.Range(0, 100, "Share must be between 0 and 100")}},
	}, opts...)
}

// Address is a postal address.
func Address(opts ...formskema.Option) *formskema.Schema {
	return formskema.New(map[string]*formskema.Field{
		"street":  {Type: formskema.String, Required: true},
		"city":    {Type: formskema.String, Required: true},
		"zip":     {Type: formskema.OneOf(formskema.String, formskema.Number)},
		"country": {Type: formskema.String, Options: []any{"POLAND", "JAPAN", "GERMANY"}, Validators: []*formskema.Validator{rules.In("")}},
	}, opts...)
}

// Company is a registered company with owners.
func Company(opts ...formskema.Option) *formskema.Schema {
	s := formskema.New(map[string]*formskema.Field{
		"id":          {Type: types.UUID},
		"companyName": {Type: formskema.String, Required: true, Label: "Company name", Validators: []*formskema.Validator{rules.MinLength(2, "Company name is too short")}},
		"employees":   {Type: types.Integer, DisableDefaultValue: true},
		"address":     {Type: Address(opts...), Required: true},
		"owners":      {Type: formskema.ArrayOf(Person(opts...))},
		"currency": {Type: formskema.String, DefaultValue: "EUR", Options: []any{
			formskema.Choice{Label: "Euro", Value: "EUR"},
			formskema.Choice{Label: "Yen", Value: "JPY"},
		}, Validators: []*formskema.Validator{rules.In("Currency is not supported")}},
		"founded": {Type: formskema.Date},
		"tags":    {Type: formskema.ArrayOf(formskema.String), Validators: []*formskema.Validator{rules.MaxLength(5, "Too many tags")}},
		"vatId":   {Type: formskema.Optional(formskema.String)},
		"public":  {Type: formskema.Boolean, DisableDefaultValue: true},
	}, opts...)
	s.AddValidator(rules.AtLeastOne("owners", "At least one owner is required"))
	s.AddValidator(rules.UniqueBy("owners", "email", "Email is already used by another owner"))
	s.AddValidator(rules.If("public", rules.Eq, true).Then(rules.Require("vatId", "Public companies need a VAT id")))
	return s
}

// Contact is a single point of contact.
func Contact(opts ...formskema.Option) *formskema.Schema {
	return formskema.New(map[string]*formskema.Field{
		"name":  {Type: formskema.String, Required: true},
		"email": {Type: formskema.String, Required: true, Validators: []*formskema.Validator{rules.Pattern(emailPattern, "Email is malformed")}},
		"phone": {Type: formskema.OneOf(formskema.String, formskema.Number)},
	}, opts...)
}
