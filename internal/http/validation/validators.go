// Package validation checks submitted forms before they leave the portal.
// It wraps go-playground/validator with the portal's custom tags and turns
// failures into per-field messages keyed by the field's JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/publicsuffix"

	"github.com/gitnudge/portal/internal/domain/account"
)

// Custom validation tags.
const (
	TagMailHost     = "mailhost"
	TagNotifyHour   = "notify_hour"
	TagNotifyMinute = "notify_minute"
)

// Validator validates tagged structs and reports field messages.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the portal's custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	mustRegister(v, TagMailHost, validateMailHost)
	mustRegister(v, TagNotifyHour, func(fl validator.FieldLevel) bool {
		return account.IsHourOption(fl.Field().String())
	})
	mustRegister(v, TagNotifyMinute, func(fl validator.FieldLevel) bool {
		return account.IsMinuteOption(fl.Field().String())
	})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		//nolint:forbidigo // tag registration only fails on programmer error
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Check validates s and returns one message per failing field, or nil when s
// is valid. Only the first failing rule of each field is reported.
func (val *Validator) Check(s any) map[string]string {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": "The form could not be validated."}
	}

	labels := fieldLabels(s)
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := out[name]; seen {
			continue
		}
		label := labels[fe.StructField()]
		if label == "" {
			label = name
		}
		out[name] = message(label, fe)
	}
	return out
}

// ValidateRegistration normalizes f in place and validates it.
func (val *Validator) ValidateRegistration(f *account.RegistrationForm) map[string]string {
	f.Normalize()
	return val.Check(f)
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters.", label, fe.Param())
	case TagMailHost:
		return "Enter an email address with a full domain name."
	case TagNotifyHour:
		return "Choose an hour between 00 and 23."
	case TagNotifyMinute:
		return "Choose a minute of " + strings.Join(account.MinuteOptions, ", ") + "."
	default:
		return label + " is invalid."
	}
}

// validateMailHost accepts addresses whose domain has a registrable part
// above its public suffix, ICANN or private ("alice.github.io"). Bare hosts
// like "localhost" and bare suffixes like "com" are rejected.
func validateMailHost(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	at := strings.LastIndexByte(addr, '@')
	if at < 0 || at == len(addr)-1 {
		return false
	}
	host := strings.ToLower(strings.TrimSuffix(addr[at+1:], "."))

	_, err := publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

func fieldLabels(s any) map[string]string {
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	labels := make(map[string]string, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if l := f.Tag.Get("label"); l != "" {
			labels[f.Name] = l
		}
	}
	return labels
}
