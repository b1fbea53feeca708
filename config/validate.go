package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pugvideo/pugvideo-go/faults"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report yaml names so messages match what users write in the catalog.
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks a client configuration.
func (c Client) Validate() error {
	if err := validateStruct(c, "client"); err != nil {
		return err
	}

	if c.Auth != nil && countSet(c.Auth.OAuth2 != nil, c.Auth.BearerToken != nil) != 1 {
		return validationError("client.auth must define exactly one of oauth2, bearer-token", nil)
	}
	if c.TLS != nil && (c.TLS.ClientCertFile == "") != (c.TLS.ClientKeyFile == "") {
		return validationError("client.tls client-cert-file and client-key-file must be set together", nil)
	}
	return c.DefaultHeaders.validate()
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return validationError("profile name must not be empty", nil)
	}
	if err := p.Client.Validate(); err != nil {
		return validationError(fmt.Sprintf("profile %q is invalid", p.Name), err)
	}
	return nil
}

func (c ProfileCatalog) Validate() error {
	if len(c.Profiles) == 0 {
		if c.CurrentProfile != "" {
			return validationError("current-profile must be empty when profiles list is empty", nil)
		}
		return nil
	}

	// Client settings may still hold ${NAME} placeholders here, so only the
	// catalog structure is checked. Profiles are validated once resolved.
	seen := map[string]struct{}{}
	for _, item := range c.Profiles {
		if strings.TrimSpace(item.Name) == "" {
			return validationError("profile name must not be empty", nil)
		}
		if _, exists := seen[item.Name]; exists {
			return validationError(fmt.Sprintf("duplicate profile name %q", item.Name), nil)
		}
		seen[item.Name] = struct{}{}
	}

	if c.CurrentProfile == "" {
		return validationError("current-profile must be set when profiles are defined", nil)
	}
	if _, exists := seen[c.CurrentProfile]; !exists {
		return validationError(fmt.Sprintf("current-profile %q does not match any profile", c.CurrentProfile), nil)
	}
	return nil
}

func validateStruct(value any, root string) error {
	err := structValidator().Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return validationError("invalid configuration", err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		messages = append(messages, describeFieldError(root, fieldErr))
	}
	return validationError(strings.Join(messages, "; "), nil)
}

func describeFieldError(root string, fieldErr validator.FieldError) string {
	// Namespace is "Client.base-url"; swap the struct name for the yaml root.
	path := fieldErr.Namespace()
	if _, rest, found := strings.Cut(path, "."); found {
		path = root + "." + rest
	}

	switch fieldErr.Tag() {
	case "required":
		return path + " is required"
	case "url":
		return fmt.Sprintf("%s must be an absolute URL, got %q", path, fieldErr.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, fieldErr.Param())
	case "eq":
		return fmt.Sprintf("%s must be %s", path, fieldErr.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be %s %s", path, map[string]string{"gt": ">", "gte": ">="}[fieldErr.Tag()], fieldErr.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fieldErr.Tag())
	}
}

func countSet(values ...bool) int {
	count := 0
	for _, value := range values {
		if value {
			count++
		}
	}
	return count
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
