package configs

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var Values Config

type (
	Config struct {
		Log      Log      `mapstructure:"log"`
		Output   Output   `mapstructure:"output"`
		L1       L1       `mapstructure:"l1"`
		Services Services `mapstructure:"services"`
		Server   Server   `mapstructure:"server"`
	}

	Log struct {
		Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
		Format string `mapstructure:"format" validate:"required,oneof=json text"`
	}

	Output struct {
		Format string `mapstructure:"format" validate:"required,oneof=yaml json table"`
	}

	L1 struct {
		ChainID uint64 `mapstructure:"chain-id" validate:"required"`
	}

	// Services are the external build and inspection backends.
	Services struct {
		BuildURL   string        `mapstructure:"build-url" validate:"required,url"`
		InspectURL string        `mapstructure:"inspect-url" validate:"required,url"`
		Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	}

	Server struct {
		ListenAddr     string   `mapstructure:"listen-addr" validate:"required,hostname_port"`
		AllowedOrigins []string `mapstructure:"allowed-origins" validate:"dive,required"`
		MaxUploadBytes int64    `mapstructure:"max-upload-bytes" validate:"gt=0"`
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (c *Config) Validate() error {
	if err := validateStruct("", c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func (c *Services) Validate() error {
	if err := validateStruct("services", c); err != nil {
		return fmt.Errorf("services configuration validation failed: %w", err)
	}
	return nil
}

func (c *Server) Validate() error {
	if err := validateStruct("server", c); err != nil {
		return fmt.Errorf("server configuration validation failed: %w", err)
	}
	return nil
}

// validateStruct reports every violated rule, each named by its config key.
func validateStruct(prefix string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		switch fe.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s is required", key))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value()))
		default:
			errs = append(errs, fmt.Errorf("%s failed %q validation (value %v)", key, fe.Tag(), fe.Value()))
		}
	}

	return errors.Join(errs...)
}
