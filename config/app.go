package config

import (
	"fmt"
	"strings"

	validatorV10 "github.com/go-playground/validator/v10"

	"github.com/leeforge/bmpscale/logging"
)

// MaxScaleFactor is the product limit on the enlargement factor.
const MaxScaleFactor = 100

// AppConfig is the settings tree read from bmpscale.yaml and BMPSCALE_* variables.
type AppConfig struct {
	MaxScaleFactor int            `mapstructure:"max_scale_factor" json:"max_scale_factor" default:"100" validate:"min=1,max=100"`
	Output         OutputConfig   `mapstructure:"output" json:"output"`
	Preview        PreviewConfig  `mapstructure:"preview" json:"preview"`
	Log            logging.Config `mapstructure:"log" json:"log"`
}

type OutputConfig struct {
	// Atomic writes to a temporary file next to the destination and renames it on success.
	Atomic bool `mapstructure:"atomic" json:"atomic"`
	// Report prints the resulting geometry as JSON on stdout.
	Report bool `mapstructure:"report" json:"report"`
}

type PreviewConfig struct {
	MaxSize uint `mapstructure:"max_size" json:"max_size" default:"256" validate:"min=1,max=4096"`
}

// envKeys lists the settings that can be given through the environment alone.
var envKeys = []string{
	"max_scale_factor",
	"output.atomic",
	"output.report",
	"preview.max_size",
	"log.level",
	"log.format",
	"log.director",
	"log.log-in-terminal",
}

var validate = validatorV10.New()

// Validate checks the configured limits.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validatorV10.ValidationErrors); ok {
			msgs := make([]string, 0, len(errs))
			for _, fe := range errs {
				msgs = append(msgs, fmt.Sprintf("%s %s", fe.Namespace(), validationMessage(fe)))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func validationMessage(fe validatorV10.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}

// Load reads the application settings. Missing files leave the defaults in place.
func Load(optsArr ...ConfigOptions) (*AppConfig, error) {
	opts := DefaultConfigOptions()
	if len(optsArr) > 0 {
		opts = optsArr[0]
	}
	opts.EnvKeys = append(opts.EnvKeys, envKeys...)

	cfg, err := NewConfig(opts)
	if err != nil {
		return nil, err
	}

	app := &AppConfig{Log: logging.DefaultConfig()}
	if err := cfg.BindWithDefaults(app); err != nil {
		return nil, err
	}
	return app, nil
}
