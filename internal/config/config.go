// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/nightshell/internal/color"
	"github.com/matt-FFFFFF/nightshell/internal/ctxlog"
	"github.com/matt-FFFFFF/nightshell/internal/lineeditor"
	"github.com/matt-FFFFFF/nightshell/internal/prompt"
	"github.com/spf13/afero"
)

const (
	// AppName names the configuration directory.
	AppName = "nightshell"
	// FileName is the configuration file name inside the configuration directory.
	FileName = "config.yaml"
)

var (
	// ErrReadConfig is returned when the file exists but cannot be read, or an
	// explicitly requested file is missing.
	ErrReadConfig = errors.New("could not read configuration file")
	// ErrInvalidYaml is returned when the file is not valid YAML for Config.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidConfig is returned when validation fails.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FsFactory returns the filesystem the configuration is read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

//go:embed default/config.yaml
var defaultConfigData []byte

// Config is the shell configuration.
type Config struct {
	Colors               Colors `yaml:"colors"`
	Prompt               Prompt `yaml:"prompt"`
	MaxSuggestions       int    `yaml:"max_suggestions" validate:"gte=1"`
	MaxInputLength       int    `yaml:"max_input_length" validate:"gte=1"`
	MaxBackgroundJobs    int    `yaml:"max_background_jobs" validate:"gte=1"`
	RegisterPathCommands bool   `yaml:"register_path_commands"`
}

// Colors holds colour names for the line editor.
type Colors struct {
	Command    []string `yaml:"command" validate:"dive,color"`
	Error      []string `yaml:"error" validate:"dive,color"`
	Argument   []string `yaml:"argument" validate:"dive,color"`
	Suggestion []string `yaml:"suggestion" validate:"dive,color"`
}

// Prompt configures the prompt template.
type Prompt struct {
	Format      string   `yaml:"format" validate:"required"`
	UserColor   []string `yaml:"user_color" validate:"dive,color"`
	DirColor    []string `yaml:"dir_color" validate:"dive,color"`
	SymbolColor []string `yaml:"symbol_color" validate:"dive,color"`
	Symbol      string   `yaml:"symbol"`
	DynamicDir  bool     `yaml:"dynamic_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	if err := yaml.UnmarshalWithOptions(defaultConfigData, &c, yaml.Strict()); err != nil {
		panic(err)
	}

	return &c
}

// DefaultPath is $XDG_CONFIG_HOME/nightshell/config.yaml, falling back to
// ~/.config/nightshell/config.yaml. It returns "" when neither can be determined.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, FileName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", AppName, FileName)
}

// Load reads the configuration at path over the defaults.
// An empty path means DefaultPath, which may be absent.
func Load(ctx context.Context, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	c := Default()

	if path == "" {
		return c, nil
	}

	data, err := afero.ReadFile(FsFactory(), path)

	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		ctxlog.Debug(ctx, "no configuration file, using defaults", "path", path)
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s: %w", ErrReadConfig, path, err)
	}

	if err := yaml.UnmarshalWithOptions(data, c, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidYaml, path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "configuration loaded", "path", path)

	return c, nil
}

// Validate the configuration for basic semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})

	if err := validate.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		_, err := color.Parse(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// EditorColors converts the colour names for the line editor.
func (c *Config) EditorColors() (lineeditor.Colors, error) {
	var (
		out  lineeditor.Colors
		errs []error
	)

	out.Command, errs = parseInto(c.Colors.Command, errs)
	out.Error, errs = parseInto(c.Colors.Error, errs)
	out.Argument, errs = parseInto(c.Colors.Argument, errs)
	out.Suggestion, errs = parseInto(c.Colors.Suggestion, errs)

	return out, errors.Join(errs...)
}

// PromptTemplate builds the prompt template.
func (c *Config) PromptTemplate() (*prompt.Template, error) {
	t := &prompt.Template{
		Format:     c.Prompt.Format,
		Symbol:     c.Prompt.Symbol,
		DynamicDir: c.Prompt.DynamicDir,
	}

	var errs []error

	t.UserColor, errs = parseInto(c.Prompt.UserColor, errs)
	t.DirColor, errs = parseInto(c.Prompt.DirColor, errs)
	t.SymbolColor, errs = parseInto(c.Prompt.SymbolColor, errs)

	return t, errors.Join(errs...)
}

func parseInto(names []string, errs []error) ([]color.Code, []error) {
	codes, err := color.ParseAll(names)
	if err != nil {
		errs = append(errs, err)
	}

	return codes, errs
}
