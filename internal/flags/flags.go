// Package flags declares command-line flags bound to viper configuration keys.
package flags

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type (
	Type interface {
		string | int | bool | time.Duration | []string
	}

	// Def defines a command-line flag with its configuration key.
	Def[T Type] struct {
		Name         string
		ViperKey     string
		DefaultValue T
		Description  string
	}
)

// Declare declares every flag on fs and binds it to its viper key.
func Declare[T Type](fs *pflag.FlagSet, defs []Def[T]) error {
	for _, def := range defs {
		if err := declare(fs, def); err != nil {
			return err
		}
	}
	return nil
}

// MustDeclare is Declare for package init, where a bad definition is a
// programming error.
func MustDeclare[T Type](fs *pflag.FlagSet, defs []Def[T]) {
	if err := Declare(fs, defs); err != nil {
		panic(err)
	}
}

func declare[T Type](fs *pflag.FlagSet, def Def[T]) error {
	switch v := any(def.DefaultValue).(type) {
	case string:
		fs.String(def.Name, v, def.Description)
	case int:
		fs.Int(def.Name, v, def.Description)
	case bool:
		fs.Bool(def.Name, v, def.Description)
	case time.Duration:
		fs.Duration(def.Name, v, def.Description)
	case []string:
		fs.StringSlice(def.Name, v, def.Description)
	}

	if def.ViperKey == "" {
		return nil
	}
	if err := viper.BindPFlag(def.ViperKey, fs.Lookup(def.Name)); err != nil {
		return fmt.Errorf("failed to bind flag %q to %q: %w", def.Name, def.ViperKey, err)
	}
	return nil
}
