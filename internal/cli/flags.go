package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveOption prefers an explicitly set flag and otherwise reads key from
// viper, which already folds in the env, the config file and flag defaults.
func resolveOption[T any](cmd *cobra.Command, value T, key string, flagName string, lookup func(string) T) T {
	if cmd == nil || flagChanged(cmd, flagName) {
		return value
	}
	return lookup(key)
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	return resolveOption(cmd, value, key, flagName, viper.GetString)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	return resolveOption(cmd, value, key, flagName, viper.GetBool)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	return resolveOption(cmd, value, key, flagName, viper.GetInt)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	name = strings.TrimSpace(name)
	if cmd == nil || name == "" {
		return false
	}
	for _, set := range []interface{ Changed(string) bool }{cmd.Flags(), cmd.PersistentFlags()} {
		if set.Changed(name) {
			return true
		}
	}
	return false
}
