package commands

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags binds each config key to the named flag, so a flag given on the
// command line overrides the config file and environment.
func bindFlags(v *viper.Viper, lookup func(name string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		flag := lookup(name)
		if flag == nil {
			panic(fmt.Sprintf("bind %s: no flag --%s", key, name))
		}
		if err := v.BindPFlag(key, flag); err != nil {
			panic(fmt.Sprintf("bind %s: %v", key, err))
		}
	}
}

// checkFormat rejects a --format value outside allowed.
func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, allowed)
}
