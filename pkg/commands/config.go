package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/help"
	"github.com/oaeproject/oaesh/pkg/shell"
)

const (
	configGetUsage   = "Usage: config-get [--tenant=<tenant alias>] [<module name>]"
	configSetUsage   = `Usage: config-set -k "<key>=<value>" [-k "<key>=<value>"...] [--tenant=<tenant alias>]`
	configClearUsage = "Usage: config-clear -k <key> [-k <key> ...] [--tenant=<tenant alias>]"
)

func configFlags(name string, withKeys bool) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		fs := newFlags(name)
		if withKeys {
			fs.StringArrayP("k", "k", nil, "A configuration key, or key=value pair")
		}
		fs.StringP("tenant", "t", "", "The alias of the tenant. Defaults to the current tenant")
		return fs
	}
}

// ConfigGet returns the config-get command.
func ConfigGet() *shell.Command {
	return &shell.Command{
		Name:     "config-get",
		Summary:  "Retrieve tenant configuration information",
		Usage:    configGetUsage,
		Category: help.CategoryConfig,
		Flags:    configFlags("config-get", false),
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			h, err := active(env)
			if err != nil {
				return err
			}
			tenant := flagString(inv, "tenant")
			cfg, err := env.API.GetConfig(ctx, h, tenant)
			if err != nil {
				return err
			}
			if tenant == "" && env.Keys != nil {
				if st := env.Store.State(); st.Tenant != nil {
					env.Keys.Put(st.Tenant.Alias, st.Label, cfg)
				}
			}

			module := arg(inv, 0)
			if module == "" {
				return env.Out.Print(cfg)
			}
			section, ok := cfg[module]
			if !ok {
				return invalid(errors.ErrValidationNotFound, "moduleName", configGetUsage,
					`No configuration found for module "%s"`, module)
			}
			return env.Out.Print(section)
		},
	}
}

// ConfigSet returns the config-set command. It prints the pairs it set.
func ConfigSet() *shell.Command {
	return &shell.Command{
		Name:     "config-set",
		Summary:  "Set a tenant configuration value",
		Usage:    configSetUsage,
		Category: help.CategoryConfig,
		Flags:    configFlags("config-set", true),
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			pairs := flagArray(inv, "k")
			if len(pairs) == 0 {
				return errors.Validation(errors.ErrValidationRequired, "k",
					`Must use the "k" parameter to specify at least one key-value pair to set`).WithUsage(configSetUsage)
			}
			values := make(map[string]string, len(pairs))
			for _, kv := range pairs {
				k, v, ok := ParseKeyValue(kv)
				if !ok {
					return invalid(errors.ErrValidationInvalidFormat, "k", configSetUsage,
						`Invalid key-value pair: "%s"`, kv)
				}
				values[k] = v
			}

			h, err := active(env)
			if err != nil {
				return err
			}
			if err := env.API.UpdateConfig(ctx, h, flagString(inv, "tenant"), values); err != nil {
				return err
			}
			return env.Out.Print(values)
		},
	}
}

// ConfigClear returns the config-clear command.
func ConfigClear() *shell.Command {
	return &shell.Command{
		Name:     "config-clear",
		Summary:  "Clear a tenant configuration value",
		Usage:    configClearUsage,
		Category: help.CategoryConfig,
		Flags:    configFlags("config-clear", true),
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			keys := flagArray(inv, "k")
			if len(keys) == 0 {
				return errors.Validation(errors.ErrValidationRequired, "k",
					`Must use the "k" parameter to specify at least one configuratio key to clear`).WithUsage(configClearUsage)
			}
			h, err := active(env)
			if err != nil {
				return err
			}
			return env.API.ClearConfig(ctx, h, flagString(inv, "tenant"), keys)
		},
	}
}
