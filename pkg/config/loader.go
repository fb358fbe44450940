package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the environment using its `env` and `envDefault` tags.
func Load(cfg any) error {
	return parse(cfg, env.Options{})
}

// LoadWithPrefix is Load with every env tag prefixed, so one struct type can be
// filled once per connector:
//
//	config.LoadWithPrefix(&bluesnapCfg, "BLUESNAP_") // reads BLUESNAP_BASE_URL
func LoadWithPrefix(cfg any, prefix string) error {
	return parse(cfg, env.Options{Prefix: prefix})
}

func parse(cfg any, opts env.Options) error {
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse %sconfig: %w", opts.Prefix, err)
	}
	return nil
}
