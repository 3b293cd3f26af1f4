package main

import (
	"fmt"
	"os"

	"github.com/danmuck/compcheck/internal/config"
	"github.com/danmuck/compcheck/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const defaultPath = "compcheck.toml"

func main() {
	logging.ConfigureRuntime()

	output := pflag.StringP("output", "o", defaultPath, "output path for config template")
	validate := pflag.Bool("validate", false, "validate an existing config file")
	input := pflag.StringP("input", "i", defaultPath, "config path for validation")
	force := pflag.Bool("force", false, "overwrite existing config file")
	stdout := pflag.Bool("stdout", false, "print the template instead of writing it")
	pflag.Parse()

	if *validate {
		if _, err := config.Load(*input); err != nil {
			log.Fatal().Err(err).Msg("config invalid")
		}
		log.Info().Str("path", *input).Msg("validated config")
		return
	}

	if *stdout {
		fmt.Fprint(os.Stdout, config.Template())
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal().Err(err).Msg("write config template failed")
	}
	log.Info().Str("path", *output).Msg("wrote config template")
}
