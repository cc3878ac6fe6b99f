// Package config loads the application configuration.
//
// Values are layered, lowest precedence first:
//
//  1. Default()
//  2. a YAML file (SCORE_CONFIG_FILE, ./config.yaml or ./configs/config.yaml)
//  3. environment variables prefixed with SCORE_
//
// Environment variable names follow the struct nesting:
//
//	SCORE_SERVER_PORT=9090
//	SCORE_SCORING_TIE_POLICY=shared
//	SCORE_PATHS_DATA_DIR=/var/lib/score-analyzer
package config
