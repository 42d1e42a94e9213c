// Package app wires application dependencies for the CLI.
//
// Config is read through viper from $RAIAP_HOME/config.yaml, RAIAP_*
// environment variables and bound command-line flags, in increasing order of
// precedence. New builds the keystore, the configured stream store and the
// identity and stream services from it, exposing them on App for commands
// to use.
package app
