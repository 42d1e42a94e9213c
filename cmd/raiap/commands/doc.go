// Package commands defines the raiap CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init             Create the local identity (card + generation 0)
//   - fingerprint      Print the master key fingerprint
//   - rotate           Replace the operational key, authorized by the master key
//   - generations      List generations with their status and validity
//   - export-public    Write the public evolution state others verify against
//   - shares issue     Split the active key into sealed recovery share files
//   - recover          Rebuild the frontier key from share files and rotate past it
//   - profile new      Derive a profile pseudonym and optionally disclose attributes
//   - anchor append    Record a signed event on a stream
//   - verify           Verify a stream (or all streams) against a trust root
//   - fork             Compare a stream against an archive copy
//   - export, import   Move streams as xz-compressed archives
//
// # Implementation
//
// The root command resolves Config through viper (config file, RAIAP_*
// environment, flags) and builds the app dependency graph before any
// subcommand runs; it is closed again after the subcommand returns.
package commands
