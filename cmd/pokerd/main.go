// Command pokerd runs the planning-poker session coordinator.
//
// Usage:
//
//	pokerd serve [--listen :8080] [--config pokerd.toml]
//	pokerd status [--addr http://localhost:8080]
//	pokerd session create --name "Sprint 42" --creator Ada
//	pokerd config
//	pokerd version
//
// Settings come from built-in defaults, an optional pokerd.toml, a .env
// file, POKERD_* environment variables and flags, in rising precedence.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
