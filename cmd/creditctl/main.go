package main

// Credit administration against the configured database:
//   go run ./cmd/creditctl balance --user <id>
//   go run ./cmd/creditctl grant --user <id> --amount 40
//   go run ./cmd/creditctl tier --user <id> --tier pro --grant

import "os"

func main() {
	if err := newRootCmd(connectAdmin).Execute(); err != nil {
		os.Exit(1)
	}
}
