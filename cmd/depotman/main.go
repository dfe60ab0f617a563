// Command depotman はデポ管理コンソールのAPIサーバーを起動する。
//
//	depotman [serve|migrate|seed|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/pushgo/depotman/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "depotman: %v\n", err)
		os.Exit(1)
	}
}
