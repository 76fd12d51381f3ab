package main

import (
	"fmt"
	"log"

	dotenv "github.com/dsh2dsh/expx-dotenv"

	"github.com/jemtv/storyfeed/internal/cli"
)

func main() {
	if err := dotenv.New().WithDepth(1).Load(); err != nil {
		log.Fatal(fmt.Errorf("load .env files: %w", err))
	}
	cli.Execute()
}
