package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	_ "github.com/joho/godotenv/autoload"

	"github.com/illarion/notevault/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cmd.Execute(ctx)

	stop()
	memguard.Purge()
	os.Exit(code)
}
