package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rakhulsr/go-blog/app/cmd"
	"github.com/Rakhulsr/go-blog/app/configs"
)

func main() {
	env := configs.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewApp(env).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
