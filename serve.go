package main

import (
	"crosspointx/internal/back"
	"crosspointx/internal/config"
	"crosspointx/internal/web"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

func serve() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	b, err := back.New(conf.SQLDriver, conf.SQLDSN, conf)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	go b.Run(&wg, done)
	go web.NewServer(b, conf).Serve(&wg, done)

	sig := <-signaled
	log.Printf("received signal %d", sig)
	close(done)
	wg.Wait()

	log.Print("shutdown complete")

	return nil
}
