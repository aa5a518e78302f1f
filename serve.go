package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"poro/internal/back"
	"poro/internal/bot"
	"poro/internal/config"
	"poro/internal/web"
	"poro/pkg/riotapi"
)

func serve(b *back.Back) error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	// Without a Riot key registrations still work, everyone seeds unranked.
	var riot *riotapi.API
	if conf.RiotAPIKey != "" {
		riot = riotapi.New(conf.RiotAPIKey, conf.RiotRegion, conf.RiotPlatform)
	} else {
		log.Print("warning: no Riot API key configured, rank seeding is disabled")
	}

	discordBot, err := bot.New(b, conf, riot)
	if err != nil {
		return err
	}
	server := web.NewServer(b)

	done := make(chan struct{})
	var wg sync.WaitGroup
	go discordBot.Serve(&wg, done)
	go server.Serve(&wg, done)

	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signaled
	log.Printf("received signal %d", sig)

	close(done)
	wg.Wait()
	log.Print("shutdown complete")

	return nil
}
