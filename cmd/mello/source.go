package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gwillem/mello/pkg/robot"
	"github.com/gwillem/mello/pkg/teleop"
)

// SourceOptions selects where poses come from; shared by monitor and bridge.
type SourceOptions struct {
	Port  string `long:"port" description:"Serial port of the Mello (default from config)"`
	Baud  int    `long:"baud" description:"Baud rate (default from config)"`
	Dummy bool   `long:"dummy" description:"Use a fixed home pose instead of hardware"`
}

func (o SourceOptions) open(cfg *robot.Config) (teleop.Source, error) {
	if o.Dummy {
		return teleop.NewDummy(), nil
	}

	port := cfg.Host.Port
	if o.Port != "" {
		port = o.Port
	}
	baud := cfg.Host.Baud
	if o.Baud != 0 {
		baud = o.Baud
	}
	if port == "" {
		return nil, fmt.Errorf("no Mello port configured; run 'mello setup' or pass --port")
	}

	return teleop.NewReader(teleop.Config{Port: port, Baud: baud})
}

type logSource interface {
	Logs() <-chan string
}

// forwardLogs copies source log messages to the standard logger until ctx is done.
func forwardLogs(ctx context.Context, src teleop.Source) {
	ls, ok := src.(logSource)
	if !ok {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ls.Logs():
				log.Println(msg)
			}
		}
	}()
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
