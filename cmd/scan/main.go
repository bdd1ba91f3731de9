package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"
)

var (
	duration = flag.Duration("d", 5*time.Second, "scan `duration`")
	all      = flag.Bool("a", false, "show all advertisers")
)

func main() {
	flag.Parse()
	d, err := linux.NewDevice()
	if err != nil {
		log.Fatalf("can't open BLE adapter: %v", err)
	}
	ble.SetDefaultDevice(d)
	ctx := ble.WithSigHandler(context.WithTimeout(context.Background(), *duration))
	err = ble.Scan(ctx, false, report, isBluefruit)
	switch errors.Cause(err) {
	case nil, context.DeadlineExceeded, context.Canceled:
	default:
		log.Fatal(err)
	}
}

func isBluefruit(a ble.Advertisement) bool {
	return *all || strings.HasPrefix(a.LocalName(), "Bluefruit")
}

func report(a ble.Advertisement) {
	fmt.Printf("%s %4d dBm %s\n", a.Addr(), a.RSSI(), a.LocalName())
}
