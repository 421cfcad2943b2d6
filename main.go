/*
Vulkan gears demo driven by device-generated commands. Reads an
optional vkgears.toml next to the binary's working directory and
applies classic vkgears-style command line overrides on top.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/vkgears/engine"
	"github.com/spaghettifunk/vkgears/engine/config"
)

func main() {
	cfg, err := config.Load("vkgears.toml")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.ApplyArgs(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, config.Usage())
		os.Exit(1)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		panic(err)
	}

	if err := eng.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = eng.Shutdown()
		os.Exit(0)
	}()

	// run engine
	if err := eng.Run(); err != nil {
		panic(err)
	}

	if err := eng.Shutdown(); err != nil {
		panic(err)
	}
}
