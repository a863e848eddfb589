package main

import (
	"errors"
	"log"
	"os"
)

func run() error {
	return errors.New("failed")
}

func fail() {
	os.Exit(2)
}

func main() {
	if err := run(); err != nil {
		os.Exit(1) // want "прямой вызов os.Exit в функции main запрещен"
	}
	log.Fatal("stop") // want "прямой вызов log.Fatal в функции main запрещен"

	defer func() {
		os.Exit(0)
	}()
	fail()
}
