package main

import (
	"errors"
	"os"
)

func execute() int {
	defer func() {}()
	if err := errors.New("failed"); err != nil {
		return 1
	}
	return 0
}

func main() {
	go func() {
		defer func() {}()
	}()
	os.Exit(execute())
}
