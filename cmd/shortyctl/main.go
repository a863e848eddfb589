// Command shortyctl реализует консольный клиент сервиса коротких ссылок.
//
// Примеры:
//
//	shortyctl login -e ann@example.com -p secret
//	shortyctl create https://example.com/very/long/url
//	shortyctl list
//	shortyctl check abc1234
//	shortyctl analytics abc1234
//	shortyctl --demo shell
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(execute())
}

// execute запускает команду и возвращает код выхода после всех отложенных вызовов
func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
