package main

import "github.com/daichitakahashi/waitevent/cmd/viewjournal/app"

func main() {
	app.Run()
}
