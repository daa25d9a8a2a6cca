package main

import "cinematch/backend/cmd/server"

func main() {
	server.NewServer().Run()
}
