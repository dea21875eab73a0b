package main

import "github.com/tempusbreve/cloudflare-dns-bot/cmd"

func main() {
	cmd.Execute()
}
