package main

import (
	"github.com/shouni/go-fetch-bench/cmd"
)

func main() {
	cmd.Execute()
}
