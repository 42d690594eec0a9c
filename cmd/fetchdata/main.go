package main

import (
	"flag"
	"log"
	"os"

	get "github.com/hashicorp/go-getter"
)

func main() {
	var (
		src = flag.String("src", "git::https://github.com/dxomg/ViaRewind.git//data", "go-getter source of the mapping data")
		out = flag.String("o", "./data", "output dir path")
	)
	flag.Parse()

	if *out == "" {
		panic("output dir path required")
	}

	if *src == "" {
		panic("source url required")
	}

	if err := os.RemoveAll(*out); err != nil {
		panic(err)
	}

	log.Default().Printf("start downloading mapping data %s", *out)

	if err := get.Get(*out, *src); err != nil {
		panic(err)
	}

	log.Default().Printf("done downloading mapping data %s", *out)
}
