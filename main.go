package main

import "github.com/gilchrisn/purchase-graph-clustering/pkg/cli"

func main() {
	cli.Execute()
}
