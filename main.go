package main

import "github.com/saadjs/kcal-planner/cmd/kcal"

func main() {
	kcal.Execute()
}
