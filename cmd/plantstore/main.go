package main

import "verdant/internal/app"

func main() {
	app.Main(app.PlantStore)
}
