package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"chatter/cache"
	"chatter/crud"
	"chatter/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load a .env file if present, then the config. Environment variables
	// win over .config.json values.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on config file and environment")
	}
	config := LoadConfig(*productionBool)

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithOAuth(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithLike(),
		crud.WithBookmark(),
		crud.WithFeed(),
		crud.WithImage(),
	)
	must(err)

	// Create a small cache for public feed pages.
	pageCache, err := cache.New(config.CacheSize)
	must(err)

	// Create an oauth config object for doing oauth with Github.
	githubOAuth := &oauth2.Config{
		ClientID:     config.Github.ID,
		ClientSecret: config.Github.Secret,
		RedirectURL:  config.Github.RedirectURL,
		Endpoint:     github.Endpoint,
	}

	// Set up a webserver.
	server := http.NewServer(config.IsProd(), config.ClientURL, config.CSRFKey, githubOAuth, services, pageCache)

	// Serve the app.
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
