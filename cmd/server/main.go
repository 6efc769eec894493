// Command server runs only the HTTP API. Deployments that want migrations
// and seeding use cmd/crowdfork instead.
package main

import (
	"log"

	"github.com/crowdfork/crowdfork/internal/server"
)

func main() {
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
