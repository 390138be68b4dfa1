package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/saeidalz13/battleship-solo/api"
	"github.com/saeidalz13/battleship-solo/db"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

func main() {
	if os.Getenv("STAGE") != "prod" {
		if err := godotenv.Load(".env"); err != nil {
			panic(err)
		}
	}
	stage := os.Getenv("STAGE")
	if stage != "dev" && stage != "prod" {
		panic("stage must be either dev or prod")
	}

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		panic(err)
	}

	// analytics stay off without a database
	var querier sqlc.Querier
	if psqlUrl := os.Getenv("DATABASE_URL"); psqlUrl != "" {
		sqlDb := db.MustConnectToDb(psqlUrl, db.DefaultMigrationSource)
		defer sqlDb.Close()
		querier = sqlc.New(sqlDb)
	} else {
		log.Println("DATABASE_URL is empty; analytics disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bsm := mc.NewBattleshipSessionManager()
	go bsm.CleanupPeriodically(ctx)

	bgm := mb.NewBattleshipGameManager()
	rp := api.NewRequestProcessor(bsm, bgm, querier)

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)

	log.Printf("Listening to port %d (stage: %s)\n", port, stage)
	log.Fatalln(http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux))
}
