// cmd/adduser/main.go
// Creates a user in the database through the same statements the API uses.
//
// Usage:
//
//	go run ./cmd/adduser -username alice -first-name Alice -last-name A -pwd x
//
// Pass -init to create the users table first.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/padraicbc/usersapi/apperr"
	"github.com/padraicbc/usersapi/config"
	bundb "github.com/padraicbc/usersapi/db"
	applog "github.com/padraicbc/usersapi/logger"
	"github.com/padraicbc/usersapi/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	pwd := flag.String("pwd", "", "password, stored as given (required)")
	initSchema := flag.Bool("init", false, "create the users table if it does not exist")
	flag.Parse()

	if *username == "" || *pwd == "" {
		log.Fatal("both -username and -pwd are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := bundb.Setup(ctx, cfg)
	if err != nil {
		logger.Fatal("database setup failed", zap.Error(err))
	}
	defer db.Close()

	if *initSchema {
		if err := bundb.CreateTables(ctx, db); err != nil {
			logger.Fatal("create tables failed", zap.Error(err))
		}
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		logger.Fatal("acquire connection failed", zap.Error(apperr.Pool(err)))
	}
	defer conn.Close()

	user, err := bundb.AddUser(ctx, conn.Conn, models.User{
		Username:  *username,
		FirstName: *firstName,
		LastName:  *lastName,
		Pwd:       *pwd,
	})
	if apperr.IsUniqueViolation(err) {
		logger.Fatal("user already exists", zap.String("username", *username))
	}
	if err != nil {
		logger.Fatal("insert user failed", zap.Error(err))
	}

	fmt.Printf("user %q saved\n", user.Username)
}
