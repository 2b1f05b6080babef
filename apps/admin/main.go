package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/kipimo/core"
	archivesvc "github.com/trezcool/kipimo/services/archive"
	emailsvc "github.com/trezcool/kipimo/services/email"
	logsvc "github.com/trezcool/kipimo/services/logger"
	"github.com/trezcool/kipimo/storage/database"
	sqlxrepos "github.com/trezcool/kipimo/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer db.Close()

	mailSvc := emailsvc.NewService(conf, logger)
	archiver, err := archivesvc.NewArchiver(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up report archive: %v", err), err)
	}
	if err = core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	// start CLI
	cli := newCommandLine(conf, db, logger, mailSvc, archiver,
		sqlxrepos.NewDistrictRepository(db),
		sqlxrepos.NewGoalRepository(db),
		sqlxrepos.NewMetricRepository(db),
	)
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		db.Close()
		os.Exit(1)
	}
}
