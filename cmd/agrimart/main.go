package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/croplink/agrimart/config"
	"github.com/croplink/agrimart/internal/adminapi"
	"github.com/croplink/agrimart/internal/app"
	"github.com/croplink/agrimart/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "/etc/agrimart.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

var version = "dev"

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		fmt.Println("agrimart", version)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	server := webserver.Init(cfg, application.DB())
	adminapi.Init(cfg, application.DB(), application.Bus(), application)

	if err := server.Listen(); err != nil {
		zap.L().Fatal("web server stopped", zap.Error(err))
	}
}
