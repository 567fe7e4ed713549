package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/config"
	"f1lapcompare/pkg/export"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/provider"
	"f1lapcompare/pkg/report"
	"f1lapcompare/pkg/resources"
	"f1lapcompare/pkg/webserver"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const cachePurgeEvery = 60 * time.Minute

func main() {
	defaults := model.DefaultRequest()
	configPath := flag.String("config", "", "YAML configuration file")
	oneShot := flag.Bool("compare", false, "run a single comparison, print it and exit")
	year := flag.Int("year", defaults.Year, "season year")
	grandPrix := flag.String("gp", defaults.GrandPrix, "grand prix name")
	session := flag.String("session", string(defaults.Session), "session (FP1, FP2, FP3, Q, R)")
	driver1 := flag.String("driver1", defaults.Driver1, "first driver code")
	driver2 := flag.String("driver2", defaults.Driver2, "second driver code")
	out := flag.String("out", "", "write the comparison to a .png, .svg or .xlsx file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("loading configuration")
	}
	level, _ := logrus.ParseLevel(conf.Log.Level)
	logrus.SetLevel(level)

	cache, err := resources.NewCache(conf.Provider.CacheDir, conf.Provider.CacheTTL, &http.Client{Timeout: conf.Provider.Timeout})
	if err != nil {
		logrus.WithError(err).Fatal("creating response cache")
	}
	service := compare.NewService(provider.NewOpenF1(conf.Provider.URL, cache))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *oneShot {
		kind, err := model.ParseSessionKind(*session)
		if err != nil {
			logrus.WithError(err).Fatal("parsing session")
		}
		req := model.Request{Year: *year, GrandPrix: *grandPrix, Session: kind, Driver1: *driver1, Driver2: *driver2}
		if err := runOnce(ctx, service, req, *out, conf.ChartOptions()); err != nil {
			logrus.WithError(err).Fatal("comparison failed")
		}
		return
	}

	exitChan := make(chan bool)
	ticker := time.NewTicker(cachePurgeEvery)
	cache.Sync(ticker, exitChan)

	var wg sync.WaitGroup
	web := webserver.NewManager(conf.Webserver.Address, service, conf.ChartOptions())
	if conf.Log.Level == "debug" {
		web.Debug()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := web.Serve(ctx); err != nil {
			logrus.WithError(err).Error("webserver stopped")
			cancel()
		}
	}()

	if conf.Telegram.Token != "" {
		closeBot, err := startBot(ctx, conf, service)
		if err != nil {
			logrus.WithError(err).Fatal("starting telegram bot")
		}
		defer closeBot()
	} else {
		logrus.Warn("TELEGRAM_TOKEN is not set, running only the webserver")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// lock the main thread until we receive a signal or the webserver dies
	select {
	case <-sigs:
	case <-ctx.Done():
	}

	ticker.Stop()
	close(exitChan)
	cancel()
	wg.Wait()
}

// runOnce prints the summary table of a single comparison and optionally writes it to out.
func runOnce(ctx context.Context, service *compare.Service, req model.Request, out string, opts chart.Options) error {
	cmp, err := service.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(report.SummaryTable(cmp))
	if out == "" {
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "creating %s", out)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(out)) {
	case ".svg":
		err = chart.RenderSVG(f, cmp, opts)
	case ".xlsx":
		err = export.WriteXLSX(f, cmp)
	default:
		err = chart.RenderPNG(f, cmp, opts)
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", out)
	}
	logrus.Infof("comparison written to %s", out)
	return nil
}
