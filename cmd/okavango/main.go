// Command okavango fetches the environmental datasets, joins them with the
// world boundary table and serves the interactive dashboard.
//
// Usage:
//
//	okavango [-data-dir downloads] [-listen :8080] [-export atlas.xlsx]
//
// The atlas is built once at startup; every dataset is re-downloaded on each
// run. With -export the joined tables are also written to an XLSX workbook.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectokavango/okavango"
)

func main() {
	dataDir := flag.String("data-dir", "downloads", "directory for downloaded datasets")
	listen := flag.String("listen", ":8080", "dashboard listen address")
	export := flag.String("export", "", "also write the joined tables to this XLSX file")
	flag.Parse()

	atlas, err := okavango.NewAtlas(okavango.WithDataDir(*dataDir))
	if err != nil {
		slog.Error("building atlas failed", "error", err)
		os.Exit(1)
	}

	if *export != "" {
		if err := okavango.ExportWorkbook(atlas.Tables(), *export); err != nil {
			slog.Error("workbook export failed", "error", err)
			os.Exit(1)
		}
		slog.Info("workbook written", "path", *export)
	}

	server := http.Server{
		Handler: okavango.NewDashboard(atlas),
		Addr:    *listen,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		server.Close()
	}()

	slog.Info("listening", "addr", *listen)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("server closed", "error", err)
	} else {
		slog.Info("server closed")
	}
}
