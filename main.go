package main

import (
	"cadenza/cmd"
	"cadenza/config"
	"cadenza/source"
	"cadenza/storage"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
)

func main() {
	asciiArt := `
  ____          _
 / ___|__ _  __| | ___ _ __  ______ _
| |   / _` + "`" + ` |/ _` + "`" + ` |/ _ \ '_ \|_  / _` + "`" + ` |
| |__| (_| | (_| |  __/ | | |/ / (_| |
 \____\__,_|\__,_|\___|_| |_/___\__,_|
`

	var (
		path   string
		ext    string
		filter string
		list   bool
		count  bool
		play   int
		server bool
		port   int
	)

	flag.StringVar(&path, "path", "", "Library directory (default: configured library location)")
	flag.StringVar(&ext, "ext", config.DefaultExtension, "File extension suffix to accept (empty accepts all)")
	flag.StringVar(&filter, "filter", config.DefaultFilter, "Glob pattern file names must match, e.g. \"*Bob*\"")
	flag.BoolVar(&list, "list", false, "List all qualifying tracks in playback order")
	flag.BoolVar(&count, "count", false, "Count qualifying tracks (walks the whole tree)")
	flag.IntVar(&play, "play", -1, "Stream the track at this position to stdout")
	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8080, "Port for web server mode")
	flag.Parse()

	// Server mode takes precedence
	if server {
		cmd.StartWebServer(port)
		return
	}

	if !list && !count && play < 0 {
		flag.Usage()
		return
	}

	if path == "" {
		path = config.GetLibraryLocation()
	}

	src := source.NewSource(storage.NewDirFS(path), "/", ext)
	src.SetFilter(filter)
	if err := src.Begin(); err != nil {
		log.Fatalf("Cannot open library %s: %s", path, err)
	}
	defer src.End()

	switch {
	case list:
		fmt.Fprintln(os.Stderr, asciiArt)
		ordinal := 0
		src.Walk(func(p string) bool {
			fmt.Printf("%4d  %s\n", ordinal, p)
			ordinal++
			return true
		})

	case count:
		fmt.Fprintln(os.Stderr, asciiArt)
		// Counting re-walks the entire tree; the spinner is the warning.
		bar := progressbar.Default(-1, "Scanning library")
		n := 0
		src.Walk(func(string) bool {
			n++
			bar.Add(1)
			return true
		})
		bar.Finish()
		fmt.Printf("\n%d tracks\n", n)

	case play >= 0:
		stream, err := src.SelectIndex(play)
		if err != nil {
			log.Fatalf("Cannot select track %d: %s", play, err)
		}
		log.Printf("Streaming %s", src.FileName())
		if _, err := io.Copy(os.Stdout, stream); err != nil {
			log.Fatalf("Stream error: %s", err)
		}
	}
}
