package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"shloka/internal/assemble"
	"shloka/internal/catalog"
	"shloka/internal/config"
	"shloka/internal/fetch"
	"shloka/internal/prefs"
	"shloka/internal/render"
	"shloka/internal/route"
	"shloka/internal/session"
	"shloka/internal/verse"
)

const historyFile = ".shloka_history"

func main() {
	cfg := config.Get()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05", ForceColors: true})
	if cfg.CLI.Debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel) // не мешаем интерактивной сессии
	}

	store, err := prefs.Open(cfg.Prefs.DBPath)
	if err != nil {
		log.WithError(err).Warn("prefs unavailable, favorites will not persist")
		store = nil
	}

	var fetcher fetch.Fetcher
	if cfg.Library.DataDir != "" {
		fetcher = fetch.NewDir(cfg.Library.DataDir, cfg.Library.PathPattern)
	} else {
		fetcher = fetch.NewHTTP(cfg.Library.BaseURL, cfg.Library.PathPattern, cfg.Fetch.Timeout(), log)
	}

	bar := progressbar.NewOptions(cfg.Library.VerseCount,
		progressbar.OptionSetDescription("Loading verses"),
		progressbar.OptionClearOnFinish(),
	)
	verses, err := assemble.Build(context.Background(), fetcher, cfg.Library.VerseCount, assemble.Options{
		Threads:       cfg.Fetch.Threads,
		RatePerSecond: cfg.Fetch.RatePerSecond,
		OnFetched:     func(int) { _ = bar.Add(1) },
		Log:           log,
	})
	if err != nil {
		// одна неудачная загрузка фатальна для всей сессии
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	var cat *catalog.Store
	var themes session.ThemeStore
	if store != nil {
		defer store.Close()
		cat = catalog.New(verses, store, log)
		themes = store
	} else {
		cat = catalog.New(verses, nil, log)
	}
	sess := session.New(cat, themes, cfg.CLI.PageSize, log)

	// Одноразовый режим: аргументы = поисковый запрос
	if len(os.Args) > 1 {
		printPlan(sess.SetSearch(strings.Join(os.Args[1:], " ")), cat)
		return
	}

	runShell(sess, cat)
}

func runShell(sess *session.Session, cat *catalog.Store) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("Shloka Interactive Shell — %d verses loaded. Type 'help' for commands.\n\n", cat.Len())
	printPlan(sess.Refresh(), cat)

	for {
		input, err := line.Prompt("shloka> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == "exit" || input == "quit" {
			return
		}
		execute(sess, cat, input)
	}
}

func execute(sess *session.Session, cat *catalog.Store, input string) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "help":
		printHelp()
	case "search", "s":
		if arg == "" {
			fmt.Println("Usage: search <term>")
			return
		}
		printPlan(sess.SetSearch(arg), cat)
	case "clear":
		printPlan(sess.SetSearch(""), cat)
	case "more", "m":
		plan, ok := sess.LoadMore()
		if !ok {
			if sess.Query().Searching() {
				fmt.Println("Search shows everything at once; 'clear' first.")
			}
			return
		}
		printPlan(plan, cat)
		sess.RenderComplete()
	case "favs":
		on := !sess.Query().FavoritesOnly
		if arg == "on" {
			on = true
		} else if arg == "off" {
			on = false
		}
		printPlan(sess.SetFavoritesOnly(on), cat)
	case "fav":
		id, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Println("Usage: fav <verse id>")
			return
		}
		fav, err := sess.ToggleFavorite(id)
		if err != nil {
			fmt.Printf("Could not save favorites: %v\n", err)
			return
		}
		if fav {
			fmt.Printf("♥ Verse %d added to favorites.\n", id)
		} else {
			fmt.Printf("Verse %d removed from favorites.\n", id)
		}
	case "show":
		id, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Println("Usage: show <verse id>")
			return
		}
		showVerse(sess, id)
	case "go":
		rt, err := route.Parse(arg)
		if err != nil {
			fmt.Printf("%v\n", err)
			return
		}
		v := sess.Navigate(rt)
		switch {
		case v.NotFound:
			fmt.Printf("Verse %d not found.\n", v.VerseID)
		case v.Verse != nil:
			printVerse(*v.Verse, sess.Catalog().IsFavorite(v.Verse.ID))
		default:
			printPlan(v.Plan, cat)
		}
	case "theme":
		if arg == "" {
			theme := sess.Theme()
			if theme == "" {
				theme = "(platform default)"
			}
			fmt.Printf("Theme: %s\n", theme)
			return
		}
		if err := sess.SetTheme(arg); err != nil {
			fmt.Printf("Could not save theme: %v\n", err)
			return
		}
		fmt.Printf("Theme set to %s.\n", arg)
	default:
		fmt.Printf("Unknown command %q. Type 'help'.\n", cmd)
	}
}

func showVerse(sess *session.Session, id int) {
	v := sess.Navigate(route.Route{Kind: route.Verse, VerseID: id})
	if v.NotFound {
		fmt.Printf("Verse %d not found.\n", id)
		return
	}
	printVerse(*v.Verse, sess.Catalog().IsFavorite(id))
}

func printPlan(plan render.Plan, cat *catalog.Store) {
	if plan.Mode == render.FullReplace {
		if len(plan.Items) == 0 {
			fmt.Println("No results found.")
			return
		}
		fmt.Printf("%-4s | %-12s | %-3s | %s\n", "ID", "Chapter", "Fav", "Translation")
		fmt.Println(strings.Repeat("-", 72))
	}
	for _, v := range plan.Items {
		fav := " "
		if cat.IsFavorite(v.ID) {
			fav = "♥"
		}
		fmt.Printf("%-4d | %-12s | %-3s | %s\n", v.ID, truncate(v.Chapter, 12), fav, truncate(firstTranslation(v), 48))
	}
	if plan.ShowLoadMore {
		fmt.Println("-- more available: type 'more' --")
	}
	if plan.ShowEndMarker {
		fmt.Println("-- you have reached the end --")
	}
}

func printVerse(v verse.Verse, fav bool) {
	mark := ""
	if fav {
		mark = " ♥"
	}
	fmt.Printf("\nVerse %d — %s%s\n", v.ID, v.Chapter, mark)
	fmt.Println(strings.Repeat("-", 40))
	for _, l := range v.Lines {
		fmt.Println(l.Text)
		fmt.Println(l.Transliteration)
		fmt.Println(l.Translation)
		fmt.Println()
	}
}

func firstTranslation(v verse.Verse) string {
	if len(v.Lines) == 0 {
		return ""
	}
	return v.Lines[0].Translation
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printHelp() {
	fmt.Print(`Commands:
  search <term>    filter verses (text, chapter or id; case-insensitive)
  clear            drop the search term
  more             load the next page
  favs [on|off]    switch the favorites-only view
  fav <id>         toggle a verse's favorite mark
  show <id>        print a single verse in full
  go <route>       navigate: "/", "/favorites", "/verse/12"
  theme [name]     show or set the theme
  exit             leave the shell
`)
}
