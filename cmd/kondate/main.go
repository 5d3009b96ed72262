package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/japaniel/kondate/pkg/cache"
	"github.com/japaniel/kondate/pkg/config"
	"github.com/japaniel/kondate/pkg/dictionary"
	"github.com/japaniel/kondate/pkg/menu"
	"github.com/japaniel/kondate/pkg/morph"
	"github.com/japaniel/kondate/pkg/server"
	"github.com/japaniel/kondate/pkg/translate"
)

type options struct {
	db         string
	importDict string
	text       string
	lang       string
	raw        bool
	url        string
	menu       string
	serve      bool
	addr       string
	debug      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.db, "db", "", "Path to SQLite database (overrides KONDATE_DB)")
	flag.StringVar(&opts.importDict, "import-dict", "", "Dictionary JSON file or URL to import")
	flag.StringVar(&opts.text, "text", "", "Japanese text to translate")
	flag.StringVar(&opts.lang, "lang", "en", "Target language: en or zh")
	flag.BoolVar(&opts.raw, "raw", false, "Translate without dictionary assist")
	flag.StringVar(&opts.url, "url", "", "URL of an HTML menu page to translate line by line")
	flag.StringVar(&opts.menu, "menu", "", "Restaurant id whose stored menu should be translated")
	flag.BoolVar(&opts.serve, "serve", false, "Run the HTTP API")
	flag.StringVar(&opts.addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	flag.BoolVar(&opts.debug, "debug", false, "Enable development logging")
	flag.Parse()

	logger, err := newLogger(opts.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("kondate failed", zap.Error(err))
		cancel()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, opts options, out io.Writer, logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.db != "" {
		cfg.DBPath = opts.db
	}
	if opts.addr != "" {
		cfg.HTTPAddr = opts.addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	be, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	if opts.importDict != "" {
		n, err := importDictionary(ctx, opts.importDict, be, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Imported %d dictionary entries.\n", n)
		return nil
	}

	tokenizer, err := morph.NewTokenizer(logger)
	if err != nil {
		return fmt.Errorf("create tokenizer: %w", err)
	}
	store := dictionary.NewStore(be.dict, dictionary.NewTTLCache(cfg.DictionaryTTL), logger)
	finder := dictionary.NewFinder(store, tokenizer)
	provider := newProvider(cfg)
	if provider == nil {
		logger.Warn("no translation provider configured, using the dictionary only")
	}
	translator := translate.New(finder, cache.New(be.cache, logger), provider, logger)
	topts := translate.Options{UseDictionary: !opts.raw}

	switch {
	case opts.text != "":
		resp, err := translator.Translate(ctx, opts.text, opts.lang, topts)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)

	case opts.url != "":
		return translatePage(ctx, opts.url, opts.lang, topts, translator, out)

	case opts.menu != "":
		summary, err := menu.NewBatchTranslator(be.menus, translator, logger).TranslateMenu(ctx, opts.menu, opts.lang)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Translated %d menu items into %s.\n", summary.Count, opts.lang)
		return nil

	case opts.serve:
		return serve(ctx, cfg, be, store, finder, tokenizer, translator, logger)
	}
	return errors.New("please provide -text, -url, -menu, -serve or -import-dict")
}

// importDictionary loads entries from a local file or URL and stores them.
func importDictionary(ctx context.Context, location string, be *backends, logger *zap.Logger) (int, error) {
	file := location
	if dictionary.IsRemote(location) {
		file = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(path.Base(location), ".gz"), ".tgz"), ".tar")
		if !strings.HasSuffix(file, ".json") {
			file += ".json"
		}
		if err := dictionary.Fetch(ctx, location, file, logger); err != nil {
			return 0, fmt.Errorf("download dictionary: %w", err)
		}
	}
	entries, err := dictionary.LoadJSON(file)
	if err != nil {
		return 0, fmt.Errorf("load dictionary: %w", err)
	}
	logger.Info("dictionary loaded", zap.String("file", file), zap.Int("entries", len(entries)))
	return be.upsert(ctx, entries)
}

func translatePage(ctx context.Context, rawURL, lang string, opts translate.Options, tr *translate.Translator, out io.Writer) error {
	page, err := menu.FetchPage(ctx, nil, rawURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Title: %s\n", page.Title)
	fmt.Fprintf(out, "Lines: %d\n", len(page.Lines))
	fmt.Fprintln(out, "---------------------------------------------------")

	var fallbacks int
	for _, line := range page.Lines {
		resp, err := tr.Translate(ctx, line, lang, opts)
		if err != nil {
			return err
		}
		if resp.Method == translate.MethodFallbackOriginal {
			fallbacks++
		}
		fmt.Fprintf(out, "%s\t%s\t[%s]\n", line, resp.TranslatedText, resp.Method)
	}
	fmt.Fprintf(out, "Processing complete. Translated %d lines (%d untranslated).\n", len(page.Lines), fallbacks)
	return nil
}

func serve(ctx context.Context, cfg config.Config, be *backends, store *dictionary.Store,
	finder *dictionary.Finder, tokenizer *morph.Tokenizer, tr *translate.Translator, logger *zap.Logger) error {
	if purger, ok := be.cache.(cache.Purger); ok {
		sweeper, err := cache.NewSweeper(purger, cfg.CacheSweepSchedule, logger)
		if err != nil {
			return fmt.Errorf("cache sweep schedule: %w", err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	if cfg.DictionaryFile != "" && !dictionary.IsRemote(cfg.DictionaryFile) {
		sink := func(ctx context.Context, entries []dictionary.Entry) error {
			_, err := be.upsert(ctx, entries)
			return err
		}
		w, err := dictionary.NewWatcher(cfg.DictionaryFile, sink, store, logger)
		if err != nil {
			return fmt.Errorf("watch dictionary: %w", err)
		}
		defer w.Close()
		if _, err := w.Reload(ctx); err != nil {
			logger.Warn("initial dictionary load failed", zap.Error(err))
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch dictionary: %w", err)
		}
	}

	router := server.NewRouter(server.Deps{
		Translator: tr,
		Menus:      menu.NewBatchTranslator(be.menus, tr, logger),
		Terms:      finder,
		Analyzer:   tokenizer,
		Logger:     logger,
	})
	return server.Run(ctx, cfg.HTTPAddr, router, logger)
}
