package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/RishiKendai/winnow/internal/configs/env"
	"github.com/RishiKendai/winnow/internal/logger"
	"github.com/RishiKendai/winnow/internal/models"
	"github.com/RishiKendai/winnow/internal/plagiarism"
	"github.com/RishiKendai/winnow/internal/preprocess"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	k          int
	t          int
	hashSize   uint64
	lang       string
	otherLang  string
	highlight  bool
	maxBytes   int
	logLevel   string
	mainPath   string
	otherPaths []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: compare [flags] main-file other-file...")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.IntVar(&opts.k, "k", env.GetEnvInt("DEFAULT_K", 5), "noise threshold: k-gram length")
	fs.IntVar(&opts.t, "t", env.GetEnvInt("DEFAULT_T", 8), "guarantee threshold, at least k")
	fs.Uint64Var(&opts.hashSize, "hash-size", env.GetEnvUint64("HASH_SIZE", plagiarism.DefaultHashSize), "hash modulus")
	fs.StringVar(&opts.lang, "lang", "txt", "language of the main file: txt, c, cpp, java, python, matlab")
	fs.StringVar(&opts.otherLang, "other-lang", "", "language of the other files (defaults to -lang)")
	fs.BoolVar(&opts.highlight, "highlight", false, "print both texts with matched regions marked")
	fs.IntVar(&opts.maxBytes, "max-bytes", env.GetEnvInt("MAX_DOCUMENT_BYTES", 1<<20), "reject files larger than this; 0 disables")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return nil, fmt.Errorf("need a main file and at least one file to compare against")
	}
	if opts.otherLang == "" {
		opts.otherLang = opts.lang
	}
	opts.mainPath = fs.Arg(0)
	opts.otherPaths = fs.Args()[1:]
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	logger.Init(opts.logLevel, "console")

	if err := compare(ctx, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "compare: %v\n", err)
		log.Debug().Err(err).Msg("Comparison failed")
		return 1
	}
	return 0
}

func compare(ctx context.Context, opts *options, stdout io.Writer) error {
	params := plagiarism.Params{K: opts.k, T: opts.t, HashSize: opts.hashSize}
	if err := params.Validate(); err != nil {
		return err
	}

	paths := append([]string{opts.mainPath}, opts.otherPaths...)
	docs, err := loadDocuments(ctx, preprocess.NewService(opts.maxBytes), paths, opts.lang, opts.otherLang)
	if err != nil {
		return err
	}

	pool := plagiarism.NewWorkerPool(ctx, 0)
	defer pool.Close()
	engine := plagiarism.NewEngine(nil, pool)

	results, err := engine.CompareMany(ctx, docs[0], docs[1:], params)
	if err != nil {
		return err
	}

	return printResults(stdout, docs, results, params.K, opts.highlight)
}

// loadDocuments reads and preprocesses paths concurrently. The first path
// uses mainLang, the rest otherLang.
func loadDocuments(ctx context.Context, pre *preprocess.Service, paths []string, mainLang, otherLang string) ([]models.Document, error) {
	docs := make([]models.Document, len(paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, path := range paths {
		lang := otherLang
		if i == 0 {
			lang = mainLang
		}
		g.Go(func() error {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			doc, err := pre.PrepareBytes(path, lang, raw)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func printResults(w io.Writer, docs []models.Document, results []models.PairResult, k int, highlight bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "FILE\tMAIN\tOTHER\tOVERALL\tSHARED\tRISK\n")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%d\t%s\n",
			r.Name, r.MainScore, r.OtherScore, r.Overall, r.SharedHashes, r.Risk)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !highlight {
		return nil
	}
	mainDoc := docs[0]
	for i, r := range results {
		if len(r.MainMatches) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n== %s vs %s ==\n", mainDoc.Name, r.Name)
		fmt.Fprintf(w, "%s\n", plagiarism.Highlight(mainDoc.Content, r.MainMatches, k))
		fmt.Fprintf(w, "-- %s --\n", r.Name)
		fmt.Fprintf(w, "%s\n", plagiarism.Highlight(docs[i+1].Content, r.OtherMatches, k))
	}
	return nil
}
