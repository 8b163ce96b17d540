// Command idcheck validates resident identity numbers from the command line.
//
//	idcheck [-regions file.yaml|file.xlsx] [-reasons] [-no-future-check] [-min-year N] [-v] [ID ...]
//
// With no ID arguments, numbers are read one per line from stdin. The exit
// status is 1 when any number is invalid and 2 on a usage or load error.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"idverify/internal/identity/models"
	"idverify/internal/identity/service"
	"idverify/internal/platform/logger"
	"idverify/internal/region"
	"idverify/internal/region/source"
	"idverify/pkg/domain/residentid"
	"idverify/pkg/requestcontext"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, time.Now()))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, now time.Time) int {
	fs := flag.NewFlagSet("idcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	regionsPath := fs.String("regions", "", "region table file (.yaml, .yml or .xlsx); defaults to the bundled table")
	reasons := fs.Bool("reasons", false, "print why a number was rejected")
	noFuture := fs.Bool("no-future-check", false, "accept birth dates after today")
	minYear := fs.Int("min-year", residentid.DefaultMinBirthYear, "earliest accepted birth year")
	verbose := fs.Bool("v", false, "log region loading and rejection details to stderr")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.NewWriter(stderr, level, "text")

	holder, err := loadRegions(ctx, *regionsPath, log)
	if err != nil {
		fmt.Fprintln(stderr, "idcheck:", err)
		return exitUsage
	}

	svc, err := service.New(holder,
		service.WithLogger(log),
		service.WithPolicy(residentid.Policy{MinBirthYear: *minYear, RejectFutureDates: !*noFuture}),
	)
	if err != nil {
		fmt.Fprintln(stderr, "idcheck:", err)
		return exitUsage
	}

	ctx = requestcontext.WithTime(ctx, now)
	p := printer{w: stdout, reasons: *reasons, now: now}
	status := exitOK
	check := func(raw string) {
		result, err := svc.Verify(ctx, raw)
		if err != nil {
			fmt.Fprintf(stdout, "%q\t%v\n", raw, err)
			status = exitInvalid
			return
		}
		p.print(result)
		if !result.Valid {
			status = exitInvalid
		}
	}

	if fs.NArg() > 0 {
		for _, raw := range fs.Args() {
			check(raw)
		}
		return status
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		check(line)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(stderr, "idcheck: read stdin:", err)
		return exitUsage
	}
	return status
}

func loadRegions(ctx context.Context, path string, log *slog.Logger) (*region.Holder, error) {
	var src region.Source = source.NewEmbedded()
	if path != "" {
		var err error
		if src, err = source.FromPath(path); err != nil {
			return nil, err
		}
	}
	holder := region.NewHolder(nil)
	loader, err := region.NewLoader(src, holder, region.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if _, err := loader.Reload(ctx); err != nil {
		return nil, err
	}
	return holder, nil
}

type printer struct {
	w       io.Writer
	reasons bool
	now     time.Time
}

func (p printer) print(r *models.Result) {
	if !r.Valid {
		if p.reasons {
			fmt.Fprintf(p.w, "%s\t%s (%s)\n", r.Input, residentid.GenericMessage, r.Reason)
			return
		}
		fmt.Fprintf(p.w, "%s\t%s\n", r.Input, residentid.GenericMessage)
		return
	}

	d := r.Decoded
	place := strings.Join(nonEmpty(d.Region.Province, d.Region.Prefecture, d.Region.County), " ")
	fmt.Fprintf(p.w, "%s\tvalid\t%s\t%s\t%s\t%s\t%d\n",
		d.Number, d.RegionCode, place, d.BirthDate, d.Sex, d.AgeAt(p.now))
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
