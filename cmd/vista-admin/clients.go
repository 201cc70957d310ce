package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/vista-ui/internal/bootstrap"
	domainauth "github.com/target/vista-ui/internal/domain/auth"
	"github.com/target/vista-ui/internal/ports"
)

const clientCommandTimeout = 30 * time.Second

type clientOptions struct {
	ClientID string
	JSON     bool
	ShowAll  bool
	Yes      bool
}

func parseClientFlags(name string, args []string) (clientOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts clientOptions
	fs.StringVar(&opts.ClientID, "id", "", "Browser client id (value of the client cookie)")
	switch name {
	case "show-client":
		fs.BoolVar(&opts.JSON, "json", false, "Print entries as a JSON object")
		fs.BoolVar(&opts.ShowAll, "show-token", false, "Print the bearer token instead of masking it")
	case "clear-client":
		fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	}

	if err := fs.Parse(args); err != nil {
		return clientOptions{}, err
	}
	opts.ClientID = strings.TrimSpace(opts.ClientID)
	if opts.ClientID == "" {
		return clientOptions{}, errors.New("--id is required")
	}
	return opts, nil
}

// withStorage connects the configured storage driver and hands its admin view to fn.
func withStorage(cmdCtx *commandContext, fn func(ctx context.Context, admin ports.StorageAdmin) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, clientCommandTimeout)
	defer cancel()

	cfg := cmdCtx.Config
	cfg.Postgres.RunMigrationsOnStart = false
	infra, err := bootstrap.ConnectInfrastructure(ctx, &cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := infra.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("infrastructure close failed", "error", closeErr)
		}
	}()

	backend, err := bootstrap.NewStorageBackend(cfg.Storage, infra)
	if err != nil {
		return err
	}
	return fn(ctx, backend)
}

func runShowClient(cmdCtx *commandContext, args []string) error {
	opts, err := parseClientFlags("show-client", args)
	if err != nil {
		return err
	}
	return withStorage(cmdCtx, func(ctx context.Context, admin ports.StorageAdmin) error {
		return showClient(ctx, cmdCtx.Stdout, admin, opts)
	})
}

func showClient(ctx context.Context, w io.Writer, admin ports.StorageAdmin, opts clientOptions) error {
	entries, err := admin.Dump(ctx, opts.ClientID)
	if err != nil {
		return fmt.Errorf("dump client %s: %w", opts.ClientID, err)
	}
	if !opts.ShowAll {
		if tok, ok := entries[domainauth.KeyToken]; ok {
			entries[domainauth.KeyToken] = maskToken(tok)
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		return writef(w, "No entries stored for client %s.\n", opts.ClientID)
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "KEY\tVALUE\n"); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writef(tw, "%s\t%s\n", k, entries[k]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// maskToken keeps the first and last four characters of long tokens.
func maskToken(tok string) string {
	if len(tok) <= 8 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:4] + strings.Repeat("*", len(tok)-8) + tok[len(tok)-4:]
}

func runClearClient(cmdCtx *commandContext, args []string) error {
	opts, err := parseClientFlags("clear-client", args)
	if err != nil {
		return err
	}
	if err := confirmClear(cmdCtx.Stdin, cmdCtx.Stdout, opts); err != nil {
		return err
	}
	return withStorage(cmdCtx, func(ctx context.Context, admin ports.StorageAdmin) error {
		return clearClient(ctx, cmdCtx.Stdout, admin, opts)
	})
}

func clearClient(ctx context.Context, w io.Writer, admin ports.StorageAdmin, opts clientOptions) error {
	if err := admin.Purge(ctx, opts.ClientID); err != nil {
		return fmt.Errorf("purge client %s: %w", opts.ClientID, err)
	}
	return writef(w, "Cleared stored entries for client %s. The browser is signed out on its next request.\n", opts.ClientID)
}

func confirmClear(in io.Reader, out io.Writer, opts clientOptions) error {
	if opts.Yes {
		return nil
	}
	if err := writef(out, "About to clear stored session data for client %s.\nContinue? [y/N]: ", opts.ClientID); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}
