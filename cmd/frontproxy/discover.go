package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesprial/frontproxy/internal/upstream"
	"github.com/jamesprial/frontproxy/pkg/api"
)

var errNothingConfirmed = errors.New("no candidate path confirmed")

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Probe the backend for its identity and username lookup paths",
	Long:  "Runs the endpoint probers over every candidate path and prints which ones answer, so a deployment can pin BACKEND_IDENTITY_PATH and BACKEND_USERNAME_LOOKUP_PATH.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(os.Stderr, cfg.SlogLevel())
		backend, err := newBackend(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create upstream client: %w", err)
		}

		opts := discoverOptions{
			IdentityTimeout: cfg.IdentityTimeout,
		}
		opts.Username, _ = cmd.Flags().GetString("username")
		opts.Token, _ = cmd.Flags().GetString("token")
		if opts.Token == "" {
			opts.Token = os.Getenv("FRONTPROXY_TOKEN")
		}

		return runDiscover(cmd.Context(), backend, opts, cmd.OutOrStdout())
	},
}

func init() {
	discoverCmd.Flags().String("username", "", "known username to look up")
	discoverCmd.Flags().String("token", "", "bearer token for identity probing (default $FRONTPROXY_TOKEN)")
	rootCmd.AddCommand(discoverCmd)
}

type discoverOptions struct {
	Username        string
	Token           string
	IdentityTimeout time.Duration
}

// runDiscover probes the full candidate lists and reports the deciding path
// of each. It fails when no prober confirmed anything.
func runDiscover(ctx context.Context, backend upstream.Backend, opts discoverOptions, out io.Writer) error {
	confirmed := 0

	header := make(http.Header)
	if opts.Token != "" {
		header.Set(api.HeaderAuthorization, api.BearerToken+" "+strings.TrimSpace(strings.TrimPrefix(opts.Token, api.BearerToken)))
	}
	identity := backend.Probe(ctx, upstream.ProbeSpec{
		Method:   http.MethodGet,
		Paths:    upstream.IdentityPaths,
		Header:   header,
		Timeout:  opts.IdentityTimeout,
		Classify: upstream.ClassifyWith(upstream.AnyPayload),
	})
	report(out, "identity", identity)
	if identity.Confirmed() {
		confirmed++
		fmt.Fprintf(out, "  pin with BACKEND_IDENTITY_PATH=%s\n", identity.Path)
	}

	if opts.Username != "" {
		lookup := backend.Probe(ctx, upstream.ProbeSpec{
			Method:   http.MethodGet,
			Paths:    upstream.UsernameQuery(upstream.UsernameLookupPaths, opts.Username),
			Timeout:  opts.IdentityTimeout,
			Classify: upstream.ClassifyWith(upstream.UsernameExists(opts.Username)),
		})
		report(out, "username lookup", lookup)
		if lookup.Confirmed() {
			confirmed++
			prefix := strings.TrimSuffix(lookup.Path, upstream.EncodeURIComponent(opts.Username))
			fmt.Fprintf(out, "  pin with BACKEND_USERNAME_LOOKUP_PATH=%s\n", prefix)
		}
	}

	if confirmed == 0 {
		return errNothingConfirmed
	}
	return nil
}

func report(out io.Writer, name string, res upstream.ProbeResult) {
	switch {
	case res.Unreachable():
		fmt.Fprintf(out, "%s: unreachable (%v)\n", name, res.Err())
	case res.Response != nil:
		fmt.Fprintf(out, "%s: %s %s (%d)\n", name, res.Verdict, res.Path, res.Response.StatusCode)
	default:
		fmt.Fprintf(out, "%s: %s\n", name, res.Verdict)
	}
	fmt.Fprintf(out, "  tried: %s\n", strings.Join(res.Tried, ", "))
	if res.TransportFailures > 0 && !res.Unreachable() {
		fmt.Fprintf(out, "  unreachable paths: %d\n", res.TransportFailures)
	}
}
