package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matchwire-dev/matchwire/pkg/api"
	"github.com/matchwire-dev/matchwire/pkg/client"
	"github.com/matchwire-dev/matchwire/pkg/summary"
)

const replHelp = `Commands:
  login <user> <password>          log in to the broker
  join <game>                      subscribe to a game topic (e.g. teamX_teamY)
  exit <game>                      unsubscribe from a game topic
  report <events.json>             report events from a JSON source file
  summary <game> <user> <dest>     write a summary of <user>'s reports for <game>
  logout                           disconnect cleanly
  quit                             log out if needed and leave`

func runCmd() *cobra.Command {
	var (
		addr          string
		wsURL         string
		vhost         string
		statsAddr     string
		s3Bucket      string
		s3Prefix      string
		s3Region      string
		logoutTimeout time.Duration
		keepOnError   bool
		debug         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive client",
		Long: `Connect to a broker and read commands from stdin.

By default summaries are written to local files; with --s3-bucket they are
uploaded to S3 instead. With --stats a local HTTP server exposes Prometheus
metrics and aggregate snapshots.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			var transport client.Transport
			if wsURL != "" {
				transport = client.NewWSTransport(wsURL)
			} else {
				transport = client.NewTCPTransport(addr)
			}

			config := client.DefaultConfig().
				WithVHost(vhost).
				WithLogoutTimeout(logoutTimeout).
				WithDisconnectOnError(!keepOnError).
				WithDebug(debug)

			cli := client.New(transport, config, logger).WithMetrics(client.NewMetrics())

			if statsAddr != "" {
				stats := api.New(statsAddr, cli, logger)
				go func() {
					if err := stats.Start(); err != nil {
						logger.Error("stats server failed", "error", err)
					}
				}()
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					stats.Shutdown(ctx)
				}()
			}

			var store summary.Store
			if s3Bucket != "" {
				s3c, err := summary.NewS3Client(cmd.Context(), s3Region)
				if err != nil {
					return err
				}
				store = summary.NewS3Store(s3c, s3Bucket, s3Prefix)
			} else {
				store = summary.NewFileStore()
			}

			return repl(cmd.Context(), cli, store)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:7777", "Broker TCP address (host:port)")
	cmd.Flags().StringVar(&wsURL, "ws", "", "Broker WebSocket URL (overrides --addr)")
	cmd.Flags().StringVar(&vhost, "vhost", "matchwire", "Virtual host for the CONNECT frame")
	cmd.Flags().StringVar(&statsAddr, "stats", "", "Local stats server address (e.g. :9090), disabled when empty")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "Write summaries to this S3 bucket instead of local files")
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "", "Key prefix for S3 summaries")
	cmd.Flags().StringVar(&s3Region, "s3-region", "", "AWS region for S3 summaries")
	cmd.Flags().DurationVar(&logoutTimeout, "logout-timeout", 3*time.Second, "How long to wait for the disconnect receipt")
	cmd.Flags().BoolVar(&keepOnError, "keep-on-error", false, "Keep the connection alive through broker ERROR frames")
	cmd.Flags().BoolVar(&debug, "debug", false, "Verbose frame logging")

	return cmd
}

// repl reads commands from stdin and dispatches them one at a time until
// quit or EOF. Command errors are reported and the loop continues; only the
// user leaves the loop.
func repl(ctx context.Context, cli *client.Client, store summary.Store) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		words := strings.Fields(scanner.Text())
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "login":
			if len(words) < 3 {
				fmt.Println("usage: login <user> <password>")
				continue
			}
			report(cli.Login(ctx, words[1], words[2]))

		case "join":
			if len(words) < 2 {
				fmt.Println("usage: join <game>")
				continue
			}
			if report(cli.Join(ctx, words[1])) {
				fmt.Printf("Joined game %s\n", words[1])
			}

		case "exit":
			if len(words) < 2 {
				fmt.Println("usage: exit <game>")
				continue
			}
			if report(cli.Exit(ctx, words[1])) {
				fmt.Printf("Exited game %s\n", words[1])
			}

		case "report":
			if len(words) < 2 {
				fmt.Println("usage: report <events.json>")
				continue
			}
			if report(cli.Report(ctx, words[1])) {
				fmt.Println("Report sent")
			}

		case "summary":
			if len(words) < 4 {
				fmt.Println("usage: summary <game> <user> <dest>")
				continue
			}
			if !cli.LoggedIn() {
				fmt.Println("Not logged in")
				continue
			}
			game, user, dest := words[1], words[2], words[3]
			// An unseen pair renders the empty default aggregate.
			state, _ := cli.SnapshotGame(game, user)
			if report(store.Write(ctx, dest, summary.Render(game, state))) {
				fmt.Println("Summary created")
			}

		case "logout":
			report(cli.Logout(ctx))

		case "quit":
			if cli.LoggedIn() {
				report(cli.Logout(ctx))
			}
			cli.Close()
			return nil

		case "help":
			fmt.Println(replHelp)

		default:
			fmt.Printf("Unknown command: %s\n", words[0])
		}
	}
	cli.Close()
	return scanner.Err()
}

// report prints err when present and returns true on success.
func report(err error) bool {
	if err != nil {
		fmt.Println(err)
		return false
	}
	return true
}
