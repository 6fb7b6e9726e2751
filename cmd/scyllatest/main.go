package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"scylla_cqltest/pkg/messages"
)

const (
	exitOK           = 0
	exitUsage        = 2
	exitRuntime      = 3
	exitMissingParam = 4
	exitTestFailures = 5
)

func main() {
	app := buildCLIOptions()
	err := app.Run(os.Args)
	if err == nil {
		os.Exit(exitOK)
	}

	code := exitCode(err)
	if code == exitUsage {
		messages.UsageError(filepath.Base(os.Args[0]), err)
	} else {
		messages.Error("%v", err)
	}
	os.Exit(code)
}

// exitCode maps an error from the cli app to a process exit code. Anything
// not produced by the harness itself came out of option parsing.
func exitCode(err error) int {
	var cfgErr *configError
	var runErr *runtimeError
	var failErr *failuresError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cfgErr):
		return exitMissingParam
	case errors.As(err, &failErr):
		return exitTestFailures
	case errors.As(err, &runErr):
		return exitRuntime
	default:
		return exitUsage
	}
}

func buildCLIOptions() *cli.App {
	app := cli.NewApp()
	app.Name = "scyllatest"
	app.Usage = "Run ScyllaDB tests from CQL files"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "host",
			Usage:  "ScyllaDB host/contact point, comma separated for multiple",
			EnvVar: "SCYLLA_HOST",
		},
		cli.IntFlag{
			Name:   "port",
			Value:  9042,
			Usage:  "ScyllaDB native transport port",
			EnvVar: "SCYLLA_PORT",
		},
		cli.StringFlag{
			Name:   "keyspace",
			Usage:  "Keyspace name to use for tests",
			EnvVar: "SCYLLA_KEYSPACE",
		},
		cli.StringFlag{
			Name:   "username",
			Usage:  "Username to connect (optional)",
			EnvVar: "SCYLLA_USERNAME",
		},
		cli.StringFlag{
			Name:   "password",
			Usage:  "Password to connect (optional)",
			EnvVar: "SCYLLA_PASSWORD",
		},
		cli.BoolFlag{
			Name:   "ssl",
			Usage:  "Use SSL/TLS connection",
			EnvVar: "SCYLLA_SSL",
		},
		cli.IntFlag{
			Name:   "timeout",
			Value:  5,
			Usage:  "Request timeout in seconds for the CQL client",
			EnvVar: "SCYLLA_TIMEOUT",
		},
		cli.StringFlag{
			Name:   "glob",
			Value:  "tests/scylla/*.cql",
			Usage:  "Glob selecting the .cql test files to run",
			EnvVar: "CQLTEST_GLOB",
		},
		cli.StringFlag{
			Name:  "suite",
			Value: "scylla",
			Usage: "Suite label used in reports and events",
		},
		cli.StringFlag{
			Name:   "config",
			Usage:  "Path to a yaml config file mirroring the flags",
			EnvVar: "CQLTEST_CONFIG",
		},
		cli.StringFlag{
			Name:  "junit-file",
			Usage: "Write a JUnit XML report to this path",
		},
		cli.StringFlag{
			Name:   "report-bucket",
			Usage:  "S3 bucket receiving the JUnit artifact",
			EnvVar: "CQLTEST_REPORT_BUCKET",
		},
		cli.StringFlag{
			Name:   "s3-endpoint",
			Usage:  "S3 endpoint override (LocalStack etc.)",
			EnvVar: "S3_ENDPOINT",
		},
		cli.StringFlag{
			Name:   "notify-queue",
			Usage:  "SQS queue receiving a summary when the run fails",
			EnvVar: "CQLTEST_NOTIFY_QUEUE",
		},
		cli.StringFlag{
			Name:   "sqs-endpoint",
			Usage:  "SQS endpoint override",
			EnvVar: "SQS_ENDPOINT",
		},
		cli.StringFlag{
			Name:   "events-brokers",
			Usage:  "Kafka bootstrap servers for per-case result events",
			EnvVar: "CQLTEST_EVENTS_BROKERS",
		},
		cli.StringFlag{
			Name:  "events-topic",
			Value: "cqltest-results",
			Usage: "Kafka topic for per-case result events",
		},
		cli.StringFlag{
			Name:   "lock-addr",
			Usage:  "Redis address for the per-keyspace run lock",
			EnvVar: "CQLTEST_LOCK_ADDR",
		},
		cli.IntFlag{
			Name:  "lock-ttl",
			Value: 1800,
			Usage: "Run lock TTL in seconds",
		},
		cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Serve Prometheus metrics on this address while running",
		},
		cli.StringFlag{
			Name:  "schedule",
			Usage: "Cron spec; rerun the suite at each tick instead of once",
		},
	}

	app.Action = run
	return app
}
